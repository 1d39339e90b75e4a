// Package api implements the JSON HTTP surface on top of the access
// layer.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"campuslink/dblayer"
	"campuslink/newsfeed"

	"github.com/golang/glog"
)

type API struct {
	db     *dblayer.DB
	loader *newsfeed.Loader
}

func New(db *dblayer.DB, loader *newsfeed.Loader) *API {
	return &API{
		db:     db,
		loader: loader,
	}
}

func (a *API) Register(m *http.ServeMux) {
	m.HandleFunc("POST /user", a.createUserHandler)
	m.HandleFunc("GET /user", a.listUsersHandler)
	m.HandleFunc("GET /user/{id}", a.getUserHandler)
	m.HandleFunc("PUT /user/{id}", a.updateUserHandler)
	m.HandleFunc("DELETE /user/{id}", a.deleteUserHandler)
	m.HandleFunc("POST /login", a.loginHandler)
	m.HandleFunc("POST /recover-password", a.recoverPasswordHandler)
	m.HandleFunc("GET /user/{id}/projects", a.listProjectsHandler)
	m.HandleFunc("POST /user/{id}/projects", a.createProjectHandler)
	m.HandleFunc("POST /user/{id}/projects/{pid}", a.updateProjectHandler)
	m.HandleFunc("DELETE /user/{id}/projects/{pid}", a.deleteProjectHandler)
	m.HandleFunc("GET /user/{id}/about", a.getAboutHandler)
	m.HandleFunc("GET /user/{id}/settings", a.getSettingsHandler)
	m.HandleFunc("PUT /user/{id}/settings", a.updateSettingsHandler)
	m.HandleFunc("GET /news", a.listNewsHandler)
	m.HandleFunc("POST /news/load", a.loadNewsHandler)
	m.HandleFunc("POST /news/{id}/reaction", a.reactionHandler)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDBError maps the access layer's error categories onto status
// codes.  Anything outside the taxonomy is a backend failure; its message
// is surfaced to the caller as-is.
func writeDBError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dblayer.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dblayer.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, dblayer.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dblayer.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		glog.Errorf("Backend error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func (a *API) createUserHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	user, err := a.db.CreateUser(r.Context(), body)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (a *API) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := a.db.ListUsers(r.Context())
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// getUserHandler returns the user together with its project list.
func (a *API) getUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	user, err := a.db.GetUser(ctx, id)
	if err != nil {
		writeDBError(w, err)
		return
	}

	projects, err := a.db.ListProjects(ctx, id)
	if err != nil {
		writeDBError(w, err)
		return
	}
	user["proyectos"] = projects

	writeJSON(w, http.StatusOK, user)
}

func (a *API) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	user, err := a.db.UpdateUser(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (a *API) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.db.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "usuario eliminado correctamente"})
}

func (a *API) loginHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	user, err := a.db.Login(r.Context(), stringField(body, "correo"), stringField(body, "contraseña"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (a *API) recoverPasswordHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	if err := a.db.RecoverPassword(r.Context(), stringField(body, "correo")); err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "se han enviado instrucciones de recuperación al correo"})
}

func (a *API) listProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := a.db.ListProjects(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (a *API) createProjectHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	project, err := a.db.CreateProject(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (a *API) updateProjectHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	project, err := a.db.UpdateProject(r.Context(), r.PathValue("id"), r.PathValue("pid"), body)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (a *API) deleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.db.DeleteProject(r.Context(), r.PathValue("id"), r.PathValue("pid")); err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "proyecto eliminado correctamente"})
}

func (a *API) getAboutHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := a.db.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (a *API) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := a.db.GetSettings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (a *API) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	settings, err := a.db.UpdateSettings(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

func (a *API) listNewsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := a.db.ListNews(r.Context())
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (a *API) loadNewsHandler(w http.ResponseWriter, r *http.Request) {
	count, err := a.loader.Load(r.Context())
	if err != nil {
		glog.Errorf("Error while loading news: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"noticias_cargadas": count})
}

func (a *API) reactionHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return
	}

	id := r.PathValue("id")

	count, err := a.db.React(r.Context(), id, stringField(body, "accion"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "reacciones": count})
}
