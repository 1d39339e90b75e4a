package dblayer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"campuslink/docstore"
)

func projectsPath(correo string) string {
	return usuariosCollection + "/" + correo + "/" + proyectosCollection
}

// requireUser verifies that the parent user exists before any operation
// on its project subcollection.
func (db *DB) requireUser(ctx context.Context, correo string) error {
	_, err := db.store.Get(ctx, usuariosCollection, correo)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("el usuario %q no existe: %w", correo, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("while checking user %q: %w", correo, err)
	}
	return nil
}

// CreateProject stores a project under the given user.  A caller-supplied
// id is used verbatim and overwrites any existing project with that id;
// there is deliberately no conflict check here, unlike user creation.
// Without an id the store generates one.
func (db *DB) CreateProject(ctx context.Context, correo string, data map[string]any) (map[string]any, error) {
	if err := db.requireUser(ctx, correo); err != nil {
		return nil, err
	}

	if asString(data["titulo"]) == "" {
		return nil, fmt.Errorf("el campo titulo es requerido: %w", ErrInvalid)
	}

	path := projectsPath(correo)

	id := asString(data["id"])
	if id == "" {
		id = db.store.NewID(path)
	}

	doc := maps.Clone(data)
	delete(doc, "id")
	doc["id_proyecto"] = id
	doc["id_usuario"] = correo
	if _, ok := doc["descripcion"]; !ok {
		doc["descripcion"] = ""
	}

	if err := db.store.Put(ctx, path, id, doc); err != nil {
		return nil, fmt.Errorf("while creating project %q for user %q: %w", id, correo, err)
	}

	out := maps.Clone(doc)
	out["id"] = id
	return out, nil
}

// ListProjects returns every project under the given user.
func (db *DB) ListProjects(ctx context.Context, correo string) ([]map[string]any, error) {
	if err := db.requireUser(ctx, correo); err != nil {
		return nil, err
	}

	docs, err := db.store.List(ctx, projectsPath(correo))
	if err != nil {
		return nil, fmt.Errorf("while listing projects for user %q: %w", correo, err)
	}

	projects := []map[string]any{}
	for _, d := range docs {
		p := d.Data
		p["id_proyecto"] = d.ID
		projects = append(projects, p)
	}
	return projects, nil
}

// UpdateProject merges only the given fields into an existing project.
// Unlike user updates, no field is protected here; the merge is applied
// as supplied.
func (db *DB) UpdateProject(ctx context.Context, correo, projectID string, fields map[string]any) (map[string]any, error) {
	if err := db.requireUser(ctx, correo); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no se proporcionaron datos para actualizar: %w", ErrInvalid)
	}

	path := projectsPath(correo)

	if err := db.store.Merge(ctx, path, projectID, fields, time.Time{}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("proyecto no encontrado: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("while updating project %q for user %q: %w", projectID, correo, err)
	}

	doc, err := db.store.Get(ctx, path, projectID)
	if err != nil {
		return nil, fmt.Errorf("while reading project %q for user %q: %w", projectID, correo, err)
	}

	p := doc.Data
	p["id_proyecto"] = doc.ID
	return p, nil
}

// DeleteProject removes a single project; the parent user is untouched.
func (db *DB) DeleteProject(ctx context.Context, correo, projectID string) error {
	if err := db.requireUser(ctx, correo); err != nil {
		return err
	}

	path := projectsPath(correo)

	if _, err := db.store.Get(ctx, path, projectID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("proyecto no encontrado: %w", ErrNotFound)
		}
		return fmt.Errorf("while reading project %q for user %q: %w", projectID, correo, err)
	}

	if err := db.store.Delete(ctx, path, projectID); err != nil {
		return fmt.Errorf("while deleting project %q for user %q: %w", projectID, correo, err)
	}
	return nil
}
