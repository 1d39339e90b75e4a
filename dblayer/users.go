package dblayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"campuslink/docstore"
)

var userRequiredFields = []string{"correo", "nombres", "contraseña"}

// identityFields are the keys on a user document that mirror its document
// ID.  Updates may not change them to a different value.
var identityFields = []string{"correo", "id_usuario"}

// CreateUser stores a new user keyed by its correo.  The write is a
// conditional create, so concurrent creates for the same correo yield
// exactly one success.
func (db *DB) CreateUser(ctx context.Context, data map[string]any) (map[string]any, error) {
	for _, f := range userRequiredFields {
		if _, ok := data[f]; !ok {
			return nil, fmt.Errorf("faltan datos, campos requeridos: %s: %w", strings.Join(userRequiredFields, ", "), ErrInvalid)
		}
	}

	correo := asString(data["correo"])
	if correo == "" {
		return nil, fmt.Errorf("el campo correo debe ser una cadena no vacía: %w", ErrInvalid)
	}

	doc := maps.Clone(data)
	doc["id_usuario"] = correo

	err := db.store.Create(ctx, usuariosCollection, correo, doc)
	if errors.Is(err, docstore.ErrExists) {
		return nil, fmt.Errorf("el usuario con correo %q ya existe: %w", correo, ErrExists)
	}
	if err != nil {
		return nil, fmt.Errorf("while creating user %q: %w", correo, err)
	}

	slog.InfoContext(ctx, "Created user", "correo", correo)

	out := maps.Clone(doc)
	out["id"] = correo
	return out, nil
}

// ListUsers returns every user document, each augmented with its
// document ID.
func (db *DB) ListUsers(ctx context.Context) ([]map[string]any, error) {
	docs, err := db.store.List(ctx, usuariosCollection)
	if err != nil {
		return nil, fmt.Errorf("while listing users: %w", err)
	}

	users := []map[string]any{}
	for _, d := range docs {
		u := d.Data
		u["id_documento"] = d.ID
		users = append(users, u)
	}
	return users, nil
}

// GetUser returns the user stored under the given correo.
func (db *DB) GetUser(ctx context.Context, correo string) (map[string]any, error) {
	doc, err := db.store.Get(ctx, usuariosCollection, correo)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("usuario no encontrado: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("while reading user %q: %w", correo, err)
	}

	u := doc.Data
	u["id_documento"] = doc.ID
	return u, nil
}

// UpdateUser merges only the given fields into an existing user.  The
// correo and id_usuario fields mirror the document ID and may not be
// changed to a different value.
func (db *DB) UpdateUser(ctx context.Context, correo string, fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no se proporcionaron datos para actualizar: %w", ErrInvalid)
	}

	if _, err := db.store.Get(ctx, usuariosCollection, correo); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("usuario no encontrado para actualizar: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("while reading user %q: %w", correo, err)
	}

	for _, f := range identityFields {
		if v, ok := fields[f]; ok {
			if s, isString := v.(string); !isString || s != correo {
				return nil, fmt.Errorf("no se puede cambiar el campo %s (ID del documento): %w", f, ErrInvalid)
			}
		}
	}

	if err := db.store.Merge(ctx, usuariosCollection, correo, fields, time.Time{}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("usuario no encontrado para actualizar: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("while updating user %q: %w", correo, err)
	}

	return db.GetUser(ctx, correo)
}

// DeleteUser removes the user document.  Its project subcollection is
// left in place; the store never cascades subcollection deletes.
func (db *DB) DeleteUser(ctx context.Context, correo string) error {
	if _, err := db.store.Get(ctx, usuariosCollection, correo); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("usuario no encontrado para eliminar: %w", ErrNotFound)
		}
		return fmt.Errorf("while reading user %q: %w", correo, err)
	}

	if err := db.store.Delete(ctx, usuariosCollection, correo); err != nil {
		return fmt.Errorf("while deleting user %q: %w", correo, err)
	}

	slog.InfoContext(ctx, "Deleted user", "correo", correo)
	return nil
}

// Login checks the stored credential for a user.  The comparison is a
// verbatim string match against the stored contraseña field; this
// preserves the wire-compatible behavior of the deployed system and is
// not suitable for new deployments.
func (db *DB) Login(ctx context.Context, correo, contraseña string) (map[string]any, error) {
	if correo == "" || contraseña == "" {
		return nil, fmt.Errorf("correo y contraseña son requeridos: %w", ErrInvalid)
	}

	user, err := db.GetUser(ctx, correo)
	if err != nil {
		return nil, err
	}

	if asString(user["contraseña"]) != contraseña {
		return nil, fmt.Errorf("contraseña incorrecta: %w", ErrUnauthorized)
	}

	return user, nil
}

// RecoverPassword verifies that the user exists.  Actually sending a
// recovery mail is handled outside this system; this only gates the
// acknowledgment.
func (db *DB) RecoverPassword(ctx context.Context, correo string) error {
	if correo == "" {
		return fmt.Errorf("correo es requerido: %w", ErrInvalid)
	}

	if _, err := db.GetUser(ctx, correo); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Acknowledged password recovery request", "correo", correo)
	return nil
}
