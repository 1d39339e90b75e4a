// Package dblayer packages up all document-store access: user accounts,
// per-user project subcollections, profile and settings lookups, and the
// news reaction counter.
package dblayer

import (
	"errors"

	"campuslink/docstore"
)

const (
	usuariosCollection  = "usuario"
	proyectosCollection = "proyectos"
	aboutCollection     = "about"
	settingsCollection  = "settings"
	noticiasCollection  = "noticias"

	// ownerField is the owner-reference key on about and settings
	// documents.  They are looked up by query on this field, never by
	// document ID.
	ownerField = "id_usuario"
)

// Error categories.  Operations wrap these with context; callers match
// with errors.Is to pick a status code.
var (
	ErrInvalid      = errors.New("solicitud inválida")
	ErrNotFound     = errors.New("no encontrado")
	ErrExists       = errors.New("ya existe")
	ErrUnauthorized = errors.New("credenciales inválidas")
)

type DB struct {
	store docstore.Store
}

func New(store docstore.Store) *DB {
	return &DB{store: store}
}

// Conversion helpers for pulling typed attributes out of schemaless
// documents.  Missing or mistyped fields fall back to zero values.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		// Firestore integers decode as int64.
		return int(n)
	case float64:
		// JSON numbers decode as float64.
		return int(n)
	}
	return 0
}

func asStringSlice(v any) []string {
	items, _ := v.([]any)
	out := []string{}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
