package dblayer

import (
	"context"
	"fmt"
	"maps"
	"time"

	"campuslink/dbtypes"
	"campuslink/docstore"
)

// GetProfile resolves the "about" document for a user by querying the
// about collection on its owner-reference field.  At most one document
// per owner is assumed; the query is capped to a single match.  A missing
// profile is a distinct outcome from a missing user, and the user itself
// is not re-verified here.
func (db *DB) GetProfile(ctx context.Context, correo string) (*dbtypes.Profile, error) {
	docs, err := db.store.Query(ctx, aboutCollection, ownerField, correo, 1)
	if err != nil {
		return nil, fmt.Errorf("while querying profile for %q: %w", correo, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("información de perfil no encontrada: %w", ErrNotFound)
	}

	d := docs[0].Data
	return &dbtypes.Profile{
		IDUsuario:          correo,
		Skills:             asStringSlice(d["skills"]),
		Career:             asString(d["career"]),
		InterestCategories: asStringSlice(d["interest_categories"]),
		Keywords:           asStringSlice(d["keywords"]),
		Semester:           asInt(d["semester"]),
		AboutMe:            asString(d["about_me"]),
	}, nil
}

// GetSettings resolves the settings document for a user through the same
// owner-reference query as GetProfile.
func (db *DB) GetSettings(ctx context.Context, correo string) (*dbtypes.Settings, error) {
	docs, err := db.store.Query(ctx, settingsCollection, ownerField, correo, 1)
	if err != nil {
		return nil, fmt.Errorf("while querying settings for %q: %w", correo, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("configuración no encontrada: %w", ErrNotFound)
	}

	return settingsFromDoc(correo, docs[0]), nil
}

// UpdateSettings merges the given fields into the user's settings
// document.  Any id_usuario key in the payload is dropped before the
// merge, whatever its value; callers cannot repoint a settings document
// at another owner.
func (db *DB) UpdateSettings(ctx context.Context, correo string, fields map[string]any) (*dbtypes.Settings, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no se proporcionaron datos para actualizar: %w", ErrInvalid)
	}

	docs, err := db.store.Query(ctx, settingsCollection, ownerField, correo, 1)
	if err != nil {
		return nil, fmt.Errorf("while querying settings for %q: %w", correo, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("configuración no encontrada: %w", ErrNotFound)
	}

	fields = maps.Clone(fields)
	delete(fields, ownerField)

	if len(fields) == 0 {
		// Nothing left to write after stripping the owner key.
		return settingsFromDoc(correo, docs[0]), nil
	}

	if err := db.store.Merge(ctx, settingsCollection, docs[0].ID, fields, time.Time{}); err != nil {
		return nil, fmt.Errorf("while updating settings for %q: %w", correo, err)
	}

	doc, err := db.store.Get(ctx, settingsCollection, docs[0].ID)
	if err != nil {
		return nil, fmt.Errorf("while reading settings for %q: %w", correo, err)
	}

	return settingsFromDoc(correo, doc), nil
}

func settingsFromDoc(correo string, doc *docstore.Document) *dbtypes.Settings {
	return &dbtypes.Settings{
		IDUsuario:     correo,
		Availability:  asBool(doc.Data["availability"]),
		Notifications: asBool(doc.Data["notifications"]),
		Visibility:    asBool(doc.Data["visibility"]),
	}
}
