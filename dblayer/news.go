package dblayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campuslink/docstore"
)

// Reaction directions accepted by React.
const (
	ReactionAdd    = "agregar"
	ReactionRemove = "quitar"
)

// reactionAttempts bounds the optimistic-concurrency retry loop in React.
const reactionAttempts = 3

// ListNews returns every news document, each augmented with its
// document ID.
func (db *DB) ListNews(ctx context.Context) ([]map[string]any, error) {
	docs, err := db.store.List(ctx, noticiasCollection)
	if err != nil {
		return nil, fmt.Errorf("while listing news: %w", err)
	}

	items := []map[string]any{}
	for _, d := range docs {
		n := d.Data
		n["id"] = d.ID
		items = append(items, n)
	}
	return items, nil
}

// React adjusts the reacciones counter on a news item and returns the new
// value.  A missing counter field counts as zero, and quitar never takes
// the counter below zero.  The write carries the update-time of the read
// snapshot as a precondition and retries a bounded number of times, so
// concurrent reactions are never lost.
func (db *DB) React(ctx context.Context, id, accion string) (int, error) {
	if accion != ReactionAdd && accion != ReactionRemove {
		return 0, fmt.Errorf("acción %q no reconocida, debe ser %q o %q: %w", accion, ReactionAdd, ReactionRemove, ErrInvalid)
	}

	for attempt := 0; attempt < reactionAttempts; attempt++ {
		doc, err := db.store.Get(ctx, noticiasCollection, id)
		if errors.Is(err, docstore.ErrNotFound) {
			return 0, fmt.Errorf("noticia no encontrada: %w", ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("while reading news item %q: %w", id, err)
		}

		count := asInt(doc.Data["reacciones"])
		next := count
		switch {
		case accion == ReactionAdd:
			next = count + 1
		case count > 0:
			next = count - 1
		}

		err = db.store.Merge(ctx, noticiasCollection, id, map[string]any{"reacciones": next}, doc.UpdateTime)
		if errors.Is(err, docstore.ErrPrecondition) {
			slog.InfoContext(ctx, "Retrying reaction update after concurrent write", "id", id, "attempt", attempt+1)
			continue
		}
		if errors.Is(err, docstore.ErrNotFound) {
			return 0, fmt.Errorf("noticia no encontrada: %w", ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("while updating reactions for %q: %w", id, err)
		}

		return next, nil
	}

	return 0, fmt.Errorf("while updating reactions for %q: too many concurrent updates", id)
}
