package dblayer

import (
	"context"
	"errors"
	"testing"
)

func TestReactInvalidDirection(t *testing.T) {
	ctx := context.Background()
	db, store := newTestDB()

	if err := store.Create(ctx, "noticias", "n1", map[string]any{"titulo": "t"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, accion := range []string{"", "like", "AGREGAR"} {
		if _, err := db.React(ctx, "n1", accion); !errors.Is(err, ErrInvalid) {
			t.Errorf("React(%q) returned %v, want ErrInvalid", accion, err)
		}
	}
}

func TestReactMissingItem(t *testing.T) {
	db, _ := newTestDB()
	if _, err := db.React(context.Background(), "missing", ReactionAdd); !errors.Is(err, ErrNotFound) {
		t.Errorf("React on missing item returned %v, want ErrNotFound", err)
	}
}

func TestReactFloorAtZero(t *testing.T) {
	ctx := context.Background()
	db, store := newTestDB()

	// The seed document carries no reacciones field; it counts as zero.
	if err := store.Create(ctx, "noticias", "n1", map[string]any{"titulo": "t"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := db.React(ctx, "n1", ReactionRemove)
	if err != nil {
		t.Fatalf("React: %v", err)
	}
	if count != 0 {
		t.Errorf("Removing a reaction at zero returned %d, want 0", count)
	}

	count, err = db.React(ctx, "n1", ReactionAdd)
	if err != nil {
		t.Fatalf("React: %v", err)
	}
	if count != 1 {
		t.Errorf("Adding a reaction returned %d, want 1", count)
	}
}

func TestReactSequenceReturnsToStart(t *testing.T) {
	ctx := context.Background()
	db, store := newTestDB()

	if err := store.Create(ctx, "noticias", "n1", map[string]any{"reacciones": int64(5)}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 4
	for i := 0; i < n; i++ {
		if _, err := db.React(ctx, "n1", ReactionAdd); err != nil {
			t.Fatalf("React add: %v", err)
		}
	}
	var count int
	var err error
	for i := 0; i < n; i++ {
		if count, err = db.React(ctx, "n1", ReactionRemove); err != nil {
			t.Fatalf("React remove: %v", err)
		}
	}

	if count != 5 {
		t.Errorf("Counter after %d adds and %d removes = %d, want 5", n, n, count)
	}
}

func TestListNews(t *testing.T) {
	ctx := context.Background()
	db, store := newTestDB()

	if err := store.Create(ctx, "noticias", "n1", map[string]any{"titulo": "t1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, "noticias", "n2", map[string]any{"titulo": "t2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := db.ListNews(ctx)
	if err != nil {
		t.Fatalf("ListNews: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Got %d news items, want 2", len(items))
	}
	if got := items[0]["id"]; got != "n1" {
		t.Errorf("First item id = %v, want %q", got, "n1")
	}
}
