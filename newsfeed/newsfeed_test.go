package newsfeed

import (
	"context"
	"fmt"
	"testing"

	"campuslink/docstore"
	"campuslink/hackernews"
)

type fakeHN struct {
	top   []uint64
	items map[uint64]*hackernews.Item
}

func (f *fakeHN) TopStories(ctx context.Context) ([]uint64, error) {
	return f.top, nil
}

func (f *fakeHN) Item(ctx context.Context, id uint64) (*hackernews.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("no item %d", id)
	}
	return item, nil
}

func newFakeHN() *fakeHN {
	return &fakeHN{
		top: []uint64{1, 2, 3},
		items: map[uint64]*hackernews.Item{
			1: {ID: 1, Title: "uno", By: "ana", URL: "https://example.com/1"},
			2: {ID: 2, Title: "dos", By: "ben", URL: "https://example.com/2"},
			3: {ID: 3, Title: "tres", By: "cal", Dead: true},
		},
	}
}

func TestLoadStoresLiveStories(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	loader := New(newFakeHN(), store)

	count, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The dead story is skipped.
	if count != 2 {
		t.Errorf("Load returned %d, want 2", count)
	}

	doc, err := store.Get(ctx, "noticias", "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := doc.Data["titulo"]; got != "uno" {
		t.Errorf("titulo = %v, want %q", got, "uno")
	}
	if got := doc.Data["autor"]; got != "ana" {
		t.Errorf("autor = %v, want %q", got, "ana")
	}
	if _, ok := doc.Data["reacciones"]; ok {
		t.Errorf("Seeded item carries a reacciones field; it must start absent")
	}

	if _, err := store.Get(ctx, "noticias", "3"); err == nil {
		t.Errorf("Dead story was stored")
	}
}

func TestLoadRespectsMaxStories(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	loader := New(newFakeHN(), store, WithMaxStories(1))

	count, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count != 1 {
		t.Errorf("Load returned %d, want 1", count)
	}
}

func TestReloadKeepsReactions(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	hn := newFakeHN()
	loader := New(hn, store)

	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Reactions accumulate between passes.
	if err := store.Put(ctx, "noticias", "1", map[string]any{"titulo": "stale", "reacciones": int64(5)}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	hn.items[1].Title = "uno v2"
	if _, err := loader.Load(ctx); err != nil {
		t.Fatalf("Second load: %v", err)
	}

	doc, err := store.Get(ctx, "noticias", "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := doc.Data["titulo"]; got != "uno v2" {
		t.Errorf("titulo after reload = %v, want %q", got, "uno v2")
	}
	if got := doc.Data["reacciones"]; got != int64(5) {
		t.Errorf("reacciones after reload = %v, want 5", got)
	}
}
