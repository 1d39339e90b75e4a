// Package newsfeed bulk-loads seed articles into the news collection.
package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"campuslink/docstore"
	"campuslink/hackernews"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const noticiasCollection = "noticias"

type hnClient interface {
	TopStories(context.Context) ([]uint64, error)
	Item(context.Context, uint64) (*hackernews.Item, error)
}

// Loader pulls the current Hacker News top stories and upserts one news
// document per story.
type Loader struct {
	hn    hnClient
	store docstore.Store

	maxStories     int
	maxConcurrency int64
}

type LoaderOpt func(*Loader)

func WithMaxStories(n int) LoaderOpt {
	return func(l *Loader) {
		l.maxStories = n
	}
}

// New creates a new Loader.
func New(hn hnClient, store docstore.Store, opts ...LoaderOpt) *Loader {
	loader := &Loader{
		hn:             hn,
		store:          store,
		maxStories:     30,
		maxConcurrency: 10,
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// Load runs one seeding pass and returns the number of stories stored.
func (l *Loader) Load(ctx context.Context) (int, error) {
	tracer := otel.Tracer("campuslink/newsfeed")
	ctx, span := tracer.Start(ctx, "Loader.Load")
	defer span.End()

	ids, err := l.hn.TopStories(ctx)
	if err != nil {
		return 0, fmt.Errorf("while querying for top stories: %w", err)
	}
	if len(ids) > l.maxStories {
		ids = ids[:l.maxStories]
	}

	// Use errgroup and semaphore to limit concurrency.
	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(l.maxConcurrency)

	var loaded atomic.Int64
	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			return 0, fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)
			stored, err := l.loadStory(ctx, id)
			if err != nil {
				return fmt.Errorf("while loading story %d: %w", id, err)
			}
			if stored {
				loaded.Add(1)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	return int(loaded.Load()), nil
}

func (l *Loader) loadStory(ctx context.Context, id uint64) (bool, error) {
	item, err := l.hn.Item(ctx, id)
	if err != nil {
		return false, fmt.Errorf("while fetching item %d: %w", id, err)
	}

	if item.Deleted || item.Dead {
		return false, nil
	}

	docID := strconv.FormatUint(id, 10)
	fields := map[string]any{
		"hacker_news_id": docID,
		"titulo":         item.Title,
		"autor":          item.By,
		"url":            item.URL,
	}

	// Merge-or-create, so that reloading refreshes the article fields
	// without touching any reaction count the item has accumulated.
	err = l.store.Merge(ctx, noticiasCollection, docID, fields, time.Time{})
	if errors.Is(err, docstore.ErrNotFound) {
		err = l.store.Create(ctx, noticiasCollection, docID, fields)
		if errors.Is(err, docstore.ErrExists) {
			// Another loader pass created it between our merge and create.
			err = l.store.Merge(ctx, noticiasCollection, docID, fields, time.Time{})
		}
	}
	if err != nil {
		return false, fmt.Errorf("while storing news item %q: %w", docID, err)
	}

	return true, nil
}
