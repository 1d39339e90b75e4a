package docstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is the production Store backed by Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) Get(ctx context.Context, coll, id string) (*Document, error) {
	snap, err := s.client.Collection(coll).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while reading %s/%s: %w", coll, id, err)
	}

	return &Document{ID: snap.Ref.ID, Data: snap.Data(), UpdateTime: snap.UpdateTime}, nil
}

func (s *Firestore) List(ctx context.Context, coll string) ([]*Document, error) {
	docs := []*Document{}

	iter := s.client.Collection(coll).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating %s: %w", coll, err)
		}

		docs = append(docs, &Document{ID: snap.Ref.ID, Data: snap.Data(), UpdateTime: snap.UpdateTime})
	}

	return docs, nil
}

func (s *Firestore) Query(ctx context.Context, coll, field string, value any, limit int) ([]*Document, error) {
	docs := []*Document{}

	iter := s.client.Collection(coll).Where(field, "==", value).Limit(limit).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while querying %s where %s == %v: %w", coll, field, value, err)
		}

		docs = append(docs, &Document{ID: snap.Ref.ID, Data: snap.Data(), UpdateTime: snap.UpdateTime})
	}

	return docs, nil
}

func (s *Firestore) Create(ctx context.Context, coll, id string, data map[string]any) error {
	_, err := s.client.Collection(coll).Doc(id).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("while creating %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *Firestore) Put(ctx context.Context, coll, id string, data map[string]any) error {
	if _, err := s.client.Collection(coll).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("while writing %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *Firestore) Merge(ctx context.Context, coll, id string, fields map[string]any, at time.Time) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		// FieldPath rather than Path, so that keys containing dots are
		// treated as single field names.
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}

	preconds := []firestore.Precondition{}
	if !at.IsZero() {
		preconds = append(preconds, firestore.LastUpdateTime(at))
	}

	_, err := s.client.Collection(coll).Doc(id).Update(ctx, updates, preconds...)
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.FailedPrecondition:
		return ErrPrecondition
	}
	if err != nil {
		return fmt.Errorf("while updating %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *Firestore) Delete(ctx context.Context, coll, id string) error {
	if _, err := s.client.Collection(coll).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting %s/%s: %w", coll, id, err)
	}
	return nil
}

func (s *Firestore) NewID(coll string) string {
	return s.client.Collection(coll).NewDoc().ID
}
