package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests.  It implements the same
// contract as the Firestore backend, including update-time preconditions
// on Merge.  Update times are synthesized from a write counter so that
// two writes never share a timestamp.
type Memory struct {
	mu    sync.Mutex
	colls map[string]map[string]*memDoc
	seq   int64
}

type memDoc struct {
	data       map[string]any
	updateTime time.Time
}

func NewMemory() *Memory {
	return &Memory{colls: map[string]map[string]*memDoc{}}
}

func (s *Memory) coll(path string) map[string]*memDoc {
	c, ok := s.colls[path]
	if !ok {
		c = map[string]*memDoc{}
		s.colls[path] = c
	}
	return c
}

func (s *Memory) tick() time.Time {
	s.seq++
	return time.Unix(0, s.seq)
}

func (s *Memory) Get(ctx context.Context, coll, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.coll(coll)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: copyMap(d.data), UpdateTime: d.updateTime}, nil
}

func (s *Memory) List(ctx context.Context, coll string) ([]*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := []*Document{}
	for id, d := range s.coll(coll) {
		docs = append(docs, &Document{ID: id, Data: copyMap(d.data), UpdateTime: d.updateTime})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *Memory) Query(ctx context.Context, coll, field string, value any, limit int) ([]*Document, error) {
	all, err := s.List(ctx, coll)
	if err != nil {
		return nil, err
	}

	docs := []*Document{}
	for _, d := range all {
		if len(docs) == limit {
			break
		}
		if got, ok := d.Data[field]; ok && reflect.DeepEqual(got, value) {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (s *Memory) Create(ctx context.Context, coll, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(coll)
	if _, ok := c[id]; ok {
		return ErrExists
	}
	c[id] = &memDoc{data: copyMap(data), updateTime: s.tick()}
	return nil
}

func (s *Memory) Put(ctx context.Context, coll, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coll(coll)[id] = &memDoc{data: copyMap(data), updateTime: s.tick()}
	return nil
}

func (s *Memory) Merge(ctx context.Context, coll, id string, fields map[string]any, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.coll(coll)[id]
	if !ok {
		return ErrNotFound
	}
	if !at.IsZero() && !at.Equal(d.updateTime) {
		return ErrPrecondition
	}

	for k, v := range fields {
		d.data[k] = copyValue(v)
	}
	d.updateTime = s.tick()
	return nil
}

func (s *Memory) Delete(ctx context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.coll(coll), id)
	return nil
}

func (s *Memory) NewID(coll string) string {
	return uuid.NewString()
}

// copyMap deep-copies a document field map so that callers can't mutate
// stored state through returned documents.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
