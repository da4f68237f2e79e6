package docstore

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Memory is an in-process Store. Documents are kept as BSON bytes so
// decoding behaves like the database backends.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string]map[string][]byte{}}
}

func (s *Memory) coll(name string) map[string][]byte {
	c, ok := s.data[name]
	if !ok {
		c = map[string][]byte{}
		s.data[name] = c
	}
	return c
}

func (s *Memory) Get(ctx context.Context, collection, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	raw, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return Decode(raw, out)
}

func (s *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := EncodeRaw(doc, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[id] = raw
	return nil
}

func (s *Memory) Insert(ctx context.Context, collection, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := EncodeRaw(doc, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	if _, ok := c[id]; ok {
		return ErrExists
	}
	c[id] = raw
	return nil
}

func (s *Memory) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	var m bson.M
	if err := Decode(raw, &m); err != nil {
		return err
	}
	if err := Merge(m, fields); err != nil {
		return err
	}
	next, err := bson.Marshal(m)
	if err != nil {
		return err
	}
	s.data[collection][id] = next
	return nil
}

func (s *Memory) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := NewID()
	if err := s.Insert(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Memory) Query(ctx context.Context, collection string, filter Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	raws := make([][]byte, 0, len(ids))
	for _, id := range ids {
		raws = append(raws, s.data[collection][id])
	}
	s.mu.RUnlock()

	matched, err := FilterRaw(raws, filter)
	if err != nil {
		return err
	}
	return DecodeAll(matched, out)
}

func (s *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func (s *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Memory) Close(context.Context) error { return nil }

// EncodeRaw encodes doc to BSON bytes with _id set to id.
func EncodeRaw(doc any, id string) ([]byte, error) {
	m, err := Encode(doc, id)
	if err != nil {
		return nil, err
	}
	return bson.Marshal(m)
}

// FilterRaw keeps the raw documents that match filter.
func FilterRaw(raws [][]byte, filter Filter) ([][]byte, error) {
	if len(filter) == 0 {
		return raws, nil
	}
	out := make([][]byte, 0, len(raws))
	for _, raw := range raws {
		var m bson.M
		if err := Decode(raw, &m); err != nil {
			return nil, err
		}
		ok, err := Matches(m, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, raw)
		}
	}
	return out, nil
}
