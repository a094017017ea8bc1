// Package memstore provides an in-memory implementation of the document
// store port. It backs tests and single-node deployments that do not need a
// shared MongoDB.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// Store keeps records in insertion order per collection and notifies
// subscribers synchronously after every mutation.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]ports.Record
	subs        map[string]map[int]func([]ports.Record)
	nextSub     int
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string][]ports.Record),
		subs:        make(map[string]map[int]func([]ports.Record)),
	}
}

func (s *Store) Insert(_ context.Context, collection string, rec ports.Record) (string, error) {
	clone := cloneRecord(rec)
	clone["id"] = uuid.NewString()

	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], clone)
	s.mu.Unlock()

	s.notify(collection)
	return clone.ID(), nil
}

func (s *Store) QueryAll(_ context.Context, collection string) ([]ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.collections[collection]), nil
}

func (s *Store) QueryWhere(_ context.Context, collection, field string, value any) ([]ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.Record
	for _, rec := range s.collections[collection] {
		if rec[field] == value {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, collection, id string, partial ports.Record) error {
	s.mu.Lock()
	var found bool
	for _, rec := range s.collections[collection] {
		if rec.ID() == id {
			for k, v := range partial {
				if k == "id" {
					continue
				}
				rec[k] = v
			}
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("update %s/%s: record not found", collection, id)
	}
	s.notify(collection)
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	recs := s.collections[collection]
	var found bool
	for i, rec := range recs {
		if rec.ID() == id {
			s.collections[collection] = append(recs[:i:i], recs[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("delete %s/%s: record not found", collection, id)
	}
	s.notify(collection)
	return nil
}

func (s *Store) Clear(_ context.Context, collection string) error {
	s.mu.Lock()
	s.collections[collection] = nil
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Subscribe(collection string, onChange func([]ports.Record)) (func(), error) {
	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]func([]ports.Record))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[collection][id] = onChange
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs[collection], id)
		s.mu.Unlock()
	}, nil
}

func (s *Store) notify(collection string) {
	s.mu.RLock()
	snapshot := cloneAll(s.collections[collection])
	subs := make([]func([]ports.Record), 0, len(s.subs[collection]))
	for _, fn := range s.subs[collection] {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func cloneRecord(rec ports.Record) ports.Record {
	clone := make(ports.Record, len(rec))
	for k, v := range rec {
		clone[k] = v
	}
	return clone
}

func cloneAll(recs []ports.Record) []ports.Record {
	out := make([]ports.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, cloneRecord(rec))
	}
	return out
}
