// Package state implements the client's reactive entity collections: a
// generic persisted table plus the defaultable collection that maintains the
// single-default invariant across every mutation.
package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/store"
	apperrors "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/errors"
)

var persistenceFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "collection_persistence_failures_total",
		Help: "Durable-store write failures per collection; in-memory state is kept",
	},
	[]string{"collection"},
)

// Entity is the contract collection-managed records satisfy. Domain types
// implement it by embedding domain.Meta; T is the pointer type.
type Entity[T any] interface {
	Clone() T
	EntityID() string
	SetEntityID(string)
	Default() bool
	SetDefaultFlag(bool)
	Active() bool
	Touch(time.Time)
}

// document is the durable record shape for one collection.
type document[T any] struct {
	Entities  []T     `json:"entities"`
	DefaultID *string `json:"default_id"`
}

// Table holds an ordered snapshot of entities mirrored to a durable store
// under a collection key. Replace is the only write primitive; every write is
// observed by subscribers as one settled snapshot.
type Table[T Entity[T]] struct {
	key    string
	store  store.Store
	logger *slog.Logger

	mu        sync.Mutex
	entities  []T
	defaultID string
	saveErr   error
	subs      map[int]func([]T)
	nextSub   int
}

// NewTable creates a table persisting under the given collection key.
func NewTable[T Entity[T]](key string, st store.Store, logger *slog.Logger) *Table[T] {
	return &Table[T]{
		key:    key,
		store:  st,
		logger: logger,
		subs:   make(map[int]func([]T)),
	}
}

// Load restores the persisted snapshot, if any. A missing document leaves the
// table empty; a corrupt one is an error the caller decides how to handle.
func (t *Table[T]) Load(ctx context.Context) error {
	var doc document[T]
	found, err := t.store.Load(ctx, t.key, &doc)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	t.mu.Lock()
	t.entities = doc.Entities
	t.defaultID = ""
	if doc.DefaultID != nil {
		t.defaultID = *doc.DefaultID
	}
	t.mu.Unlock()
	return nil
}

// Snapshot returns a defensive copy of the current entity sequence.
func (t *Table[T]) Snapshot() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneAll(t.entities)
}

// DefaultID returns the tracked default entity id, empty when none.
func (t *Table[T]) DefaultID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.defaultID
}

// Len returns the number of entities currently held.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entities)
}

// LastSaveErr reports the outcome of the most recent durable write: nil when
// it succeeded, the recorded error when the in-memory snapshot is ahead of
// the store. The recorded error wraps errors.ErrPersistence so callers can
// classify it without inspecting the backend.
func (t *Table[T]) LastSaveErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveErr
}

// Replace installs a new entity sequence and default pointer as one atomic
// snapshot, notifies subscribers, and mirrors the document to the durable
// store. A store failure is recorded and reported via LastSaveErr but never
// rolls back the in-memory state.
func (t *Table[T]) Replace(ctx context.Context, entities []T, defaultID string) {
	t.mu.Lock()
	t.entities = cloneAll(entities)
	t.defaultID = defaultID

	doc := document[T]{Entities: t.entities}
	if defaultID != "" {
		doc.DefaultID = &defaultID
	}

	if err := t.store.Save(ctx, t.key, doc); err != nil {
		t.saveErr = apperrors.Persistence(err)
		persistenceFailures.WithLabelValues(t.key).Inc()
		t.logger.WarnContext(ctx, "durable write failed, in-memory state kept",
			slog.String("collection", t.key),
			slog.String("error", err.Error()),
		)
	} else {
		t.saveErr = nil
	}

	snapshot := cloneAll(t.entities)
	subs := make([]func([]T), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers a listener invoked with a snapshot copy after every
// Replace. The returned function cancels the subscription.
func (t *Table[T]) Subscribe(fn func([]T)) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Destroy clears the in-memory snapshot and removes the persisted document.
// Used at session teardown; subscribers observe the empty snapshot.
func (t *Table[T]) Destroy(ctx context.Context) error {
	t.mu.Lock()
	t.entities = nil
	t.defaultID = ""
	t.saveErr = nil

	subs := make([]func([]T), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}

	return t.store.Delete(ctx, t.key)
}

func cloneAll[T Entity[T]](entities []T) []T {
	out := make([]T, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}
