package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/errors"
)

// Collection wraps a Table and maintains the single-default invariant: at
// most one entity is flagged default, and a non-empty collection always has
// exactly one once a mutation settles. Every operation computes a full new
// sequence and commits it through one Replace.
type Collection[T Entity[T]] struct {
	name  string
	table *Table[T]
	now   func() time.Time
	newID func() string
}

// NewCollection creates a collection over the given table. name appears in
// NotFound errors ("address", "payment method").
func NewCollection[T Entity[T]](name string, table *Table[T]) *Collection[T] {
	return &Collection[T]{
		name:  name,
		table: table,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Load restores the persisted snapshot and repairs the invariant if the
// stored document was corrupted (e.g. non-empty with no default). A repair is
// itself a write, so the healed snapshot is persisted immediately.
func (c *Collection[T]) Load(ctx context.Context) error {
	if err := c.table.Load(ctx); err != nil {
		return err
	}

	entities := c.table.Snapshot()
	if len(entities) == 0 {
		return nil
	}

	defaultID, changed := normalize(entities, "", c.now())
	if changed || defaultID != c.table.DefaultID() {
		c.table.Replace(ctx, entities, defaultID)
	}
	return nil
}

// Add inserts a new entity, assigning its id and timestamps. The entity
// becomes default when the collection was empty or the default flag was
// requested; in either case every other entity is demoted in the same write.
func (c *Collection[T]) Add(ctx context.Context, e T) (T, error) {
	var zero T
	entities := c.table.Snapshot()

	now := c.now()
	added := e.Clone()
	if added.EntityID() == "" {
		added.SetEntityID(c.newID())
	}
	added.Touch(now)

	makeDefault := len(entities) == 0 || added.Default()
	entities = append(entities, added)

	preferred := ""
	if makeDefault {
		preferred = added.EntityID()
	}
	defaultID, _ := normalize(entities, preferred, now)

	c.table.Replace(ctx, entities, defaultID)

	result, err := c.ByID(added.EntityID())
	if err != nil {
		return zero, err
	}
	return result, nil
}

// Update applies mutate to the entity matching id and bumps its UpdatedAt.
// If the mutation sets the default flag, every other entity is demoted in the
// same write; the last default can not be unset by mutation alone.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(T)) (T, error) {
	var zero T
	entities := c.table.Snapshot()

	idx := indexOf(entities, id)
	if idx < 0 {
		return zero, apperrors.NotFound(c.name, id)
	}

	now := c.now()
	target := entities[idx]
	wasDefault := target.Default()
	mutate(target)
	target.Touch(now)

	preferred := ""
	switch {
	case target.Default():
		// Promotion: "setting me as default unsets everyone else".
		preferred = target.EntityID()
	case wasDefault:
		// Explicitly unsetting the default is not supported; restore it so a
		// non-empty collection never settles without one.
		target.SetDefaultFlag(true)
		preferred = target.EntityID()
	}

	defaultID, _ := normalize(entities, preferred, now)
	c.table.Replace(ctx, entities, defaultID)

	return c.ByID(id)
}

// Remove hard-deletes the entity matching id. If the default was removed and
// entities remain, the earliest-inserted survivor is promoted in the same
// write; an emptied collection clears its default tracking.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	entities := c.table.Snapshot()

	idx := indexOf(entities, id)
	if idx < 0 {
		return apperrors.NotFound(c.name, id)
	}

	entities = append(entities[:idx], entities[idx+1:]...)

	defaultID := ""
	if len(entities) > 0 {
		defaultID, _ = normalize(entities, "", c.now())
	}

	c.table.Replace(ctx, entities, defaultID)
	return nil
}

// SetDefault promotes the entity matching id. Calling it on the current
// default is a no-op producing an identical snapshot: no timestamps move and
// no write is issued.
func (c *Collection[T]) SetDefault(ctx context.Context, id string) (T, error) {
	current, err := c.ByID(id)
	if err != nil {
		return current, err
	}
	if current.Default() {
		return current, nil
	}

	return c.Update(ctx, id, func(e T) {
		e.SetDefaultFlag(true)
	})
}

// Default returns the current default entity, if any.
func (c *Collection[T]) Default() (T, bool) {
	var zero T
	for _, e := range c.table.Snapshot() {
		if e.Default() {
			return e, true
		}
	}
	return zero, false
}

// ByID returns the entity matching id or a NotFound error the caller decides
// how to treat.
func (c *Collection[T]) ByID(id string) (T, error) {
	var zero T
	entities := c.table.Snapshot()
	idx := indexOf(entities, id)
	if idx < 0 {
		return zero, apperrors.NotFound(c.name, id)
	}
	return entities[idx], nil
}

// Active returns the entities whose visibility flag is set, in insertion order.
func (c *Collection[T]) Active() []T {
	var out []T
	for _, e := range c.table.Snapshot() {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns all entities in insertion order.
func (c *Collection[T]) Snapshot() []T {
	return c.table.Snapshot()
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	return c.table.Len()
}

// Subscribe registers a listener on the underlying table.
func (c *Collection[T]) Subscribe(fn func([]T)) func() {
	return c.table.Subscribe(fn)
}

// LastSaveErr exposes the most recent durable-write outcome.
func (c *Collection[T]) LastSaveErr() error {
	return c.table.LastSaveErr()
}

// Destroy tears the collection down at session end.
func (c *Collection[T]) Destroy(ctx context.Context) error {
	return c.table.Destroy(ctx)
}

// normalize recomputes the single-default invariant over the full sequence.
// When preferred is set, that entity becomes the sole default; otherwise the
// first flagged entity wins, and a non-empty sequence with no flagged entity
// has its earliest member promoted. Entities whose flag flips get their
// UpdatedAt refreshed. Returns the settled default id and whether any flag
// changed.
func normalize[T Entity[T]](entities []T, preferred string, now time.Time) (string, bool) {
	if len(entities) == 0 {
		return "", false
	}

	winner := preferred
	if winner == "" {
		for _, e := range entities {
			if e.Default() {
				winner = e.EntityID()
				break
			}
		}
	}
	if winner == "" {
		winner = entities[0].EntityID()
	}

	changed := false
	count := 0
	for _, e := range entities {
		want := e.EntityID() == winner
		if e.Default() != want {
			e.SetDefaultFlag(want)
			e.Touch(now)
			changed = true
		}
		if want {
			count++
		}
	}

	if count != 1 {
		// Unreachable through the public API: the winner id is always drawn
		// from the sequence itself.
		panic(fmt.Sprintf("state: %d defaults after normalize", count))
	}

	return winner, changed
}

func indexOf[T Entity[T]](entities []T, id string) int {
	for i, e := range entities {
		if e.EntityID() == id {
			return i
		}
	}
	return -1
}
