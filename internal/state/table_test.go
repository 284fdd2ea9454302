package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/store"
	apperrors "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/errors"
)

// failingStore rejects every write so the fail-soft path can be observed.
type failingStore struct {
	saveErr error
}

func (f *failingStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (f *failingStore) Save(ctx context.Context, key string, value any) error {
	return f.saveErr
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	return nil
}

func addr(id, recipient string, isDefault bool) *domain.Address {
	a := &domain.Address{RecipientName: recipient, Street: "Jl. Melati 3", City: "Jakarta"}
	a.ID = id
	a.IsDefault = isDefault
	a.IsActive = true
	return a
}

func TestTable_ReplaceInstallsSnapshot(t *testing.T) {
	table := NewTable[*domain.Address]("addresses:u1", store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true), addr("a2", "Budi", false)}, "a1")

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "a1", table.DefaultID())
	assert.NoError(t, table.LastSaveErr())
}

func TestTable_SnapshotIsDefensiveCopy(t *testing.T) {
	table := NewTable[*domain.Address]("addresses:u1", store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true)}, "a1")

	snap := table.Snapshot()
	snap[0].RecipientName = "Mutated"

	fresh := table.Snapshot()
	assert.Equal(t, "Ayu", fresh[0].RecipientName, "mutating a snapshot must not leak into the table")
}

func TestTable_ReplaceClonesInput(t *testing.T) {
	table := NewTable[*domain.Address]("addresses:u1", store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	input := addr("a1", "Ayu", true)
	table.Replace(ctx, []*domain.Address{input}, "a1")
	input.RecipientName = "Mutated"

	snap := table.Snapshot()
	assert.Equal(t, "Ayu", snap[0].RecipientName, "caller mutations after Replace must not leak in")
}

func TestTable_SubscribersSeeEveryReplace(t *testing.T) {
	table := NewTable[*domain.Address]("addresses:u1", store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	var seen [][]*domain.Address
	cancel := table.Subscribe(func(snapshot []*domain.Address) {
		seen = append(seen, snapshot)
	})

	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true)}, "a1")
	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true), addr("a2", "Budi", false)}, "a1")

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Len(t, seen[1], 2)

	cancel()
	table.Replace(ctx, nil, "")
	assert.Len(t, seen, 2, "cancelled subscriber must not be invoked")
}

func TestTable_RoundTripThroughStore(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	first := NewTable[*domain.Address]("addresses:u1", st, testLogger())
	first.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true), addr("a2", "Budi", false)}, "a1")

	second := NewTable[*domain.Address]("addresses:u1", st, testLogger())
	require.NoError(t, second.Load(ctx))

	assert.Equal(t, 2, second.Len())
	assert.Equal(t, "a1", second.DefaultID())

	snap := second.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Ayu", snap[0].RecipientName)
	assert.True(t, snap[0].IsDefault)
	assert.False(t, snap[1].IsDefault)
}

func TestTable_SaveFailureKeepsInMemoryState(t *testing.T) {
	boom := errors.New("disk full")
	table := NewTable[*domain.Address]("addresses:u1", &failingStore{saveErr: boom}, testLogger())
	ctx := context.Background()

	notified := false
	table.Subscribe(func([]*domain.Address) { notified = true })

	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true)}, "a1")

	assert.Equal(t, 1, table.Len(), "in-memory state survives a failed durable write")
	assert.ErrorIs(t, table.LastSaveErr(), apperrors.ErrPersistence, "failure is classifiable via the sentinel")
	assert.ErrorIs(t, table.LastSaveErr(), boom, "the backend cause stays reachable")
	assert.True(t, notified, "subscribers still observe the settled snapshot")
}

func TestTable_SaveErrorClearsOnNextSuccess(t *testing.T) {
	st := &failingStore{saveErr: errors.New("disk full")}
	table := NewTable[*domain.Address]("addresses:u1", st, testLogger())
	ctx := context.Background()

	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true)}, "a1")
	require.Error(t, table.LastSaveErr())

	st.saveErr = nil
	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true)}, "a1")
	assert.NoError(t, table.LastSaveErr())
}

func TestTable_DestroyClearsAndNotifies(t *testing.T) {
	st := store.NewMemoryStore()
	table := NewTable[*domain.Address]("addresses:u1", st, testLogger())
	ctx := context.Background()

	table.Replace(ctx, []*domain.Address{addr("a1", "Ayu", true)}, "a1")
	require.Equal(t, 1, st.Len())

	var last []*domain.Address = []*domain.Address{addr("sentinel", "x", false)}
	table.Subscribe(func(snapshot []*domain.Address) { last = snapshot })

	require.NoError(t, table.Destroy(ctx))

	assert.Zero(t, table.Len())
	assert.Empty(t, table.DefaultID())
	assert.Nil(t, last, "subscribers observe the empty snapshot on destroy")
	assert.Zero(t, st.Len(), "persisted document is removed")
}
