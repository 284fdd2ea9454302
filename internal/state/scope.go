package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/store"
)

// Scope bundles the collections owned by one session. It is built at login,
// survives reloads through the durable store, and is torn down at logout.
// Consumers receive it from the Manager; there are no package-level mutables.
type Scope struct {
	UserID    string
	Addresses *Collection[*domain.Address]
	Payments  *Collection[*domain.PaymentMethod]
}

// Manager builds and tears down scopes as the session changes.
type Manager struct {
	store  store.Store
	logger *slog.Logger

	mu      sync.RWMutex
	current *Scope
}

// NewManager creates a scope manager over the given durable store.
func NewManager(st store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  st,
		logger: logger,
	}
}

// Attach subscribes the manager to session changes: login opens a scope for
// the authenticated user, logout destroys the current one. The returned
// function cancels the subscription.
func (m *Manager) Attach(sc *session.Context) func() {
	// Pick up a session restored before Attach was called.
	if sess := sc.Current(); sess.Authenticated {
		m.handle(sess)
	}

	return sc.Subscribe(m.handle)
}

func (m *Manager) handle(sess session.Session) {
	ctx := context.Background()

	if !sess.Authenticated {
		m.Close(ctx)
		return
	}

	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()
	if cur != nil && cur.UserID == sess.UserID {
		return
	}

	if _, err := m.Open(ctx, sess.UserID); err != nil {
		m.logger.Error("failed to open session scope",
			slog.String("user_id", sess.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// Open builds the scope for the given user, restoring persisted snapshots.
// An already-open scope for another user is destroyed first.
func (m *Manager) Open(ctx context.Context, userID string) (*Scope, error) {
	m.Close(ctx)

	addresses := NewCollection("address",
		NewTable[*domain.Address]("addresses:"+userID, m.store, m.logger))
	payments := NewCollection("payment method",
		NewTable[*domain.PaymentMethod]("payments:"+userID, m.store, m.logger))

	if err := addresses.Load(ctx); err != nil {
		return nil, err
	}
	if err := payments.Load(ctx); err != nil {
		return nil, err
	}

	scope := &Scope{
		UserID:    userID,
		Addresses: addresses,
		Payments:  payments,
	}

	m.mu.Lock()
	m.current = scope
	m.mu.Unlock()

	m.logger.Info("session scope opened",
		slog.String("user_id", userID),
		slog.Int("addresses", addresses.Len()),
		slog.Int("payment_methods", payments.Len()),
	)
	return scope, nil
}

// Close destroys the current scope, if any, clearing both the in-memory
// snapshots and the persisted documents.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	scope := m.current
	m.current = nil
	m.mu.Unlock()

	if scope == nil {
		return
	}

	if err := scope.Addresses.Destroy(ctx); err != nil {
		m.logger.Warn("failed to clear address book", slog.String("error", err.Error()))
	}
	if err := scope.Payments.Destroy(ctx); err != nil {
		m.logger.Warn("failed to clear payment vault", slog.String("error", err.Error()))
	}

	m.logger.Info("session scope closed", slog.String("user_id", scope.UserID))
}

// Scope returns the currently open scope.
func (m *Manager) Scope() (*Scope, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, false
	}
	return m.current, true
}
