package domain

import "time"

// Meta carries the fields shared by every collection-managed entity. Domain
// types embed it and gain the accessor methods the state package requires.
type Meta struct {
	ID        string    `json:"id"`
	IsDefault bool      `json:"is_default"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the opaque identifier assigned at creation.
func (m *Meta) EntityID() string {
	return m.ID
}

// SetEntityID assigns the identifier. Called once, at creation.
func (m *Meta) SetEntityID(id string) {
	m.ID = id
}

// Default reports whether this entity is the collection's default.
func (m *Meta) Default() bool {
	return m.IsDefault
}

// SetDefaultFlag flips the default marker.
func (m *Meta) SetDefaultFlag(v bool) {
	m.IsDefault = v
}

// Active reports the soft-visibility flag, independent of default status.
func (m *Meta) Active() bool {
	return m.IsActive
}

// Touch refreshes UpdatedAt, setting CreatedAt too on first write.
func (m *Meta) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
