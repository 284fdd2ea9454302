// Package session holds the authenticated identity the client core reads.
// The core consumes sessions, it never writes them; only the auth surface
// calls Login and Logout.
package session

import (
	"sync"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
)

// Session is the current identity. The zero value is anonymous.
type Session struct {
	UserID        string      `json:"user_id,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	Authenticated bool        `json:"authenticated"`
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// Context owns the current session and notifies subscribers on every change
// (login, logout, role change).
type Context struct {
	mu      sync.RWMutex
	current Session
	subs    map[int]func(Session)
	nextSub int
}

// NewContext creates a context holding an anonymous session.
func NewContext() *Context {
	return &Context{
		subs: make(map[int]func(Session)),
	}
}

// Current returns the session as of the last change.
func (c *Context) Current() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Login installs an authenticated session and notifies subscribers.
func (c *Context) Login(s Session) {
	s.Authenticated = true
	c.set(s)
}

// Logout resets to the anonymous session and notifies subscribers.
func (c *Context) Logout() {
	c.set(Anonymous())
}

func (c *Context) set(s Session) {
	c.mu.Lock()
	c.current = s
	subs := make([]func(Session), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// Subscribe registers a listener invoked with the new session after every
// change. The returned function cancels the subscription.
func (c *Context) Subscribe(fn func(Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}
