package http

import (
	"net/http"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/httputil"
)

// viewPayload is what a shell view renders: the page content lives in the
// presentation layer, the shell only confirms which view mounted and for whom.
type viewPayload struct {
	View string `json:"view"`
	Role string `json:"role,omitempty"`
	User string `json:"user_id,omitempty"`
}

// ViewHandler renders the gated shell views. It carries no authorization
// logic of its own; by the time a request reaches it, the gate has decided.
type ViewHandler struct {
	sessions *session.Context
}

// NewViewHandler creates the shell view handler.
func NewViewHandler(sessions *session.Context) *ViewHandler {
	return &ViewHandler{sessions: sessions}
}

// Render returns a handler for the named view.
func (h *ViewHandler) Render(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.Current()
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: viewPayload{
			View: name,
			Role: sess.Role.String(),
			User: sess.UserID,
		}})
	}
}

// Login renders the login view. Public: the gate never guards it.
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: viewPayload{
		View: "login",
	}})
}
