package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/gate"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/logger"
)

// sessionCookie is where the signed session token lives between reloads.
const sessionCookie = "hub_session"

// ContentTypeJSON enforces that requests with a body carry application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RestoreSession rehydrates the session context from a valid session token
// (cookie or bearer header) when the current session is anonymous. This is
// what lets a logged-in session survive a reload of the client process.
// Once a session is established, the request-scoped logger is re-enriched so
// downstream log records carry the user id.
func RestoreSession(sc *session.Context, tokens *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sc.Current().Authenticated {
				if token := sessionToken(r); token != "" {
					if sess, err := tokens.Validate(token); err == nil {
						sc.Login(sess)
					}
				}
			}

			if sess := sc.Current(); sess.Authenticated {
				ctx := logger.WithSessionUser(r.Context(), sess.UserID)
				ctx = logger.NewContext(ctx, logger.WithContext(ctx, logger.FromContext(ctx)))
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Gated wraps a view handler with the authorization gate. The view's allowed
// roles are declared here, at the route table; the handler itself performs no
// checks. Gate decisions map to 303 redirects the way the client router maps
// them to navigation.
func Gated(sc *session.Context, allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view := gate.View{
				Path:         r.URL.Path,
				AllowedRoles: allowed,
			}

			decision := gate.Decide(sc.Current(), view)
			switch decision.Outcome {
			case gate.Render:
				next.ServeHTTP(w, r)
			case gate.RedirectToLogin:
				target := decision.Target + "?next=" + url.QueryEscape(decision.Next)
				http.Redirect(w, r, target, http.StatusSeeOther)
			case gate.RedirectToRoleHome:
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			}
		})
	}
}

// sessionToken extracts the session token from the request, preferring the
// Authorization header over the cookie.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}
