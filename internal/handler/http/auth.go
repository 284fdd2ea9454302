package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	apperrors "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/errors"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/httputil"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/validator"
)

// AuthHandler owns the session lifecycle endpoints. Credential verification
// belongs to the commerce backend, which this client only ever mocks; the
// handler accepts the identity the backend would have verified and installs
// it as the current session.
type AuthHandler struct {
	sessions *session.Context
	tokens   *session.Manager
	ttl      time.Duration
	logger   *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(sessions *session.Context, tokens *session.Manager, ttl time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=64"`
	Role   string `json:"role" validate:"required,oneof=admin principal agent customer"`
}

// LoginResponse returns the established session and its token.
type LoginResponse struct {
	Session session.Session `json:"session"`
	Token   string          `json:"token"`
}

// Login establishes the session and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}

	token, err := h.tokens.Issue(req.UserID, role)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	sess := session.Session{UserID: req.UserID, Role: role}
	h.sessions.Login(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.InfoContext(r.Context(), "session established",
		slog.String("user_id", req.UserID),
		slog.String("role", role.String()),
	)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: LoginResponse{
		Session: h.sessions.Current(),
		Token:   token,
	}})
}

// Logout tears the session down and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.Current().UserID
	h.sessions.Logout()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.InfoContext(r.Context(), "session ended", slog.String("user_id", userID))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session.Anonymous()})
}

// Session returns the current session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.sessions.Current()})
}
