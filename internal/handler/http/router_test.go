package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/state"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/store"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/health"
)

type testShell struct {
	router   http.Handler
	sessions *session.Context
	tokens   *session.Manager
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewContext()
	tokens := session.NewManager("test-secret", time.Hour)
	scopes := state.NewManager(store.NewMemoryStore(), logger)
	t.Cleanup(scopes.Attach(sessions))

	router := NewRouter(sessions, tokens, scopes, time.Hour, health.NewHandler(), logger)
	return &testShell{
		router:   router,
		sessions: sessions,
		tokens:   tokens,
	}
}

func (s *testShell) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testShell) login(t *testing.T, userID string, role domain.Role) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		UserID: userID,
		Role:   role.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// decodeData unmarshals the "data" member of the response envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestShell_AnonymousVisitorRedirectedToLogin(t *testing.T) {
	s := newTestShell(t)

	rec := s.do(t, http.MethodGet, "/dashboard/customer/orders", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fdashboard%2Fcustomer%2Forders", rec.Header().Get("Location"))
}

func TestShell_WrongRoleRedirectedToOwnHome(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	rec := s.do(t, http.MethodGet, "/dashboard/agent", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/customer", rec.Header().Get("Location"))
}

func TestShell_AllowedRoleRendersView(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "agent-7", domain.RoleAgent)

	rec := s.do(t, http.MethodGet, "/dashboard/agent", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view viewPayload
	decodeData(t, rec, &view)
	assert.Equal(t, "agent-dashboard", view.View)
	assert.Equal(t, "agent", view.Role)
	assert.Equal(t, "agent-7", view.User)
}

func TestShell_AdminOnAgentDashboardLandsOnAdminHome(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "admin-1", domain.RoleAdmin)

	rec := s.do(t, http.MethodGet, "/dashboard/agent", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestShell_LoginViewIsPublic(t *testing.T) {
	s := newTestShell(t)

	rec := s.do(t, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShell_LoginSetsSessionCookie(t *testing.T) {
	s := newTestShell(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		UserID: "u1",
		Role:   "customer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var resp LoginResponse
	decodeData(t, rec, &resp)
	assert.True(t, resp.Session.Authenticated)
	assert.Equal(t, "u1", resp.Session.UserID)
	assert.NotEmpty(t, resp.Token)
}

func TestShell_LoginRejectsUnknownRole(t *testing.T) {
	s := newTestShell(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		UserID: "u1",
		Role:   "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShell_RestoreSessionFromCookie(t *testing.T) {
	s := newTestShell(t)

	token, err := s.tokens.Issue("u1", domain.RolePrincipal)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sess session.Session
	decodeData(t, rec, &sess)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, domain.RolePrincipal, sess.Role)
}

func TestShell_AddressLifecycle(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	// First address becomes default.
	rec := s.do(t, http.MethodPost, "/api/v1/me/addresses", CreateAddressRequest{
		RecipientName: "Ayu Lestari",
		Street:        "Jl. Sudirman 12",
		City:          "Jakarta",
		Province:      "DKI Jakarta",
		PostalCode:    "10110",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var first domain.Address
	decodeData(t, rec, &first)
	assert.True(t, first.IsDefault)

	// Second stays non-default.
	rec = s.do(t, http.MethodPost, "/api/v1/me/addresses", CreateAddressRequest{
		RecipientName: "Budi Santoso",
		Street:        "Jl. Thamrin 5",
		City:          "Jakarta",
		Province:      "DKI Jakarta",
		PostalCode:    "10230",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var second domain.Address
	decodeData(t, rec, &second)
	assert.False(t, second.IsDefault)

	// Promote the second; the first is demoted in the same write.
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/me/addresses/%s/default", second.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/me/addresses", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []domain.Address
	decodeData(t, rec, &listed)
	require.Len(t, listed, 2)
	defaults := 0
	for _, a := range listed {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	// Deleting the default promotes the survivor.
	rec = s.do(t, http.MethodDelete, "/api/v1/me/addresses/"+second.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/me/addresses/default", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var def domain.Address
	decodeData(t, rec, &def)
	assert.Equal(t, first.ID, def.ID)
	assert.True(t, def.IsDefault)
}

func TestShell_AddressUpdateMergesFields(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/v1/me/addresses", CreateAddressRequest{
		RecipientName: "Ayu Lestari",
		Street:        "Jl. Sudirman 12",
		City:          "Jakarta",
		Province:      "DKI Jakarta",
		PostalCode:    "10110",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Address
	decodeData(t, rec, &created)

	city := "Bandung"
	rec = s.do(t, http.MethodPut, "/api/v1/me/addresses/"+created.ID, UpdateAddressRequest{
		City: &city,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Address
	decodeData(t, rec, &updated)
	assert.Equal(t, "Bandung", updated.City)
	assert.Equal(t, "Ayu Lestari", updated.RecipientName)
}

func TestShell_AddressValidation(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/v1/me/addresses", CreateAddressRequest{
		RecipientName: "A",
		Street:        "Jl. Sudirman 12",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Error struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Error.Fields, "RecipientName")
	assert.Contains(t, envelope.Error.Fields, "City")
}

func TestShell_AddressNotFound(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	rec := s.do(t, http.MethodDelete, "/api/v1/me/addresses/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShell_PaymentMethodMasksAccountNumber(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/v1/me/payment-methods", CreatePaymentMethodRequest{
		Type:          "credit_card",
		DisplayName:   "Visa utama",
		AccountNumber: "4242424242424242",
		BankName:      "BCA",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.PaymentMethod
	decodeData(t, rec, &created)
	assert.Equal(t, "**** 4242", created.AccountRef)
	assert.NotContains(t, rec.Body.String(), "4242424242424242")
	assert.True(t, created.IsDefault, "first payment method becomes default")
}

func TestShell_LogoutClearsSessionState(t *testing.T) {
	s := newTestShell(t)
	s.login(t, "u1", domain.RoleCustomer)

	rec := s.do(t, http.MethodPost, "/api/v1/me/addresses", CreateAddressRequest{
		RecipientName: "Ayu Lestari",
		Street:        "Jl. Sudirman 12",
		City:          "Jakarta",
		Province:      "DKI Jakarta",
		PostalCode:    "10110",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	// The account endpoints are gated again.
	rec = s.do(t, http.MethodGet, "/api/v1/me/addresses", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// A fresh login finds no leftover state from the previous session.
	s.login(t, "u1", domain.RoleCustomer)
	rec = s.do(t, http.MethodGet, "/api/v1/me/addresses", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []domain.Address
	decodeData(t, rec, &listed)
	assert.Empty(t, listed)
}

func TestShell_ContentTypeEnforcedOnWrites(t *testing.T) {
	s := newTestShell(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"user_id":"u1","role":"customer"}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestShell_HealthEndpoints(t *testing.T) {
	s := newTestShell(t)

	rec := s.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
