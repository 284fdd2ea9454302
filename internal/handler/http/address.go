package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/domain"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/state"
	apperrors "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/errors"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/httputil"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/validator"
)

// AddressHandler exposes the address book collection.
type AddressHandler struct {
	scopes *state.Manager
	logger *slog.Logger
}

// NewAddressHandler creates the address handler.
func NewAddressHandler(scopes *state.Manager, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{
		scopes: scopes,
		logger: logger,
	}
}

// CreateAddressRequest is the payload for adding an address.
type CreateAddressRequest struct {
	Label         string `json:"label" validate:"omitempty,max=50"`
	RecipientName string `json:"recipient_name" validate:"required,min=2,max=100"`
	Phone         string `json:"phone" validate:"omitempty,min=7,max=20"`
	Street        string `json:"street" validate:"required,max=200"`
	City          string `json:"city" validate:"required,max=100"`
	Province      string `json:"province" validate:"required,max=100"`
	PostalCode    string `json:"postal_code" validate:"required,max=12"`
	IsDefault     bool   `json:"is_default"`
}

// UpdateAddressRequest is the payload for updating an address. Nil fields are
// left untouched.
type UpdateAddressRequest struct {
	Label         *string `json:"label" validate:"omitempty,max=50"`
	RecipientName *string `json:"recipient_name" validate:"omitempty,min=2,max=100"`
	Phone         *string `json:"phone" validate:"omitempty,min=7,max=20"`
	Street        *string `json:"street" validate:"omitempty,max=200"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	Province      *string `json:"province" validate:"omitempty,max=100"`
	PostalCode    *string `json:"postal_code" validate:"omitempty,max=12"`
	IsDefault     *bool   `json:"is_default"`
}

func (h *AddressHandler) scope(w http.ResponseWriter, r *http.Request) (*state.Scope, bool) {
	scope, ok := h.scopes.Scope()
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no active session"), h.logger)
		return nil, false
	}
	return scope, true
}

// List returns the active addresses in insertion order.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	addresses := scope.Addresses.Active()
	if addresses == nil {
		addresses = []*domain.Address{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: addresses})
}

// Create adds an address to the book.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req CreateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	addr := &domain.Address{
		Label:         req.Label,
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
		Street:        req.Street,
		City:          req.City,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
	}
	addr.IsActive = true
	addr.IsDefault = req.IsDefault

	created, err := scope.Addresses.Add(r.Context(), addr)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "address created",
		slog.String("address_id", created.ID),
		slog.Bool("is_default", created.IsDefault),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: created})
}

// Update merges the request into the address matching the path id.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := scope.Addresses.Update(r.Context(), id, func(a *domain.Address) {
		if req.Label != nil {
			a.Label = *req.Label
		}
		if req.RecipientName != nil {
			a.RecipientName = *req.RecipientName
		}
		if req.Phone != nil {
			a.Phone = *req.Phone
		}
		if req.Street != nil {
			a.Street = *req.Street
		}
		if req.City != nil {
			a.City = *req.City
		}
		if req.Province != nil {
			a.Province = *req.Province
		}
		if req.PostalCode != nil {
			a.PostalCode = *req.PostalCode
		}
		if req.IsDefault != nil && *req.IsDefault {
			a.IsDefault = true
		}
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// Delete removes the address matching the path id.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := scope.Addresses.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "address removed", slog.String("address_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// SetDefault promotes the address matching the path id.
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := scope.Addresses.SetDefault(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// GetDefault returns the current default address.
func (h *AddressHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	addr, found := scope.Addresses.Default()
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("default address", "-"), h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: addr})
}
