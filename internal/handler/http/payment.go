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

// PaymentHandler exposes the payment method vault.
type PaymentHandler struct {
	scopes *state.Manager
	logger *slog.Logger
}

// NewPaymentHandler creates the payment method handler.
func NewPaymentHandler(scopes *state.Manager, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		scopes: scopes,
		logger: logger,
	}
}

// CreatePaymentMethodRequest is the payload for saving a payment method. The
// raw account number is masked before it ever reaches the collection.
type CreatePaymentMethodRequest struct {
	Type          string `json:"type" validate:"required,oneof=credit_card bank_transfer ewallet virtual_account"`
	DisplayName   string `json:"display_name" validate:"required,min=2,max=100"`
	AccountNumber string `json:"account_number" validate:"required,min=4,max=34"`
	BankName      string `json:"bank_name" validate:"omitempty,max=100"`
	IsDefault     bool   `json:"is_default"`
}

// UpdatePaymentMethodRequest is the payload for updating a payment method.
type UpdatePaymentMethodRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=100"`
	BankName    *string `json:"bank_name" validate:"omitempty,max=100"`
	IsDefault   *bool   `json:"is_default"`
}

func (h *PaymentHandler) scope(w http.ResponseWriter, r *http.Request) (*state.Scope, bool) {
	scope, ok := h.scopes.Scope()
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("no active session"), h.logger)
		return nil, false
	}
	return scope, true
}

// List returns the active payment methods in insertion order.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	methods := scope.Payments.Active()
	if methods == nil {
		methods = []*domain.PaymentMethod{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: methods})
}

// Create saves a payment method in the vault.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req CreatePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	method := &domain.PaymentMethod{
		Type:        domain.PaymentType(req.Type),
		DisplayName: req.DisplayName,
		AccountRef:  domain.MaskAccountRef(req.AccountNumber),
		BankName:    req.BankName,
	}
	method.IsActive = true
	method.IsDefault = req.IsDefault

	created, err := scope.Payments.Add(r.Context(), method)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "payment method created",
		slog.String("payment_method_id", created.ID),
		slog.String("type", created.Type.String()),
		slog.Bool("is_default", created.IsDefault),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: created})
}

// Update merges the request into the payment method matching the path id.
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid JSON body"), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := scope.Payments.Update(r.Context(), id, func(p *domain.PaymentMethod) {
		if req.DisplayName != nil {
			p.DisplayName = *req.DisplayName
		}
		if req.BankName != nil {
			p.BankName = *req.BankName
		}
		if req.IsDefault != nil && *req.IsDefault {
			p.IsDefault = true
		}
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// Delete removes the payment method matching the path id.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := scope.Payments.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "payment method removed", slog.String("payment_method_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// SetDefault promotes the payment method matching the path id.
func (h *PaymentHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := scope.Payments.SetDefault(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}

// GetDefault returns the current default payment method.
func (h *PaymentHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	method, found := scope.Payments.Default()
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("default payment method", "-"), h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: method})
}
