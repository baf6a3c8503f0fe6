package handler

import (
	"encoding/json"
	"net/http"

	"gameswap-api/internal/service"
	"gameswap-api/pkg/apierror"
	"gameswap-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ExchangeHandler handles exchange-related HTTP requests.
type ExchangeHandler struct {
	exchangeService *service.ExchangeService
}

// NewExchangeHandler creates a new exchange handler.
func NewExchangeHandler(exchangeService *service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService}
}

// List handles GET /exchanges
func (h *ExchangeHandler) List(w http.ResponseWriter, r *http.Request) {
	exchanges, err := h.exchangeService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, exchanges)
}

// Create handles POST /exchanges
func (h *ExchangeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ProposeExchangeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	ex, err := h.exchangeService.Propose(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, "/exchanges/"+ex.ID, ex)
}

// Get handles GET /exchanges/{id}
func (h *ExchangeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exchangeService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, ex)
}

// Accept handles POST /exchanges/{id}/accept
func (h *ExchangeHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exchangeService.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, ex)
}

// Reject handles POST /exchanges/{id}/reject
func (h *ExchangeHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ex, err := h.exchangeService.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, ex)
}

// ListForUser handles GET /exchanges/user/{userId}
func (h *ExchangeHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	exchanges, err := h.exchangeService.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, exchanges)
}
