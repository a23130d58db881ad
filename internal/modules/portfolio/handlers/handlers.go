// Package handlers provides HTTP handlers for portfolio management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/domain"
	"github.com/aristath/stockboard/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	ledger *portfolio.Ledger
	log    zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(ledger *portfolio.Ledger, log zerolog.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		log:    log.With().Str("handler", "portfolio").Logger(),
	}
}

// CreateRequest is the body of POST /api/portfolios
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QuantityRequest is the body of PUT /api/portfolios/{id}/stocks/{stockID}
type QuantityRequest struct {
	Quantity *int64 `json:"quantity"`
}

// HandleList handles GET /api/portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	portfolios := h.ledger.Portfolios()
	views := make([]portfolio.View, len(portfolios))
	for i, p := range portfolios {
		views[i] = portfolio.NewView(p)
	}

	current := ""
	if p, ok := h.ledger.Current(); ok {
		current = p.ID
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"portfolios":       views,
		"currentPortfolio": current,
	})
}

// HandleCreate handles POST /api/portfolios
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.ledger.CreatePortfolio(r.Context(), req.Name, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, portfolio.NewView(p))
}

// HandleGetCurrent handles GET /api/portfolios/current
func (h *Handler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ledger.Current()
	if !ok {
		h.writeError(w, http.StatusNotFound, "no portfolio selected")
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.NewView(p))
}

// HandleGet handles GET /api/portfolios/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.ledger.Portfolio(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.NewView(p))
}

// HandleUpdate handles PUT /api/portfolios/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd portfolio.PortfolioUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.ledger.UpdatePortfolio(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.NewView(p))
}

// HandleDelete handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeletePortfolio(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSelect handles POST /api/portfolios/{id}/select
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	p, err := h.ledger.SelectPortfolio(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.NewView(p))
}

// HandleGetValuation handles GET /api/portfolios/{id}/valuation
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	v, err := h.ledger.Valuation(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// HandleGetAllocation handles GET /api/portfolios/{id}/allocation
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	alloc, err := h.ledger.Allocation(chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, alloc)
}

// HandleAddStock handles POST /api/portfolios/{id}/stocks
func (h *Handler) HandleAddStock(w http.ResponseWriter, r *http.Request) {
	var stock portfolio.Stock
	if err := json.NewDecoder(r.Body).Decode(&stock); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.ledger.AddStock(r.Context(), chi.URLParam(r, "id"), stock)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.StockView{Stock: s, Valuation: s.Valuation()})
}

// HandleUpdateStockQuantity handles PUT /api/portfolios/{id}/stocks/{stockID}
func (h *Handler) HandleUpdateStockQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		h.writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	s, err := h.ledger.UpdateStockQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stockID"), *req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio.StockView{Stock: s, Valuation: s.Valuation()})
}

// HandleRemoveStock handles DELETE /api/portfolios/{id}/stocks/{stockID}
func (h *Handler) HandleRemoveStock(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.RemoveStock(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stockID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDomainError maps ledger errors to status codes
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Portfolio operation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response. The body is encoded before the status is sent.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
