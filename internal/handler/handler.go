// Package handler exposes the bill service over HTTP and maps domain
// errors to status codes: validation → 400, unknown id → 404, render and
// persistence failures → 500 with a generic message.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

// Handler serves the bill endpoints.
type Handler struct {
	bills *bill.Service
}

// New constructs a Handler around the bill service.
func New(bills *bill.Service) *Handler {
	return &Handler{bills: bills}
}

// Routes returns the handler's route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /bills", h.createBill)
	mux.HandleFunc("GET /bills", h.listBills)
	mux.HandleFunc("GET /bills/{id}", h.getBill)
	mux.HandleFunc("DELETE /bills/{id}", h.deleteBill)
	return mux
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}
