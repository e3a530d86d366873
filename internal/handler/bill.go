package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

// createBillRequest mirrors the request body the clinic frontend sends.
// Numeric fields are lenient: both JSON numbers and quoted numbers are
// accepted, and validation happens in the domain, where it can produce a
// field-specific message.
type createBillRequest struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Phone               string           `json:"phone"`
	Address             string           `json:"address"`
	TreatmentOrMedicine string           `json:"treatmentOrMedicine"`
	Date                string           `json:"date"`
	Items               []createBillItem `json:"items"`
	Discount            jsonNumber       `json:"discount"`
}

type createBillItem struct {
	Description string     `json:"description"`
	Price       jsonNumber `json:"price"`
	Quantity    jsonNumber `json:"quantity"`
	GST         jsonNumber `json:"GST"`
}

// jsonNumber preserves the raw text of a JSON number, string, or null so
// the domain validator decides what is numeric.
type jsonNumber string

func (n *jsonNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = jsonNumber(s)
		return nil
	}
	*n = jsonNumber(data)
	return nil
}

func (req *createBillRequest) toInput() bill.GenerateInput {
	items := make([]bill.LineItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = bill.LineItemInput{
			Description: it.Description,
			Price:       string(it.Price),
			Quantity:    string(it.Quantity),
			GSTRate:     string(it.GST),
		}
	}
	return bill.GenerateInput{
		BillID:    req.ID,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Treatment: req.TreatmentOrMedicine,
		Date:      req.Date,
		Items:     items,
		Discount:  string(req.Discount),
	}
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.bills.Generate(r.Context(), req.toInput())
	if err != nil {
		h.writeBillError(w, r, err)
		return
	}

	writeDocument(w, http.StatusCreated, doc)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.History(r.Context())
	if err != nil {
		h.writeBillError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	format, err := bill.ParseFormat(r.URL.Query().Get("fileFormat"))
	if err != nil {
		h.writeBillError(w, r, err)
		return
	}

	doc, err := h.bills.Retrieve(r.Context(), r.PathValue("id"), format)
	if err != nil {
		h.writeBillError(w, r, err)
		return
	}

	writeDocument(w, http.StatusOK, doc)
}

func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.bills.Remove(r.Context(), id); err != nil {
		h.writeBillError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("bill %s deleted", id),
	})
}

func writeDocument(w http.ResponseWriter, status int, doc *bill.Document) {
	w.Header().Set("Content-Disposition", "attachment; filename="+doc.Filename)
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(status)
	_, _ = w.Write(doc.Content)
}

// writeBillError maps domain errors to HTTP responses. Unexpected errors
// are logged with request context and answered with a generic message.
func (h *Handler) writeBillError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *bill.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Reason)
		return
	}

	if errors.Is(err, bill.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}

	var rErr *bill.RenderError
	if errors.As(err, &rErr) {
		zctx.From(r.Context()).Error("Bill render failed",
			zap.String("format", string(rErr.Format)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "error generating bill document")
		return
	}

	zctx.From(r.Context()).Error("Bill request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
