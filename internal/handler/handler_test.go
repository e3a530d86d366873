package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

// --- Mock implementations ---

type memBillRepo struct {
	bills     []*bill.Bill
	createErr error
	listErr   error
}

func (m *memBillRepo) Create(_ context.Context, b *bill.Bill) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.bills = append(m.bills, b)
	return nil
}

func (m *memBillRepo) FindAll(_ context.Context) ([]bill.Bill, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]bill.Bill, len(m.bills))
	for i, b := range m.bills {
		out[i] = *b
	}
	return out, nil
}

func (m *memBillRepo) FindByBillID(_ context.Context, billID string) (*bill.Bill, error) {
	for i := len(m.bills) - 1; i >= 0; i-- {
		if m.bills[i].BillID == billID {
			return m.bills[i], nil
		}
	}
	return nil, bill.ErrNotFound
}

func (m *memBillRepo) DeleteByBillID(_ context.Context, billID string) error {
	kept := m.bills[:0]
	found := false
	for _, b := range m.bills {
		if b.BillID == billID {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	m.bills = kept
	if !found {
		return bill.ErrNotFound
	}
	return nil
}

type staticRenderer struct {
	content []byte
	err     error
}

func (s *staticRenderer) Render(*bill.Bill) ([]byte, error) {
	return s.content, s.err
}

// --- Helpers ---

func newTestHandler(repo *memBillRepo, docx, pdf bill.Renderer) http.Handler {
	svc := bill.NewService(repo, map[bill.Format]bill.Renderer{
		bill.FormatDocx: docx,
		bill.FormatPDF:  pdf,
	})
	return New(svc).Routes()
}

const createBody = `{
	"id": "B-1001",
	"name": "Asha",
	"phone": "9876543210",
	"address": "12 Temple Street",
	"treatmentOrMedicine": "Herbal treatment",
	"date": "2025-06-15",
	"items": [{"description": "Consultation", "price": 100, "quantity": 1, "GST": 18}],
	"discount": 0
}`

func createBill(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// --- Tests ---

func TestCreateBill(t *testing.T) {
	repo := &memBillRepo{}
	h := newTestHandler(repo, &staticRenderer{content: []byte("docx-bytes")}, &staticRenderer{})

	w := createBill(t, h, createBody)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "attachment; filename=generated-bill-B-1001.docx", w.Header().Get("Content-Disposition"))
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		w.Header().Get("Content-Type"))
	assert.Equal(t, "docx-bytes", w.Body.String())

	require.Len(t, repo.bills, 1)
	assert.Equal(t, "118.00", repo.bills[0].Total.StringFixed(2))
}

func TestCreateBill_QuotedNumbersAccepted(t *testing.T) {
	repo := &memBillRepo{}
	h := newTestHandler(repo, &staticRenderer{content: []byte("d")}, &staticRenderer{})

	body := `{
		"id": "B-2",
		"items": [{"description": "Syrup", "price": "45.50", "quantity": "2", "GST": "12"}],
		"discount": "abc"
	}`
	w := createBill(t, h, body)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.bills, 1)
	assert.Equal(t, "91.00", repo.bills[0].Subtotal.StringFixed(2))
	// Non-numeric discount coerced to zero.
	assert.Equal(t, "0.00", repo.bills[0].Discount.StringFixed(2))
}

func TestCreateBill_ValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "empty items",
			body:        `{"id": "B-1", "items": []}`,
			wantMessage: "no items",
		},
		{
			name:        "malformed body",
			body:        `{"id": `,
			wantMessage: "invalid request body",
		},
		{
			name:        "negative price",
			body:        `{"id": "B-1", "items": [{"description": "X", "price": -1, "quantity": 1, "GST": 0}]}`,
			wantMessage: "price must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memBillRepo{}
			h := newTestHandler(repo, &staticRenderer{}, &staticRenderer{})

			w := createBill(t, h, tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w).Message, tt.wantMessage)
			assert.Empty(t, repo.bills, "validation failure must not create a record")
		})
	}
}

func TestCreateBill_RenderFailure(t *testing.T) {
	repo := &memBillRepo{}
	h := newTestHandler(repo, &staticRenderer{err: errors.New("bad placeholder")}, &staticRenderer{})

	w := createBill(t, h, createBody)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error generating bill document", decodeError(t, w).Message)
	// The record was persisted before rendering failed.
	assert.Len(t, repo.bills, 1)
}

func TestCreateBill_PersistenceFailure(t *testing.T) {
	repo := &memBillRepo{createErr: errors.New("connection refused")}
	h := newTestHandler(repo, &staticRenderer{}, &staticRenderer{})

	w := createBill(t, h, createBody)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// Generic message only; the underlying cause stays in the logs.
	assert.Equal(t, "internal server error", decodeError(t, w).Message)
}

func TestListBills(t *testing.T) {
	repo := &memBillRepo{}
	h := newTestHandler(repo, &staticRenderer{content: []byte("d")}, &staticRenderer{})

	createBill(t, h, createBody)

	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var bills []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bills))
	require.Len(t, bills, 1)
	assert.Equal(t, "B-1001", bills[0]["id"])
	assert.Equal(t, "118", bills[0]["total"])

	items, ok := bills[0]["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestListBills_StoreFailure(t *testing.T) {
	repo := &memBillRepo{listErr: errors.New("down")}
	h := newTestHandler(repo, &staticRenderer{}, &staticRenderer{})

	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetBill(t *testing.T) {
	repo := &memBillRepo{}
	h := newTestHandler(repo,
		&staticRenderer{content: []byte("docx-bytes")},
		&staticRenderer{content: []byte("%PDF-bytes")},
	)

	createBill(t, h, createBody)

	tests := []struct {
		name        string
		url         string
		wantType    string
		wantBody    string
		wantName    string
	}{
		{
			name:     "default format is docx",
			url:      "/bills/B-1001",
			wantType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			wantBody: "docx-bytes",
			wantName: "generated-bill-B-1001.docx",
		},
		{
			name:     "explicit docx",
			url:      "/bills/B-1001?fileFormat=docx",
			wantType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			wantBody: "docx-bytes",
			wantName: "generated-bill-B-1001.docx",
		},
		{
			name:     "pdf",
			url:      "/bills/B-1001?fileFormat=pdf",
			wantType: "application/pdf",
			wantBody: "%PDF-bytes",
			wantName: "generated-bill-B-1001.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "attachment; filename="+tt.wantName, w.Header().Get("Content-Disposition"))
		})
	}
}

func TestGetBill_UnknownFormat(t *testing.T) {
	h := newTestHandler(&memBillRepo{}, &staticRenderer{}, &staticRenderer{})

	req := httptest.NewRequest(http.MethodGet, "/bills/B-1?fileFormat=xlsx", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "unsupported file format")
}

func TestGetBill_NotFound(t *testing.T) {
	h := newTestHandler(&memBillRepo{}, &staticRenderer{}, &staticRenderer{})

	req := httptest.NewRequest(http.MethodGet, "/bills/unknown", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "bill not found", decodeError(t, w).Message)
}

func TestDeleteBill(t *testing.T) {
	repo := &memBillRepo{}
	h := newTestHandler(repo, &staticRenderer{content: []byte("d")}, &staticRenderer{})

	createBill(t, h, createBody)

	req := httptest.NewRequest(http.MethodDelete, "/bills/B-1001", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted")

	// Deleted is terminal: a follow-up fetch is a 404.
	req = httptest.NewRequest(http.MethodGet, "/bills/B-1001", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBill_NotFound(t *testing.T) {
	h := newTestHandler(&memBillRepo{}, &staticRenderer{}, &staticRenderer{})

	req := httptest.NewRequest(http.MethodDelete, "/bills/unknown", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
