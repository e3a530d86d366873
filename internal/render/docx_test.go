package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

func testBill(t *testing.T) *bill.Bill {
	t.Helper()
	items := []bill.LineItem{
		bill.ComputeLineItem("Consultation", decimal.NewFromInt(100), decimal.NewFromInt(1), decimal.NewFromInt(18)),
		bill.ComputeLineItem("Herbal tonic", decimal.RequireFromString("45.50"), decimal.NewFromInt(2), decimal.NewFromInt(12)),
	}
	subtotal, totalGST, total := bill.ComputeTotals(items, decimal.NewFromInt(10))
	return &bill.Bill{
		BillID:    "B-1001",
		Name:      "Asha",
		Phone:     "9876543210",
		Address:   "12 Temple Street",
		Treatment: "Herbal treatment",
		Date:      "2025-06-15",
		Items:     items,
		Discount:  decimal.NewFromInt(10),
		Subtotal:  subtotal,
		TotalGST:  totalGST,
		Total:     total,
	}
}

// documentXML extracts the word/document.xml part from a rendered docx.
func documentXML(t *testing.T, docx []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatal("word/document.xml not found in archive")
	return ""
}

func TestDocx_Render(t *testing.T) {
	r, err := NewDocx()
	require.NoError(t, err)

	out, err := r.Render(testBill(t))
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// A docx is a zip archive; it must carry the fixed packaging parts.
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "_rels/.rels")
	assert.Contains(t, names, "word/document.xml")

	doc := documentXML(t, out)
	assert.Contains(t, doc, "B-1001")
	assert.Contains(t, doc, "Asha")
	assert.Contains(t, doc, "Consultation")
	assert.Contains(t, doc, "Herbal tonic")
	assert.Contains(t, doc, "191.00")  // subtotal
	assert.Contains(t, doc, "28.92")   // total GST
	assert.Contains(t, doc, "209.92")  // grand total
	assert.NotContains(t, doc, "{{")   // no unresolved placeholders
}

func TestDocx_RenderEscapesXML(t *testing.T) {
	r, err := NewDocx()
	require.NoError(t, err)

	b := testBill(t)
	b.Name = `Asha & "Ravi" <family>`

	out, err := r.Render(b)
	require.NoError(t, err)

	doc := documentXML(t, out)
	assert.Contains(t, doc, "Asha &amp; &quot;Ravi&quot; &lt;family&gt;")
	assert.NotContains(t, doc, "<family>")
}

func TestDocx_RenderIdempotent(t *testing.T) {
	r, err := NewDocx()
	require.NoError(t, err)

	b := testBill(t)
	first, err := r.Render(b)
	require.NoError(t, err)
	second, err := r.Render(b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDocx_FieldMismatchIsPerRequestError(t *testing.T) {
	// A template expecting a field the bind set does not carry fails on
	// Render, not at construction, and leaves the renderer usable.
	r, err := newDocx(`<w:document><w:body><w:p><w:r><w:t>{{.NoSuchField}}</w:t></w:r></w:p></w:body></w:document>`)
	require.NoError(t, err)

	_, err = r.Render(testBill(t))
	require.Error(t, err)
}

func TestNewDocxFromFile_Missing(t *testing.T) {
	_, err := NewDocxFromFile("testdata/does-not-exist.xml")
	require.Error(t, err)
}

func TestNewDocx_CorruptTemplate(t *testing.T) {
	_, err := newDocx(`{{range .Items}} unterminated`)
	require.Error(t, err)
}

func TestDocx_ConcurrentRendersAreIsolated(t *testing.T) {
	r, err := NewDocx()
	require.NoError(t, err)

	const n = 16
	outputs := make([][]byte, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			b := testBill(t)
			b.BillID = fmt.Sprintf("B-%04d", i)
			b.Name = fmt.Sprintf("Patient %d", i)
			outputs[i], errs[i] = r.Render(b)
		}()
	}
	wg.Wait()

	// Each render must carry exactly its own request's bindings; a shared
	// document instance would leak one request's fields into another's.
	for i := range n {
		require.NoError(t, errs[i])
		doc := documentXML(t, outputs[i])
		assert.Contains(t, doc, fmt.Sprintf("B-%04d", i))
		assert.Contains(t, doc, fmt.Sprintf("Patient %d", i))
		for j := range n {
			if j != i {
				assert.NotContains(t, doc, fmt.Sprintf("Patient %d<", j))
			}
		}
	}
}
