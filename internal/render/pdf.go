package render

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/jung-kurt/gofpdf"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

var _ bill.Renderer = (*PDF)(nil)

// PDF renders bills procedurally: a fresh document is built from scratch on
// every call with a fixed sequential layout, no template asset involved.
type PDF struct{}

// NewPDF returns the procedural PDF renderer.
func NewPDF() *PDF {
	return &PDF{}
}

// Render writes the bill into a new A4 document and returns its bytes.
func (*PDF) Render(b *bill.Bill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bill "+b.BillID, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, "SIDDHA SHIVALAYAS", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Clinic & Pharmacy - Itemized Bill", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	for _, line := range []string{
		"Bill No: " + b.BillID,
		"Date: " + b.Date,
		"Patient: " + b.Name,
		"Phone: " + b.Phone,
		"Address: " + b.Address,
		"Treatment / Medicine: " + b.Treatment,
	} {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Items table.
	headers := []string{"Description", "Price", "Qty", "GST %", "Base", "GST Amt", "Amount"}
	widths := []float64{60, 22, 14, 16, 26, 26, 26}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range b.Items {
		cells := []string{
			it.Description,
			it.Price.StringFixed(2),
			it.Quantity.String(),
			it.GSTRate.String(),
			it.BaseTotal.StringFixed(2),
			it.GSTAmount.StringFixed(2),
			it.FinalAmount.StringFixed(2),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals block, right-aligned under the table.
	totals := []struct {
		label string
		value string
	}{
		{"Subtotal", b.Subtotal.StringFixed(2)},
		{"Total GST", b.TotalGST.StringFixed(2)},
		{"Discount", b.Discount.StringFixed(2)},
		{"Grand Total", b.Total.StringFixed(2)},
	}
	for i, row := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont("Arial", style, 11)
		pdf.CellFormat(138, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(52, 7, row.value, "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, "Thank you. Get well soon.", "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "build pdf")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "write pdf")
	}
	return buf.Bytes(), nil
}
