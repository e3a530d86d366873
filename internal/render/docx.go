// Package render provides the document renderers for computed bills: a
// template renderer that substitutes bill fields into the clinic's Word
// template, and a procedural PDF renderer that lays the bill out from
// scratch. Both return a complete byte buffer and keep no state between
// calls.
package render

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"os"
	"strings"
	"text/template"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
)

//go:embed template/document.xml
var defaultDocumentXML string

// Static parts of the docx package. Only word/document.xml carries bill
// data; everything else is fixed packaging.
const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

var _ bill.Renderer = (*Docx)(nil)

// Docx renders bills by binding the fixed field set into a WordprocessingML
// template. The parsed template is immutable and shared; every Render call
// executes it into a fresh, request-scoped buffer, so concurrent renders
// never see each other's bindings.
type Docx struct {
	tmpl *template.Template
}

// NewDocx parses the embedded bill template. A parse failure here is fatal
// for the process: the service must not start without a usable template.
func NewDocx() (*Docx, error) {
	return newDocx(defaultDocumentXML)
}

// NewDocxFromFile parses a template override from disk, for clinics that
// customize the bill layout. The file must be the WordprocessingML document
// part, not a full .docx archive.
func NewDocxFromFile(path string) (*Docx, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read bill template %q", path)
	}
	return newDocx(string(raw))
}

func newDocx(src string) (*Docx, error) {
	tmpl, err := template.New("document.xml").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parse bill template")
	}
	return &Docx{tmpl: tmpl}, nil
}

// Render executes the template with the bill's fields and assembles the
// resulting document part into a docx archive.
func (d *Docx) Render(b *bill.Bill) ([]byte, error) {
	var docXML bytes.Buffer
	if err := d.tmpl.Execute(&docXML, bindBill(b)); err != nil {
		return nil, errors.Wrap(err, "bind bill fields")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", docXML.String()},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s", p.name)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, errors.Wrapf(err, "write %s", p.name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "finalize docx archive")
	}

	return buf.Bytes(), nil
}

// docxBill is the named-field set the template binds. All values are
// pre-escaped strings; monetary values are fixed to 2 decimal places.
type docxBill struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	Treatment string
	Date      string
	Items     []docxItem
	Subtotal  string
	TotalGST  string
	Discount  string
	Total     string
}

type docxItem struct {
	Description string
	Price       string
	Quantity    string
	GSTRate     string
	BaseTotal   string
	GSTAmount   string
	FinalAmount string
}

func bindBill(b *bill.Bill) docxBill {
	items := make([]docxItem, len(b.Items))
	for i, it := range b.Items {
		items[i] = docxItem{
			Description: esc(it.Description),
			Price:       money(it.Price),
			Quantity:    esc(it.Quantity.String()),
			GSTRate:     esc(it.GSTRate.String()),
			BaseTotal:   money(it.BaseTotal),
			GSTAmount:   money(it.GSTAmount),
			FinalAmount: money(it.FinalAmount),
		}
	}
	return docxBill{
		ID:        esc(b.BillID),
		Name:      esc(b.Name),
		Phone:     esc(b.Phone),
		Address:   esc(b.Address),
		Treatment: esc(b.Treatment),
		Date:      esc(b.Date),
		Items:     items,
		Subtotal:  money(b.Subtotal),
		TotalGST:  money(b.TotalGST),
		Discount:  money(b.Discount),
		Total:     money(b.Total),
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string {
	return xmlEscaper.Replace(s)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
