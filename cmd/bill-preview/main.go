package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/go-faster/errors"

	"github.com/siddhashivalayas/billing/internal/domain/bill"
	"github.com/siddhashivalayas/billing/internal/render"
)

// requestJSON mirrors the API request body so a captured payload can be
// previewed as-is. Numeric fields keep their raw text: JSON numbers and
// quoted numbers are both accepted.
type requestJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Treatment string     `json:"treatmentOrMedicine"`
	Date      string     `json:"date"`
	Items     []itemJSON `json:"items"`
	Discount  rawNumber  `json:"discount"`
}

type itemJSON struct {
	Description string    `json:"description"`
	Price       rawNumber `json:"price"`
	Quantity    rawNumber `json:"quantity"`
	GST         rawNumber `json:"GST"`
}

type rawNumber string

func (n *rawNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		*n = rawNumber(data[1 : len(data)-1])
		return nil
	}
	*n = rawNumber(data)
	return nil
}

func main() {
	var (
		requestFile  string
		format       string
		outputFile   string
		templatePath string
	)

	flag.StringVar(&requestFile, "request-file", "", "path to a bill request JSON file")
	flag.StringVar(&format, "format", "docx", "output format: docx or pdf")
	flag.StringVar(&outputFile, "out", "", "output file path (default: generated-bill-<id>.<ext>)")
	flag.StringVar(&templatePath, "template", "", "docx template override (WordprocessingML document part)")
	flag.Parse()

	if requestFile == "" {
		slog.Error("request file is required: set --request-file")
		os.Exit(1)
	}

	if err := run(requestFile, format, outputFile, templatePath); err != nil {
		slog.Error("preview failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(requestFile, format, outputFile, templatePath string) error {
	f, err := bill.ParseFormat(format)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(requestFile)
	if err != nil {
		return errors.Wrap(err, "read request file")
	}
	var req requestJSON
	if err := json.Unmarshal(raw, &req); err != nil {
		return errors.Wrap(err, "parse request file")
	}

	in := bill.GenerateInput{
		BillID:    req.ID,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		Treatment: req.Treatment,
		Date:      req.Date,
		Discount:  string(req.Discount),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, bill.LineItemInput{
			Description: it.Description,
			Price:       string(it.Price),
			Quantity:    string(it.Quantity),
			GSTRate:     string(it.GST),
		})
	}

	v, err := bill.ValidateInput(in)
	if err != nil {
		return err
	}

	items := make([]bill.LineItem, len(v.Items))
	for i, it := range v.Items {
		items[i] = bill.ComputeLineItem(it.Description, it.Price, it.Quantity, it.GSTRate)
	}
	subtotal, totalGST, total := bill.ComputeTotals(items, v.Discount)

	b := &bill.Bill{
		BillID:    in.BillID,
		Name:      in.Name,
		Phone:     in.Phone,
		Address:   in.Address,
		Treatment: in.Treatment,
		Date:      in.Date,
		Items:     items,
		Discount:  v.Discount.Round(2),
		Subtotal:  subtotal,
		TotalGST:  totalGST,
		Total:     total,
	}

	renderer, err := newRenderer(f, templatePath)
	if err != nil {
		return err
	}
	content, err := renderer.Render(b)
	if err != nil {
		return errors.Wrap(err, "render bill")
	}

	if outputFile == "" {
		outputFile = b.Filename(f)
	}
	if err := os.WriteFile(outputFile, content, 0o644); err != nil {
		return errors.Wrap(err, "write output file")
	}

	slog.Info("bill rendered",
		slog.String("file", outputFile),
		slog.String("subtotal", b.Subtotal.StringFixed(2)),
		slog.String("totalGst", b.TotalGST.StringFixed(2)),
		slog.String("total", b.Total.StringFixed(2)),
	)
	return nil
}

func newRenderer(f bill.Format, templatePath string) (bill.Renderer, error) {
	switch f {
	case bill.FormatPDF:
		return render.NewPDF(), nil
	default:
		if templatePath != "" {
			return render.NewDocxFromFile(templatePath)
		}
		return render.NewDocx()
	}
}
