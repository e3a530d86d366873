package bill

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItemInput is one raw line item as supplied by the caller. Numeric
// fields arrive as text so that both JSON numbers and quoted numbers are
// accepted; the validator parses them.
type LineItemInput struct {
	Description string
	Price       string
	Quantity    string
	GSTRate     string
}

// GenerateInput is a raw bill request prior to validation.
type GenerateInput struct {
	BillID    string
	Name      string
	Phone     string
	Address   string
	Treatment string
	Date      string
	Items     []LineItemInput
	// Discount is optional; non-numeric or missing values are coerced to 0.
	Discount string
}

// ValidatedInput holds the parsed numeric values of a structurally valid
// bill request, ready for the calculator.
type ValidatedInput struct {
	Items    []ValidatedItem
	Discount decimal.Decimal
}

// ValidatedItem is a line item with its numeric fields parsed.
type ValidatedItem struct {
	Description string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	GSTRate     decimal.Decimal
}

// ValidateInput verifies a raw bill request: the item list must be
// non-empty, every item must carry a description, and price, quantity, and
// GST rate must be valid non-negative numbers. It returns a
// *ValidationError on the first violation and has no side effects.
func ValidateInput(in GenerateInput) (*ValidatedInput, error) {
	if len(in.Items) == 0 {
		return nil, &ValidationError{Reason: "no items provided for the bill"}
	}

	out := &ValidatedInput{Items: make([]ValidatedItem, len(in.Items))}
	for i, item := range in.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("item %d: description is required", i+1)}
		}

		price, err := parseAmount(item.Price, "price", i)
		if err != nil {
			return nil, err
		}
		quantity, err := parseAmount(item.Quantity, "quantity", i)
		if err != nil {
			return nil, err
		}
		gstRate, err := parseAmount(item.GSTRate, "GST", i)
		if err != nil {
			return nil, err
		}

		out.Items[i] = ValidatedItem{
			Description: item.Description,
			Price:       price,
			Quantity:    quantity,
			GSTRate:     gstRate,
		}
	}

	// Discount is lenient: anything that does not parse becomes zero.
	if d, err := decimal.NewFromString(strings.TrimSpace(in.Discount)); err == nil {
		out.Discount = d
	} else {
		out.Discount = decimal.Zero
	}

	return out, nil
}

func parseAmount(raw, field string, idx int) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &ValidationError{
			Reason: fmt.Sprintf("item %d: %s must be a valid number", idx+1, field),
		}
	}
	if v.IsNegative() {
		return decimal.Zero, &ValidationError{
			Reason: fmt.Sprintf("item %d: %s must not be negative", idx+1, field),
		}
	}
	return v, nil
}
