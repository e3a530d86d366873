package bill

import "github.com/shopspring/decimal"

// The calculator is pure and stateless. All monetary values are rounded to
// 2 decimal places half away from zero (decimal.Round semantics), matching
// how the clinic's historical bills were produced.

// ComputeLineItem returns a LineItem with its tax breakdown computed from
// price, quantity, and GST rate:
//
//	baseTotal   = price × quantity
//	gstAmount   = baseTotal × gstRate / 100
//	finalAmount = baseTotal + gstAmount
//
// Each computed field is rounded independently.
func ComputeLineItem(description string, price, quantity, gstRate decimal.Decimal) LineItem {
	baseTotal := price.Mul(quantity).Round(2)
	gstAmount := baseTotal.Mul(gstRate).Div(decimal.NewFromInt(100)).Round(2)
	finalAmount := baseTotal.Add(gstAmount).Round(2)

	return LineItem{
		Description: description,
		Price:       price,
		Quantity:    quantity,
		GSTRate:     gstRate,
		BaseTotal:   baseTotal,
		GSTAmount:   gstAmount,
		FinalAmount: finalAmount,
	}
}

// ComputeTotals aggregates already-computed line items into bill-level
// totals. It sums the rounded per-item values, not the unrounded originals;
// this mirrors the historical records and can differ by a cent or two from
// summing first and rounding once.
//
// Total is clamped at zero when the discount exceeds subtotal plus GST.
func ComputeTotals(items []LineItem, discount decimal.Decimal) (subtotal, totalGST, total decimal.Decimal) {
	subtotal = decimal.Zero
	totalGST = decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.BaseTotal)
		totalGST = totalGST.Add(it.GSTAmount)
	}
	subtotal = subtotal.Round(2)
	totalGST = totalGST.Round(2)

	total = subtotal.Add(totalGST).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)
	return subtotal, totalGST, total
}
