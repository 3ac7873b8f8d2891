package model

import "github.com/shopspring/decimal"

// Canonical money math, applied identically to invoices and bills.
// Each line carries its own tax percent; the grand total is rounded to
// the whole base-currency unit and the tax line absorbs the round-off,
// so Total == Subtotal + Tax holds exactly.

var percentBase = decimal.NewFromInt(100)

// LineBase returns quantity x unit rate at 2 decimal places.
func LineBase(quantity, unitRate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitRate).Round(2)
}

// LineAmount returns quantity x unit rate x (1 + taxPct/100) at 2
// decimal places.
func LineAmount(quantity, unitRate, taxPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(taxPct.Div(percentBase))
	return quantity.Mul(unitRate).Mul(factor).Round(2)
}

// DocumentTotals is the derived money summary of a document.
type DocumentTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal pairs a line's pre-tax base with its tax-inclusive amount.
type LineTotal struct {
	Base   decimal.Decimal
	Amount decimal.Decimal
}

// SumTotals folds line totals into document totals. Total is the sum of
// line amounts rounded to the nearest whole currency unit; Tax is
// defined as Total - Subtotal.
func SumTotals(lines []LineTotal) DocumentTotals {
	subtotal := decimal.Zero
	gross := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Base)
		gross = gross.Add(l.Amount)
	}
	total := gross.Round(0)
	return DocumentTotals{
		Subtotal: subtotal,
		Tax:      total.Sub(subtotal),
		Total:    total,
	}
}
