package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLineAmount(t *testing.T) {
	// 1 x 3221 at 18% tax = 3800.78
	amount := LineAmount(d("1"), d("3221"), d("18"))
	assert.True(t, d("3800.78").Equal(amount), "got %s", amount)
}

// One line of qty 1 at 3221 with 18% tax: the grand total rounds to the
// whole currency unit, 3801, and the tax line absorbs the round-off.
func TestSumTotalsRoundsToWholeUnit(t *testing.T) {
	lines := []LineTotal{
		{
			Base:   LineBase(d("1"), d("3221")),
			Amount: LineAmount(d("1"), d("3221"), d("18")),
		},
	}
	totals := SumTotals(lines)

	assert.True(t, d("3221").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, d("3801").Equal(totals.Total), "total %s", totals.Total)
	assert.True(t, d("580").Equal(totals.Tax), "tax %s", totals.Tax)
}

// Total == Subtotal + Tax must hold exactly for arbitrary line mixes.
func TestSumTotalsIdentity(t *testing.T) {
	mixes := [][]LineTotal{
		{
			{Base: LineBase(d("2"), d("99.99")), Amount: LineAmount(d("2"), d("99.99"), d("5"))},
			{Base: LineBase(d("3.5"), d("10.10")), Amount: LineAmount(d("3.5"), d("10.10"), d("12"))},
		},
		{
			{Base: LineBase(d("1"), d("0.01")), Amount: LineAmount(d("1"), d("0.01"), d("18"))},
		},
		{},
	}
	for _, lines := range mixes {
		totals := SumTotals(lines)
		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax)),
			"total %s != subtotal %s + tax %s", totals.Total, totals.Subtotal, totals.Tax)
	}
}

func TestSumTotalsEmpty(t *testing.T) {
	totals := SumTotals(nil)
	assert.True(t, totals.Total.IsZero())
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
}
