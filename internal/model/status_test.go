package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInvoiceStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"draft", "draft", true},
		{"sent", "sent", true},
		{"SENT", "sent", true},
		{"  Paid ", "paid", true},
		{"open", "sent", true},
		{"unpaid", "sent", true},
		{"outstanding", "sent", true},
		{"settled", "paid", true},
		{"cancelled", "void", true},
		{"canceled", "void", true},
		{"bogus-status", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeInvoiceStatus(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestNormalizeBillStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"draft", "draft", true},
		{"open", "open", true},
		{"approved", "approved", true},
		{"pending", "open", true},
		{"unpaid", "open", true},
		{"settled", "paid", true},
		{"voided", "void", true},
		{"bogus-status", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeBillStatus(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

// Normalization must be idempotent: feeding a canonical value back in
// returns the same value.
func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"draft", "sent", "paid", "void", "open", "unpaid", "settled"} {
		first, ok := NormalizeInvoiceStatus(raw)
		if !ok {
			continue
		}
		second, ok := NormalizeInvoiceStatus(first)
		assert.True(t, ok)
		assert.Equal(t, first, second)
	}
	for _, raw := range []string{"draft", "open", "approved", "paid", "void", "pending", "unpaid"} {
		first, ok := NormalizeBillStatus(raw)
		if !ok {
			continue
		}
		second, ok := NormalizeBillStatus(first)
		assert.True(t, ok)
		assert.Equal(t, first, second)
	}
}

// "pending" and "unpaid" converge on the same canonical bill status.
func TestBillSynonymsConverge(t *testing.T) {
	pending, _ := NormalizeBillStatus("pending")
	unpaid, _ := NormalizeBillStatus("unpaid")
	assert.Equal(t, BillStatusOpen, pending)
	assert.Equal(t, pending, unpaid)
}
