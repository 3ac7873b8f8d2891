package service

import (
	"fmt"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for document dates.
const DateLayout = "2006-01-02"

// DefaultInvoiceTermsDays is added to the issue date when an invoice
// arrives without a due date.
const DefaultInvoiceTermsDays = 30

// DocumentItemRequest is one requested line of an invoice or bill. The
// line amount is always computed server-side.
type DocumentItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    decimal.Decimal `json:"unit_rate"`
	TaxPct      decimal.Decimal `json:"tax_pct"`
}

// DocumentItemResponse mirrors a stored line item.
type DocumentItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitRate    string `json:"unit_rate"`
	TaxPct      string `json:"tax_pct"`
	Amount      string `json:"amount"`
}

func validateItems(items []DocumentItemRequest) error {
	for i, item := range items {
		if item.Quantity.IsNegative() {
			return apperror.Newf(apperror.KindValidation, "items[%d]: quantity must be >= 0", i)
		}
		if item.UnitRate.IsNegative() {
			return apperror.Newf(apperror.KindValidation, "items[%d]: unit_rate must be >= 0", i)
		}
		if item.TaxPct.IsNegative() {
			return apperror.Newf(apperror.KindValidation, "items[%d]: tax_pct must be >= 0", i)
		}
	}
	return nil
}

func lineTotals(items []DocumentItemRequest) []model.LineTotal {
	lines := make([]model.LineTotal, 0, len(items))
	for _, item := range items {
		lines = append(lines, model.LineTotal{
			Base:   model.LineBase(item.Quantity, item.UnitRate),
			Amount: model.LineAmount(item.Quantity, item.UnitRate, item.TaxPct),
		})
	}
	return lines
}

// parseDateOr coerces a YYYY-MM-DD string, falling back on missing or
// unparseable input. Tolerant by design: document creation defaults the
// document date to "now" rather than rejecting.
func parseDateOr(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fallback
	}
	return t
}

// parseDateStrict rejects unparseable non-empty input; used on update
// paths where a garbled date is a client error, not an omission.
func parseDateStrict(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.Newf(apperror.KindValidation, "invalid %s: %s", field, s)
	}
	return t, nil
}

func formatDocNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("200601"), seq)
}

func counterKey(kind string, t time.Time) string {
	return kind + "-" + t.Format("200601")
}
