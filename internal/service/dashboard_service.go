package service

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardSummary struct {
	ReceivablesOutstanding decimal.Decimal `json:"receivables_outstanding"`
	PayablesOutstanding    decimal.Decimal `json:"payables_outstanding"`
	OverdueAmount          decimal.Decimal `json:"overdue_amount"`
	InvoicesByStatus       []StatusCount   `json:"invoices_by_status"`
	BillsByStatus          []StatusCount   `json:"bills_by_status"`
}

type AgingBucket struct {
	Bucket string          `json:"bucket"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DashboardService interface {
	GetSummary(ctx context.Context, tenantID uuid.UUID) (DashboardSummary, error)
	GetAging(ctx context.Context, tenantID uuid.UUID) ([]AgingBucket, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

// GetSummary aggregates the headline receivable/payable figures in a
// handful of grouped queries.
func (s *dashboardService) GetSummary(ctx context.Context, tenantID uuid.UUID) (DashboardSummary, error) {
	var summary DashboardSummary

	// Outstanding receivables: open invoice totals minus what has been
	// collected against them.
	var receivables struct {
		Value decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(invoices.total), 0) - COALESCE(SUM(p.paid), 0) as value").
		Joins("LEFT JOIN (SELECT invoice_id, SUM(amount) as paid FROM payments WHERE deleted_at IS NULL GROUP BY invoice_id) p ON p.invoice_id = invoices.id").
		Where("invoices.tenant_id = ? AND invoices.status = ?", tenantID, model.InvoiceStatusSent).
		Scan(&receivables).Error
	if err != nil {
		return summary, err
	}
	summary.ReceivablesOutstanding = receivables.Value

	var payables struct {
		Value decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&model.Bill{}).
		Select("COALESCE(SUM(total), 0) as value").
		Where("tenant_id = ? AND status IN ?", tenantID, []string{model.BillStatusOpen, model.BillStatusApproved}).
		Scan(&payables).Error
	if err != nil {
		return summary, err
	}
	summary.PayablesOutstanding = payables.Value

	var overdue struct {
		Value decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(invoices.total), 0) - COALESCE(SUM(p.paid), 0) as value").
		Joins("LEFT JOIN (SELECT invoice_id, SUM(amount) as paid FROM payments WHERE deleted_at IS NULL GROUP BY invoice_id) p ON p.invoice_id = invoices.id").
		Where("invoices.tenant_id = ? AND invoices.status = ? AND invoices.due_date < CURRENT_DATE", tenantID, model.InvoiceStatusSent).
		Scan(&overdue).Error
	if err != nil {
		return summary, err
	}
	summary.OverdueAmount = overdue.Value

	err = s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Order("status").
		Scan(&summary.InvoicesByStatus).Error
	if err != nil {
		return summary, err
	}

	err = s.db.WithContext(ctx).Model(&model.Bill{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Order("status").
		Scan(&summary.BillsByStatus).Error
	if err != nil {
		return summary, err
	}

	return summary, nil
}

// GetAging groups the unpaid, non-void invoices into days-past-due
// buckets. Invoices not yet due land in "current".
func (s *dashboardService) GetAging(ctx context.Context, tenantID uuid.UUID) ([]AgingBucket, error) {
	bucketExpr := `CASE
		WHEN CURRENT_DATE - invoices.due_date <= 0 THEN 'current'
		WHEN CURRENT_DATE - invoices.due_date <= 30 THEN '0-30'
		WHEN CURRENT_DATE - invoices.due_date <= 60 THEN '31-60'
		WHEN CURRENT_DATE - invoices.due_date <= 90 THEN '61-90'
		ELSE '90+'
	END`

	var rows []AgingBucket
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select(bucketExpr+" as bucket, COUNT(*) as count, COALESCE(SUM(invoices.total), 0) - COALESCE(SUM(p.paid), 0) as amount").
		Joins("LEFT JOIN (SELECT invoice_id, SUM(amount) as paid FROM payments WHERE deleted_at IS NULL GROUP BY invoice_id) p ON p.invoice_id = invoices.id").
		Where("invoices.tenant_id = ? AND invoices.status NOT IN ?", tenantID, []string{model.InvoiceStatusPaid, model.InvoiceStatusVoid}).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Every bucket appears in the response, zero or not, in age order.
	order := []string{"current", "0-30", "31-60", "61-90", "90+"}
	byName := make(map[string]AgingBucket, len(rows))
	for _, r := range rows {
		byName[r.Bucket] = r
	}
	result := make([]AgingBucket, 0, len(order))
	for _, name := range order {
		b, ok := byName[name]
		if !ok {
			b = AgingBucket{Bucket: name, Amount: decimal.Zero}
		}
		result = append(result, b)
	}
	return result, nil
}
