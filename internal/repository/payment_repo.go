package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, page, limit int) ([]model.Payment, int64, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Payment, error)
	SumForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Payment{}).Error
}

// DeleteByInvoice soft-deletes every payment of an invoice; invoked in
// the same transaction as the invoice delete.
func (r *paymentRepository) DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).Delete(&model.Payment{}).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, page, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if invoiceID != nil {
			q = q.Where("invoice_id = ?", *invoiceID)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Payment{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := applyFilter(db.Model(&model.Payment{})).Order("date DESC, created_at DESC").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumForInvoice aggregates the live (non-deleted) payment amounts for
// one invoice. Status recomputation compares this sum to the invoice
// total.
func (r *paymentRepository) SumForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Sum decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS sum").
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Sum, nil
}
