package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows List. Status must already be normalized by
// the service; Search matches number and denormalized customer name
// server-side.
type InvoiceListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*model.Invoice, error)
	FindByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*model.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Invoice, error)
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Items").Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Invoice{}).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_items.position ASC") }).
		First(&invoice, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).First(&invoice, "tenant_id = ? AND number = ?", tenantID, number).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByNumberPrefix is the fallback used by payment creation when the
// caller supplies a partial invoice number. The match is case-sensitive.
func (r *invoiceRepository) FindByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("number ASC").
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("number ILIKE ? OR customer_name ILIKE ?", like, like)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Invoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := applyFilter(db.Model(&model.Invoice{})).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_items.position ASC") }).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

// ListAll loads the full tenant invoice set for the analytics engines.
func (r *invoiceRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ReplaceItems swaps the full line set of an invoice. Old rows are hard
// deleted: line items are owned values, not audited documents.
func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Unscoped().Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}
