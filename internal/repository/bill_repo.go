package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillListFilter narrows List the same way InvoiceListFilter does.
type BillListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	Update(ctx context.Context, bill *model.Bill) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, tenantID uuid.UUID, filter BillListFilter) ([]model.Bill, int64, error)
	ReplaceItems(ctx context.Context, billID uuid.UUID, items []model.BillItem) error
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	return GetDB(ctx, r.db).Create(bill).Error
}

func (r *billRepository) Update(ctx context.Context, bill *model.Bill) error {
	return GetDB(ctx, r.db).Omit("Items").Save(bill).Error
}

func (r *billRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Bill{}).Error
}

func (r *billRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("bill_items.position ASC") }).
		First(&bill, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, tenantID uuid.UUID, filter BillListFilter) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("number ILIKE ? OR vendor_name ILIKE ?", like, like)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Bill{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := applyFilter(db.Model(&model.Bill{})).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("bill_items.position ASC") }).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}

func (r *billRepository) ReplaceItems(ctx context.Context, billID uuid.UUID, items []model.BillItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Unscoped().Where("bill_id = ?", billID).Delete(&model.BillItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}
