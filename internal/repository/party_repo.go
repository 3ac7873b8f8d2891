package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerRepository persists tenant-scoped customers. FindByName does
// an exact match within the tenant and backs tolerant reference
// resolution.
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*model.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "tenant_id = ? AND name = ?", tenantID, name).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR code ILIKE ?", like, like, like, like)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Customer{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := applyFilter(db.Model(&model.Customer{})).Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *customerRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// VendorRepository mirrors CustomerRepository for the payable side.
type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	Update(ctx context.Context, vendor *model.Vendor) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Vendor, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*model.Vendor, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Vendor, int64, error)
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Create(vendor).Error
}

func (r *vendorRepository) Update(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Save(vendor).Error
}

func (r *vendorRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Vendor{}).Error
}

func (r *vendorRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).First(&vendor, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).First(&vendor, "tenant_id = ? AND name = ?", tenantID, name).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Vendor, int64, error) {
	var vendors []model.Vendor
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("tenant_id = ?", tenantID)
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR code ILIKE ?", like, like, like, like)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Vendor{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := applyFilter(db.Model(&model.Vendor{})).Order("created_at DESC").Offset(offset).Limit(limit).Find(&vendors).Error; err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}
