package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry clients can copy onto document line items.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU       string          `gorm:"type:varchar(100)" json:"sku"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"unit_price"`
	TaxPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_pct"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
