package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the receivable side of a trade relationship. Name is the
// key used by tolerant reference resolution: an exact name match within
// the tenant is reused, otherwise a new customer is created on the fly.
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Code      string         `gorm:"type:varchar(50)" json:"code"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"type:varchar(100)" json:"city"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Vendor mirrors Customer on the payable side.
type Vendor struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Code      string         `gorm:"type:varchar(50)" json:"code"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"type:varchar(100)" json:"city"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
