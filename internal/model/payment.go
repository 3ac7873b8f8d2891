package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money received against exactly one invoice. Creating or
// deleting a payment triggers recomputation of the invoice status from
// the aggregate paid sum; payments never modify the invoice total.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
	Method    string          `gorm:"type:varchar(50)" json:"method"` // free text: UPI, Bank, Card, Cash
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
