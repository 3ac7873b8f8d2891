package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill status vocabulary. Distinct from the invoice vocabulary: bills
// have an approval step and use "open" where invoices use "sent".
const (
	BillStatusDraft    = "draft"
	BillStatusOpen     = "open"
	BillStatusApproved = "approved"
	BillStatusPaid     = "paid"
	BillStatusVoid     = "void"
)

var billStatusVocab = map[string]bool{
	BillStatusDraft:    true,
	BillStatusOpen:     true,
	BillStatusApproved: true,
	BillStatusPaid:     true,
	BillStatusVoid:     true,
}

var billStatusSynonyms = map[string]string{
	"pending":   BillStatusOpen,
	"unpaid":    BillStatusOpen,
	"issued":    BillStatusOpen,
	"completed": BillStatusPaid,
	"settled":   BillStatusPaid,
	"cancelled": BillStatusVoid,
	"canceled":  BillStatusVoid,
	"voided":    BillStatusVoid,
}

// NormalizeBillStatus maps a raw status string onto the closed bill
// vocabulary.
func NormalizeBillStatus(raw string) (string, bool) {
	return normalizeStatus(raw, billStatusVocab, billStatusSynonyms)
}

// Bill is a payable document mirroring Invoice, owed to a vendor.
// A bill requires an explicit due date at creation.
type Bill struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bills_tenant_number" json:"tenant_id"`
	Number     string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_bills_tenant_number" json:"number"`
	VendorID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	VendorName string          `gorm:"type:varchar(255);not null;index" json:"vendor_name"`
	BillDate   time.Time       `gorm:"type:date;not null" json:"bill_date"`
	DueDate    time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status     string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Items      []BillItem      `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax"`
	Total      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedBy  *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	UpdatedBy  *uuid.UUID      `gorm:"type:uuid" json:"updated_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BillItem is one ordered line of a bill.
type BillItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"type:varchar(500)" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitRate    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_rate"`
	TaxPct      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_pct"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
}
