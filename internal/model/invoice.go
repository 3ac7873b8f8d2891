package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice status vocabulary. "Overdue" is never stored — it is derived
// from the due date at read time (see DisplayStatus).
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"
)

var invoiceStatusVocab = map[string]bool{
	InvoiceStatusDraft: true,
	InvoiceStatusSent:  true,
	InvoiceStatusPaid:  true,
	InvoiceStatusVoid:  true,
}

// Synonym table is deliberately separate from the Bill table; the two
// vocabularies evolved independently and are not unified.
var invoiceStatusSynonyms = map[string]string{
	"open":        InvoiceStatusSent,
	"unpaid":      InvoiceStatusSent,
	"outstanding": InvoiceStatusSent,
	"issued":      InvoiceStatusSent,
	"settled":     InvoiceStatusPaid,
	"completed":   InvoiceStatusPaid,
	"cancelled":   InvoiceStatusVoid,
	"canceled":    InvoiceStatusVoid,
	"voided":      InvoiceStatusVoid,
}

// NormalizeInvoiceStatus maps a raw status string onto the closed invoice
// vocabulary. ok is false for unrecognized input; the caller decides
// whether that is fatal.
func NormalizeInvoiceStatus(raw string) (string, bool) {
	return normalizeStatus(raw, invoiceStatusVocab, invoiceStatusSynonyms)
}

// Invoice is a receivable document. CustomerName is a denormalized
// snapshot taken at create/update time for fast listing and may drift
// from the customer record.
type Invoice struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_tenant_number" json:"tenant_id"`
	Number       string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_invoices_tenant_number" json:"number"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName string          `gorm:"type:varchar(255);not null;index" json:"customer_name"`
	IssueDate    time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate      time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status       string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Items        []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	Tax          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	UpdatedBy    *uuid.UUID      `gorm:"type:uuid" json:"updated_by"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// InvoiceItem is one ordered line of an invoice. Amount is computed,
// never supplied by the client.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	Description string          `gorm:"type:varchar(500)" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitRate    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_rate"`
	TaxPct      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_pct"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
}

// DisplayStatus layers the derived "overdue" label over the stored state:
// an unpaid, non-void invoice past its due date displays as overdue.
func (i *Invoice) DisplayStatus(today time.Time) string {
	if i.Status == InvoiceStatusSent && i.DueDate.Before(today.Truncate(24*time.Hour)) {
		return "overdue"
	}
	return i.Status
}
