package model

import (
	"github.com/google/uuid"
)

// Counter backs document number generation. (TenantID, Key) is unique
// and Value only moves forward; increments happen in a single SQL
// statement so concurrent creates never observe the same value.
type Counter struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_counters_tenant_key" json:"tenant_id"`
	Key      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_counters_tenant_key" json:"key"`
	Value    int64     `gorm:"not null;default:0" json:"value"`
}
