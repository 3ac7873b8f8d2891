package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CounterRepository hands out monotonically increasing sequence values
// per (tenant, key). Next must never return the same value twice for a
// pair, even under concurrent calls.
type CounterRepository interface {
	Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Next increments and returns the counter in a single statement. The
// upsert keeps the read-modify-write on the database side, so two
// concurrent creates get distinct values.
func (r *counterRepository) Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	var value int64
	err := GetDB(ctx, r.db).Raw(`
		INSERT INTO counters (id, tenant_id, key, value)
		VALUES (gen_random_uuid(), ?, ?, 1)
		ON CONFLICT (tenant_id, key)
		DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, tenantID, key).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
