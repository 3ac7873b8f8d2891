package database

import (
	"backend/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError maps driver-level unique violations onto
// gorm.ErrDuplicatedKey so services can classify them as conflicts.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Customer{},
		&model.Vendor{},
		&model.Product{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Bill{},
		&model.BillItem{},
		&model.Payment{},
		&model.Counter{},
	)
	if err != nil {
		logrus.WithError(err).Warn("failed to auto-migrate models")
	}

	return db, nil
}
