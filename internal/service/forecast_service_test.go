package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forecastFixture struct {
	svc         ForecastService
	invoiceRepo *fakeInvoiceRepo
	paymentRepo *fakePaymentRepo
	tenantID    uuid.UUID
	now         time.Time
}

func newForecastFixture(t *testing.T) *forecastFixture {
	t.Helper()
	invoiceRepo := newFakeInvoiceRepo()
	paymentRepo := newFakePaymentRepo()
	customerRepo := newFakeCustomerRepo()
	tenantID := uuid.New()

	require.NoError(t, customerRepo.Create(context.Background(), &model.Customer{
		TenantID: tenantID,
		Name:     "Acme Corp",
		Email:    "billing@acme.example",
	}))

	return &forecastFixture{
		svc:         NewForecastService(invoiceRepo, paymentRepo, customerRepo, testLogger()),
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		tenantID:    tenantID,
		now:         time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

// seedHistory adds a paid invoice settled on its issue date, pinning
// the learned delay for Acme Corp to zero days.
func (f *forecastFixture) seedHistory(t *testing.T) {
	t.Helper()
	issued := f.now.AddDate(0, 0, -20)
	paid := &model.Invoice{
		TenantID:     f.tenantID,
		Number:       "INV-HIST",
		CustomerName: "Acme Corp",
		IssueDate:    issued,
		DueDate:      f.now.AddDate(0, 0, -10),
		Status:       model.InvoiceStatusPaid,
		Total:        decimal.NewFromInt(1000),
	}
	require.NoError(t, f.invoiceRepo.Create(context.Background(), paid))
	require.NoError(t, f.paymentRepo.Create(context.Background(), &model.Payment{
		TenantID:  f.tenantID,
		InvoiceID: paid.ID,
		Amount:    decimal.NewFromInt(1000),
		Date:      issued,
	}))
}

func (f *forecastFixture) seedOpenInvoice(t *testing.T, number string, total int64, dueOffsetDays int) *model.Invoice {
	t.Helper()
	inv := &model.Invoice{
		TenantID:     f.tenantID,
		Number:       number,
		CustomerName: "Acme Corp",
		IssueDate:    f.now.AddDate(0, 0, dueOffsetDays-30),
		DueDate:      f.now.AddDate(0, 0, dueOffsetDays),
		Status:       model.InvoiceStatusSent,
		Total:        decimal.NewFromInt(total),
	}
	require.NoError(t, f.invoiceRepo.Create(context.Background(), inv))
	return inv
}

// Flat spread over 4 days books exactly 100 to each of 4 consecutive
// days starting at the expected date.
func TestForecastFlatSpread(t *testing.T) {
	f := newForecastFixture(t)
	f.seedHistory(t)
	f.seedOpenInvoice(t, "INV-OPEN", 400, 0) // due today

	result, err := f.svc.Project(context.Background(), f.tenantID, f.now, ForecastOptions{
		HorizonDays: 30,
		SpreadDays:  4,
		SpreadShape: "flat",
	})
	require.NoError(t, err)
	require.Len(t, result.Horizon, 30)

	for d, bucket := range result.Horizon {
		want := "0.00"
		if d < 4 {
			want = "100.00"
		}
		assert.Equal(t, want, bucket.Amount, "day %d (%s)", d, bucket.Date)
	}
}

// The spread conserves the outstanding amount for every shape.
func TestForecastConservation(t *testing.T) {
	for _, shape := range []string{"flat", "linear", "geometric"} {
		f := newForecastFixture(t)
		f.seedHistory(t)
		f.seedOpenInvoice(t, "INV-OPEN", 997, 3)

		result, err := f.svc.Project(context.Background(), f.tenantID, f.now, ForecastOptions{
			HorizonDays:       30,
			SpreadDays:        7,
			SpreadShape:       shape,
			DiscountUptakePct: 25,
			DiscountPullDays:  3,
		})
		require.NoError(t, err, shape)

		sum := decimal.Zero
		for _, bucket := range result.Horizon {
			amount, parseErr := decimal.NewFromString(bucket.Amount)
			require.NoError(t, parseErr)
			sum = sum.Add(amount)
		}
		assert.True(t, decimal.NewFromInt(997).Equal(sum), "shape=%s sum=%s", shape, sum)
	}
}

// Identical inputs yield identical outputs.
func TestForecastDeterministic(t *testing.T) {
	f := newForecastFixture(t)
	f.seedHistory(t)
	f.seedOpenInvoice(t, "INV-A", 1200, 5)
	f.seedOpenInvoice(t, "INV-B", 800, 12)

	opts := ForecastOptions{HorizonDays: 30, SpreadDays: 5, SpreadShape: "geometric"}
	first, err := f.svc.Project(context.Background(), f.tenantID, f.now, opts)
	require.NoError(t, err)
	second, err := f.svc.Project(context.Background(), f.tenantID, f.now, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Horizon, second.Horizon)
	assert.Equal(t, first.Details, second.Details)
	assert.Equal(t, first.TopPayers, second.TopPayers)
}

// Every horizon day appears, zero inflow or not; empty tenants yield
// zero-filled buckets rather than an error.
func TestForecastEmptyTenant(t *testing.T) {
	f := newForecastFixture(t)

	result, err := f.svc.Project(context.Background(), f.tenantID, f.now, ForecastOptions{HorizonDays: 14})
	require.NoError(t, err)
	require.Len(t, result.Horizon, 14)
	for _, bucket := range result.Horizon {
		assert.Equal(t, "0.00", bucket.Amount)
	}
	assert.Empty(t, result.Details)
	assert.Empty(t, result.TopPayers)
}

func TestForecastTopPayersOrdering(t *testing.T) {
	f := newForecastFixture(t)
	f.seedHistory(t)
	f.seedOpenInvoice(t, "INV-EARLY-SMALL", 100, 1)
	f.seedOpenInvoice(t, "INV-EARLY-BIG", 900, 1)
	f.seedOpenInvoice(t, "INV-LATE", 5000, 20)

	result, err := f.svc.Project(context.Background(), f.tenantID, f.now, ForecastOptions{
		HorizonDays: 30,
		SpreadDays:  2,
		SpreadShape: "flat",
	})
	require.NoError(t, err)
	require.Len(t, result.TopPayers, 3)
	assert.Equal(t, "INV-EARLY-BIG", result.TopPayers[0].Number)
	assert.Equal(t, "INV-EARLY-SMALL", result.TopPayers[1].Number)
	assert.Equal(t, "INV-LATE", result.TopPayers[2].Number)
}

func TestSpreadWeightsNormalized(t *testing.T) {
	for _, shape := range []string{"flat", "linear", "geometric"} {
		weights := spreadWeights(shape, 6, 55)
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, shape)
	}
	// Linear and geometric front-load the earliest day.
	linear := spreadWeights("linear", 5, 0)
	assert.Greater(t, linear[0], linear[4])
	geo := spreadWeights("geometric", 5, 0)
	assert.Greater(t, geo[0], geo[4])
}
