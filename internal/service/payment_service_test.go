package service

import (
	"context"
	"io"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newPaymentFixture() (PaymentService, *fakeInvoiceRepo, *fakePaymentRepo, uuid.UUID) {
	invoiceRepo := newFakeInvoiceRepo()
	paymentRepo := newFakePaymentRepo()
	svc := NewPaymentService(paymentRepo, invoiceRepo, fakeTxManager{}, nil, testLogger())
	return svc, invoiceRepo, paymentRepo, uuid.New()
}

func seedInvoice(t *testing.T, repo *fakeInvoiceRepo, tenantID uuid.UUID, number, status string, total string) *model.Invoice {
	t.Helper()
	amount, err := decimal.NewFromString(total)
	require.NoError(t, err)
	inv := &model.Invoice{
		TenantID:     tenantID,
		Number:       number,
		CustomerName: "Acme Corp",
		IssueDate:    time.Now().AddDate(0, 0, -10),
		DueDate:      time.Now().AddDate(0, 0, 20),
		Status:       status,
		Total:        amount,
	}
	require.NoError(t, repo.Create(context.Background(), inv))
	return inv
}

// Paying the full amount flips the invoice to paid; deleting the
// payment reverts it to sent.
func TestPaymentFlipsStatusAndBack(t *testing.T) {
	svc, invoiceRepo, _, tenantID := newPaymentFixture()
	inv := seedInvoice(t, invoiceRepo, tenantID, "INV-202508-0001", model.InvoiceStatusSent, "5000")

	payment, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, payment.InvoiceStatus)
	assert.Equal(t, model.InvoiceStatusPaid, inv.Status)

	require.NoError(t, svc.Delete(context.Background(), tenantID, payment.ID))
	assert.Equal(t, model.InvoiceStatusSent, inv.Status)
}

func TestPartialPaymentKeepsSent(t *testing.T) {
	svc, invoiceRepo, _, tenantID := newPaymentFixture()
	inv := seedInvoice(t, invoiceRepo, tenantID, "INV-202508-0002", model.InvoiceStatusSent, "5000")

	payment, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.NewFromInt(2000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusSent, payment.InvoiceStatus)
}

// Recomputation never touches draft or void invoices.
func TestPaymentLeavesDraftAlone(t *testing.T) {
	svc, invoiceRepo, _, tenantID := newPaymentFixture()
	inv := seedInvoice(t, invoiceRepo, tenantID, "INV-202508-0003", model.InvoiceStatusDraft, "100")

	payment, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusDraft, payment.InvoiceStatus)
	assert.Equal(t, model.InvoiceStatusDraft, inv.Status)
}

func TestPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, invoiceRepo, _, tenantID := newPaymentFixture()
	inv := seedInvoice(t, invoiceRepo, tenantID, "INV-202508-0004", model.InvoiceStatusSent, "100")

	_, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceID: inv.ID.String(),
		Amount:    decimal.Zero,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

// The invoice reference resolves by exact number, then by prefix.
func TestPaymentResolvesInvoiceByNumberAndPrefix(t *testing.T) {
	svc, invoiceRepo, _, tenantID := newPaymentFixture()
	inv := seedInvoice(t, invoiceRepo, tenantID, "INV-202508-0042", model.InvoiceStatusSent, "300")

	byNumber, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceNumber: "INV-202508-0042",
		Amount:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, inv.ID.String(), byNumber.InvoiceID)

	byPrefix, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceNumber: "INV-202508-00",
		Amount:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, inv.ID.String(), byPrefix.InvoiceID)
}

func TestPaymentUnresolvableInvoice(t *testing.T) {
	svc, _, _, tenantID := newPaymentFixture()

	_, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceNumber: "NO-SUCH-NUMBER",
		Amount:        decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindReference, apperror.KindOf(err))
}

// Cross-tenant invoice ids never resolve.
func TestPaymentCrossTenantInvoice(t *testing.T) {
	svc, invoiceRepo, _, tenantID := newPaymentFixture()
	foreign := seedInvoice(t, invoiceRepo, uuid.New(), "INV-202508-0001", model.InvoiceStatusSent, "100")

	_, err := svc.Create(context.Background(), tenantID, CreatePaymentRequest{
		InvoiceID: foreign.ID.String(),
		Amount:    decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindReference, apperror.KindOf(err))
}
