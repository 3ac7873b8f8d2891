package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvoiceFixture() (InvoiceService, *fakeInvoiceRepo, *fakePaymentRepo, *fakeCustomerRepo, uuid.UUID) {
	customers := newFakeCustomerRepo()
	invoices := newFakeInvoiceRepo()
	payments := newFakePaymentRepo()
	counters := newFakeCounterRepo()
	resolver := NewPartyResolver(customers, newFakeVendorRepo())
	svc := NewInvoiceService(invoices, payments, counters, resolver, fakeTxManager{}, testLogger())
	return svc, invoices, payments, customers, uuid.New()
}

func TestInvoiceCreateDefaults(t *testing.T) {
	svc, _, _, _, tenantID := newInvoiceFixture()
	ctx := context.Background()

	resp, err := svc.Create(ctx, tenantID, nil, CreateInvoiceRequest{
		Customer:  Reference{Name: "Acme Corp"},
		IssueDate: "2026-08-15",
		Items: []DocumentItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(3221), TaxPct: decimal.NewFromInt(18)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.InvoiceStatusDraft, resp.Status)
	assert.Equal(t, "INV-202608-0001", resp.Number)
	assert.Equal(t, "2026-09-14", resp.DueDate, "due date defaults to issue date plus standard terms")
	assert.Equal(t, "3221.00", resp.Subtotal)
	assert.Equal(t, "3801.00", resp.Total)
	assert.Equal(t, "580.00", resp.Tax)

	// The sequence is per tenant and per issue month.
	second, err := svc.Create(ctx, tenantID, nil, CreateInvoiceRequest{
		Customer:  Reference{Name: "Acme Corp"},
		IssueDate: "2026-08-20",
		Items: []DocumentItemRequest{
			{Description: "Support", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-202608-0002", second.Number)
}

func TestInvoiceCreateStatusSynonym(t *testing.T) {
	svc, _, _, _, tenantID := newInvoiceFixture()

	resp, err := svc.Create(context.Background(), tenantID, nil, CreateInvoiceRequest{
		Customer: Reference{Name: "Acme Corp"},
		Status:   "open",
		Items: []DocumentItemRequest{
			{Description: "Widget", Quantity: decimal.NewFromInt(2), UnitRate: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusSent, resp.Status)
}

func TestInvoiceCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _, tenantID := newInvoiceFixture()

	_, err := svc.Create(context.Background(), tenantID, nil, CreateInvoiceRequest{
		Customer: Reference{Name: "Acme Corp"},
		Status:   "frobnicated",
		Items: []DocumentItemRequest{
			{Description: "Widget", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(10)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestInvoiceUpdateTransitionRules(t *testing.T) {
	svc, repo, _, _, tenantID := newInvoiceFixture()
	ctx := context.Background()

	inv := seedInvoice(t, repo, tenantID, "INV-202608-0001", model.InvoiceStatusSent, "500")

	// sent may not regress to draft through an explicit update.
	draft := "draft"
	_, err := svc.Update(ctx, tenantID, nil, inv.ID.String(), UpdateInvoiceRequest{Status: &draft})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	// sent -> paid is allowed.
	paid := "settled"
	resp, err := svc.Update(ctx, tenantID, nil, inv.ID.String(), UpdateInvoiceRequest{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, resp.Status)

	// anything may be voided, and void is terminal.
	void := "cancelled"
	_, err = svc.Update(ctx, tenantID, nil, inv.ID.String(), UpdateInvoiceRequest{Status: &void})
	require.NoError(t, err)

	sent := "sent"
	_, err = svc.Update(ctx, tenantID, nil, inv.ID.String(), UpdateInvoiceRequest{Status: &sent})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestInvoiceListRejectsUnknownStatusFilter(t *testing.T) {
	svc, _, _, _, tenantID := newInvoiceFixture()

	_, _, err := svc.List(context.Background(), tenantID, InvoiceFilter{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestInvoiceDeleteRemovesPayments(t *testing.T) {
	svc, repo, payments, _, tenantID := newInvoiceFixture()
	ctx := context.Background()

	inv := seedInvoice(t, repo, tenantID, "INV-202608-0001", model.InvoiceStatusSent, "200")
	require.NoError(t, payments.Create(ctx, &model.Payment{
		TenantID:  tenantID,
		InvoiceID: inv.ID,
		Amount:    decimal.NewFromInt(200),
		Date:      time.Now(),
	}))

	require.NoError(t, svc.Delete(ctx, tenantID, inv.ID.String()))

	_, err := repo.FindByID(ctx, tenantID, inv.ID)
	require.Error(t, err)
	remaining, _ := payments.ListAll(ctx, tenantID)
	assert.Empty(t, remaining)
}

func TestInvoiceGetWrongTenant(t *testing.T) {
	svc, repo, _, _, tenantID := newInvoiceFixture()

	inv := seedInvoice(t, repo, tenantID, "INV-202608-0001", model.InvoiceStatusSent, "100")

	_, err := svc.Get(context.Background(), uuid.New(), inv.ID.String())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
