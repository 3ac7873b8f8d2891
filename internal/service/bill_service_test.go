package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBillFixture() (BillService, *fakeBillRepo, *fakeVendorRepo, uuid.UUID) {
	billRepo := newFakeBillRepo()
	vendorRepo := newFakeVendorRepo()
	resolver := NewPartyResolver(newFakeCustomerRepo(), vendorRepo)
	svc := NewBillService(billRepo, newFakeCounterRepo(), resolver, fakeTxManager{}, testLogger())
	return svc, billRepo, vendorRepo, uuid.New()
}

func TestBillCreateNormalizesStatus(t *testing.T) {
	svc, _, _, tenantID := newBillFixture()

	bill, err := svc.Create(context.Background(), tenantID, nil, CreateBillRequest{
		Vendor:  Reference{Name: "Steel Supplies"},
		DueDate: "2026-10-01",
		Status:  "pending",
		Items: []DocumentItemRequest{
			{Description: "Plates", Quantity: decimal.NewFromInt(2), UnitRate: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusOpen, bill.Status)
	assert.NotEmpty(t, bill.Number)
}

func TestBillCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, _, tenantID := newBillFixture()

	_, err := svc.Create(context.Background(), tenantID, nil, CreateBillRequest{
		Vendor:  Reference{Name: "Steel Supplies"},
		DueDate: "2026-10-01",
		Status:  "bogus-status",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestBillCreateRequiresDueDate(t *testing.T) {
	svc, _, _, tenantID := newBillFixture()

	_, err := svc.Create(context.Background(), tenantID, nil, CreateBillRequest{
		Vendor: Reference{Name: "Steel Supplies"},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

// An unrecognized status on update is dropped silently; other fields
// still apply.
func TestBillUpdateDropsUnknownStatus(t *testing.T) {
	svc, _, _, tenantID := newBillFixture()

	created, err := svc.Create(context.Background(), tenantID, nil, CreateBillRequest{
		Vendor:  Reference{Name: "Steel Supplies"},
		DueDate: "2026-10-01",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusDraft, created.Status)

	bogus := "bogus-status"
	notes := "checked with supplier"
	updated, err := svc.Update(context.Background(), tenantID, nil, created.ID, UpdateBillRequest{
		Status: &bogus,
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusDraft, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestBillUpdateAppliesSynonymStatus(t *testing.T) {
	svc, _, _, tenantID := newBillFixture()

	created, err := svc.Create(context.Background(), tenantID, nil, CreateBillRequest{
		Vendor:  Reference{Name: "Steel Supplies"},
		DueDate: "2026-10-01",
	})
	require.NoError(t, err)

	pending := "pending"
	updated, err := svc.Update(context.Background(), tenantID, nil, created.ID, UpdateBillRequest{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusOpen, updated.Status)
}

func TestBillTransitionRules(t *testing.T) {
	assert.True(t, billTransitionAllowed(model.BillStatusDraft, model.BillStatusOpen))
	assert.True(t, billTransitionAllowed(model.BillStatusOpen, model.BillStatusApproved))
	assert.True(t, billTransitionAllowed(model.BillStatusOpen, model.BillStatusPaid))
	assert.True(t, billTransitionAllowed(model.BillStatusApproved, model.BillStatusPaid))
	assert.True(t, billTransitionAllowed(model.BillStatusDraft, model.BillStatusVoid))
	assert.False(t, billTransitionAllowed(model.BillStatusVoid, model.BillStatusOpen))
	assert.False(t, billTransitionAllowed(model.BillStatusDraft, model.BillStatusPaid))
	assert.False(t, billTransitionAllowed(model.BillStatusPaid, model.BillStatusDraft))
}

func TestBillListRejectsUnknownStatusFilter(t *testing.T) {
	svc, _, _, tenantID := newBillFixture()

	_, _, err := svc.List(context.Background(), tenantID, BillFilter{Status: "bogus-status"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestBillTotalsIdentity(t *testing.T) {
	svc, billRepo, _, tenantID := newBillFixture()

	created, err := svc.Create(context.Background(), tenantID, nil, CreateBillRequest{
		Vendor:  Reference{Name: "Steel Supplies"},
		DueDate: "2026-10-01",
		Items: []DocumentItemRequest{
			{Description: "Plates", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(3221), TaxPct: decimal.NewFromInt(18)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "3801.00", created.Total)
	assert.Equal(t, "3221.00", created.Subtotal)
	assert.Equal(t, "580.00", created.Tax)

	stored, err := billRepo.FindByID(context.Background(), tenantID, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(stored.Subtotal.Add(stored.Tax)))
}
