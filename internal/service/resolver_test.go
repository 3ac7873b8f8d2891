package service

import (
	"context"
	"encoding/json"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceUnmarshalJSON(t *testing.T) {
	id := uuid.New().String()

	var byID Reference
	require.NoError(t, json.Unmarshal([]byte(`"`+id+`"`), &byID))
	assert.Equal(t, id, byID.ID)
	assert.Empty(t, byID.Name)

	var byName Reference
	require.NoError(t, json.Unmarshal([]byte(`"Acme Corp"`), &byName))
	assert.Empty(t, byName.ID)
	assert.Equal(t, "Acme Corp", byName.Name)

	var byObject Reference
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+id+`","name":"Acme Corp"}`), &byObject))
	assert.Equal(t, id, byObject.ID)
	assert.Equal(t, "Acme Corp", byObject.Name)
}

func TestResolveCustomerByID(t *testing.T) {
	customerRepo := newFakeCustomerRepo()
	resolver := NewPartyResolver(customerRepo, newFakeVendorRepo())
	tenantID := uuid.New()

	existing := &model.Customer{TenantID: tenantID, Name: "Acme Corp"}
	require.NoError(t, customerRepo.Create(context.Background(), existing))

	resolved, err := resolver.ResolveCustomer(context.Background(), tenantID, Reference{ID: existing.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resolved.ID)
}

func TestResolveCustomerByNameCreates(t *testing.T) {
	customerRepo := newFakeCustomerRepo()
	resolver := NewPartyResolver(customerRepo, newFakeVendorRepo())
	tenantID := uuid.New()

	resolved, err := resolver.ResolveCustomer(context.Background(), tenantID, Reference{Name: "New Customer"})
	require.NoError(t, err)
	assert.Equal(t, "New Customer", resolved.Name)
	assert.Equal(t, tenantID, resolved.TenantID)

	// Resolving the same name again reuses the created entity.
	again, err := resolver.ResolveCustomer(context.Background(), tenantID, Reference{Name: "New Customer"})
	require.NoError(t, err)
	assert.Equal(t, resolved.ID, again.ID)
}

// An id owned by another tenant is fatal, never silently rebound.
func TestResolveCustomerCrossTenantFails(t *testing.T) {
	customerRepo := newFakeCustomerRepo()
	resolver := NewPartyResolver(customerRepo, newFakeVendorRepo())
	tenantA := uuid.New()
	tenantB := uuid.New()

	other := &model.Customer{TenantID: tenantB, Name: "Other Tenant Co"}
	require.NoError(t, customerRepo.Create(context.Background(), other))

	_, err := resolver.ResolveCustomer(context.Background(), tenantA, Reference{ID: other.ID.String()})
	require.Error(t, err)
	assert.Equal(t, apperror.KindReference, apperror.KindOf(err))
}

// A name that exists only under another tenant creates a fresh entity
// scoped to the caller's tenant instead of reusing the foreign one.
func TestResolveCustomerByNameStaysInTenant(t *testing.T) {
	customerRepo := newFakeCustomerRepo()
	resolver := NewPartyResolver(customerRepo, newFakeVendorRepo())
	tenantA := uuid.New()
	tenantB := uuid.New()

	foreign := &model.Customer{TenantID: tenantB, Name: "Shared Name"}
	require.NoError(t, customerRepo.Create(context.Background(), foreign))

	resolved, err := resolver.ResolveCustomer(context.Background(), tenantA, Reference{Name: "Shared Name"})
	require.NoError(t, err)
	assert.NotEqual(t, foreign.ID, resolved.ID)
	assert.Equal(t, tenantA, resolved.TenantID)
}

func TestResolveCustomerEmptyReference(t *testing.T) {
	resolver := NewPartyResolver(newFakeCustomerRepo(), newFakeVendorRepo())

	_, err := resolver.ResolveCustomer(context.Background(), uuid.New(), Reference{})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

// A non-uuid id falls back to name resolution.
func TestResolveVendorNonUUIDIDTreatedAsName(t *testing.T) {
	vendorRepo := newFakeVendorRepo()
	resolver := NewPartyResolver(newFakeCustomerRepo(), vendorRepo)
	tenantID := uuid.New()

	resolved, err := resolver.ResolveVendor(context.Background(), tenantID, Reference{ID: "Steel Supplies"})
	require.NoError(t, err)
	assert.Equal(t, "Steel Supplies", resolved.Name)
	assert.Equal(t, tenantID, resolved.TenantID)
}
