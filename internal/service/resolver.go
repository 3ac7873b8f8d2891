package service

import (
	"context"
	"encoding/json"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reference is the loosely-typed party reference accepted on document
// payloads. Clients may send a plain string (a uuid or a name) or an
// object carrying id and/or name; UnmarshalJSON folds all three shapes
// into one struct.
type Reference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r *Reference) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if _, parseErr := uuid.Parse(s); parseErr == nil {
			r.ID = s
		} else {
			r.Name = s
		}
		return nil
	}

	type refObject struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	var obj refObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	r.Name = obj.Name
	return nil
}

// IsZero reports whether the reference carries nothing usable.
func (r Reference) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// PartyResolver turns a Reference into a concrete, tenant-owned
// customer or vendor, creating the entity by name when absent. A
// reference that resolves outside the tenant always fails the calling
// operation.
type PartyResolver interface {
	ResolveCustomer(ctx context.Context, tenantID uuid.UUID, ref Reference) (*model.Customer, error)
	ResolveVendor(ctx context.Context, tenantID uuid.UUID, ref Reference) (*model.Vendor, error)
}

type partyResolver struct {
	customerRepo repository.CustomerRepository
	vendorRepo   repository.VendorRepository
}

func NewPartyResolver(customerRepo repository.CustomerRepository, vendorRepo repository.VendorRepository) PartyResolver {
	return &partyResolver{customerRepo: customerRepo, vendorRepo: vendorRepo}
}

func (p *partyResolver) ResolveCustomer(ctx context.Context, tenantID uuid.UUID, ref Reference) (*model.Customer, error) {
	if ref.ID != "" {
		id, err := uuid.Parse(ref.ID)
		if err == nil {
			customer, findErr := p.customerRepo.FindByID(ctx, tenantID, id)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					// The id either does not exist or belongs to another
					// tenant; both are fatal to the operation.
					return nil, apperror.New(apperror.KindReference, "customer reference does not resolve within tenant")
				}
				return nil, findErr
			}
			return customer, nil
		}
		// A non-uuid id is treated as a name candidate below.
		if ref.Name == "" {
			ref.Name = ref.ID
		}
	}

	if ref.Name == "" {
		return nil, apperror.Validation("missing customer reference")
	}

	customer, err := p.customerRepo.FindByName(ctx, tenantID, ref.Name)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &model.Customer{TenantID: tenantID, Name: ref.Name}
	if err := p.customerRepo.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (p *partyResolver) ResolveVendor(ctx context.Context, tenantID uuid.UUID, ref Reference) (*model.Vendor, error) {
	if ref.ID != "" {
		id, err := uuid.Parse(ref.ID)
		if err == nil {
			vendor, findErr := p.vendorRepo.FindByID(ctx, tenantID, id)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return nil, apperror.New(apperror.KindReference, "vendor reference does not resolve within tenant")
				}
				return nil, findErr
			}
			return vendor, nil
		}
		if ref.Name == "" {
			ref.Name = ref.ID
		}
	}

	if ref.Name == "" {
		return nil, apperror.Validation("missing vendor reference")
	}

	vendor, err := p.vendorRepo.FindByName(ctx, tenantID, ref.Name)
	if err == nil {
		return vendor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &model.Vendor{TenantID: tenantID, Name: ref.Name}
	if err := p.vendorRepo.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
