package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs (shared by customers and vendors — the two are symmetric) ---

type CreatePartyRequest struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type UpdatePartyRequest struct {
	Name    *string `json:"name"`
	Code    *string `json:"code"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

type PartyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func validatePartyCreate(req CreatePartyRequest) error {
	if req.Name == "" {
		return apperror.Validation("name is required")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return apperror.Validation("invalid email format")
		}
	}
	return nil
}

// --- Customer ---

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (PartyResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, id string) (PartyResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]PartyResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, id string, req UpdatePartyRequest) (PartyResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id string) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func toCustomerResponse(c *model.Customer) PartyResponse {
	return PartyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Code:      c.Code,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (PartyResponse, error) {
	if err := validatePartyCreate(req); err != nil {
		return PartyResponse{}, err
	}

	customer := &model.Customer{
		TenantID: tenantID,
		Name:     req.Name,
		Code:     req.Code,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return PartyResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) Get(ctx context.Context, tenantID uuid.UUID, id string) (PartyResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.New(apperror.KindBadRequest, "invalid customer id")
	}
	customer, err := s.repo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("customer not found")
		}
		return PartyResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]PartyResponse, int64, error) {
	customers, total, err := s.repo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]PartyResponse, 0, len(customers))
	for i := range customers {
		result = append(result, toCustomerResponse(&customers[i]))
	}
	return result, total, nil
}

func (s *customerService) Update(ctx context.Context, tenantID uuid.UUID, id string, req UpdatePartyRequest) (PartyResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.New(apperror.KindBadRequest, "invalid customer id")
	}
	customer, err := s.repo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("customer not found")
		}
		return PartyResponse{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return PartyResponse{}, apperror.Validation("name cannot be empty")
		}
		customer.Name = *req.Name
	}
	if req.Code != nil {
		customer.Code = *req.Code
	}
	if req.Email != nil {
		if *req.Email != "" {
			if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
				return PartyResponse{}, apperror.Validation("invalid email format")
			}
		}
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.City != nil {
		customer.City = *req.City
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return PartyResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) Delete(ctx context.Context, tenantID uuid.UUID, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return apperror.New(apperror.KindBadRequest, "invalid customer id")
	}
	if _, err := s.repo.FindByID(ctx, tenantID, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("customer not found")
		}
		return err
	}
	return s.repo.Delete(ctx, tenantID, customerID)
}

// --- Vendor ---

type VendorService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (PartyResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, id string) (PartyResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]PartyResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, id string, req UpdatePartyRequest) (PartyResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id string) error
}

type vendorService struct {
	repo repository.VendorRepository
}

func NewVendorService(repo repository.VendorRepository) VendorService {
	return &vendorService{repo: repo}
}

func toVendorResponse(v *model.Vendor) PartyResponse {
	return PartyResponse{
		ID:        v.ID,
		Name:      v.Name,
		Code:      v.Code,
		Email:     v.Email,
		Phone:     v.Phone,
		Address:   v.Address,
		City:      v.City,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func (s *vendorService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (PartyResponse, error) {
	if err := validatePartyCreate(req); err != nil {
		return PartyResponse{}, err
	}

	vendor := &model.Vendor{
		TenantID: tenantID,
		Name:     req.Name,
		Code:     req.Code,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return PartyResponse{}, err
	}
	return toVendorResponse(vendor), nil
}

func (s *vendorService) Get(ctx context.Context, tenantID uuid.UUID, id string) (PartyResponse, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.New(apperror.KindBadRequest, "invalid vendor id")
	}
	vendor, err := s.repo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("vendor not found")
		}
		return PartyResponse{}, err
	}
	return toVendorResponse(vendor), nil
}

func (s *vendorService) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]PartyResponse, int64, error) {
	vendors, total, err := s.repo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]PartyResponse, 0, len(vendors))
	for i := range vendors {
		result = append(result, toVendorResponse(&vendors[i]))
	}
	return result, total, nil
}

func (s *vendorService) Update(ctx context.Context, tenantID uuid.UUID, id string, req UpdatePartyRequest) (PartyResponse, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.New(apperror.KindBadRequest, "invalid vendor id")
	}
	vendor, err := s.repo.FindByID(ctx, tenantID, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("vendor not found")
		}
		return PartyResponse{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return PartyResponse{}, apperror.Validation("name cannot be empty")
		}
		vendor.Name = *req.Name
	}
	if req.Code != nil {
		vendor.Code = *req.Code
	}
	if req.Email != nil {
		if *req.Email != "" {
			if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
				return PartyResponse{}, apperror.Validation("invalid email format")
			}
		}
		vendor.Email = *req.Email
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Address != nil {
		vendor.Address = *req.Address
	}
	if req.City != nil {
		vendor.City = *req.City
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		return PartyResponse{}, err
	}
	return toVendorResponse(vendor), nil
}

func (s *vendorService) Delete(ctx context.Context, tenantID uuid.UUID, id string) error {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return apperror.New(apperror.KindBadRequest, "invalid vendor id")
	}
	if _, err := s.repo.FindByID(ctx, tenantID, vendorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("vendor not found")
		}
		return err
	}
	return s.repo.Delete(ctx, tenantID, vendorID)
}
