package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name      string          `json:"name" binding:"required"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxPct    decimal.Decimal `json:"tax_pct"`
}

type UpdateProductRequest struct {
	Name      *string          `json:"name"`
	SKU       *string          `json:"sku"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	TaxPct    *decimal.Decimal `json:"tax_pct"`
}

type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	UnitPrice string    `json:"unit_price"`
	TaxPct    string    `json:"tax_pct"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (ProductResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, id string) (ProductResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]ProductResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, id string, req UpdateProductRequest) (ProductResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id string) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		UnitPrice: p.UnitPrice.StringFixed(2),
		TaxPct:    p.TaxPct.StringFixed(2),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (ProductResponse, error) {
	if req.Name == "" {
		return ProductResponse{}, apperror.Validation("name is required")
	}
	if req.UnitPrice.IsNegative() {
		return ProductResponse{}, apperror.Validation("unit_price must be >= 0")
	}
	if req.TaxPct.IsNegative() {
		return ProductResponse{}, apperror.Validation("tax_pct must be >= 0")
	}

	product := &model.Product{
		TenantID:  tenantID,
		Name:      req.Name,
		SKU:       req.SKU,
		UnitPrice: req.UnitPrice,
		TaxPct:    req.TaxPct,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) Get(ctx context.Context, tenantID uuid.UUID, id string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperror.New(apperror.KindBadRequest, "invalid product id")
	}
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperror.NotFound("product not found")
		}
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]ProductResponse, int64, error) {
	products, total, err := s.repo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, toProductResponse(&products[i]))
	}
	return result, total, nil
}

func (s *productService) Update(ctx context.Context, tenantID uuid.UUID, id string, req UpdateProductRequest) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperror.New(apperror.KindBadRequest, "invalid product id")
	}
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperror.NotFound("product not found")
		}
		return ProductResponse{}, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ProductResponse{}, apperror.Validation("name cannot be empty")
		}
		product.Name = *req.Name
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return ProductResponse{}, apperror.Validation("unit_price must be >= 0")
		}
		product.UnitPrice = *req.UnitPrice
	}
	if req.TaxPct != nil {
		if req.TaxPct.IsNegative() {
			return ProductResponse{}, apperror.Validation("tax_pct must be >= 0")
		}
		product.TaxPct = *req.TaxPct
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) Delete(ctx context.Context, tenantID uuid.UUID, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return apperror.New(apperror.KindBadRequest, "invalid product id")
	}
	if _, err := s.repo.FindByID(ctx, tenantID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("product not found")
		}
		return err
	}
	return s.repo.Delete(ctx, tenantID, productID)
}
