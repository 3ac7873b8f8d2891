package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateBillRequest struct {
	Vendor   Reference             `json:"vendor"`
	Number   string                `json:"number"`
	BillDate string                `json:"bill_date"`
	DueDate  string                `json:"due_date"`
	Status   string                `json:"status"`
	Items    []DocumentItemRequest `json:"items"`
	Notes    string                `json:"notes"`
}

type UpdateBillRequest struct {
	Vendor   *Reference             `json:"vendor"`
	Number   *string                `json:"number"`
	BillDate *string                `json:"bill_date"`
	DueDate  *string                `json:"due_date"`
	Status   *string                `json:"status"`
	Items    *[]DocumentItemRequest `json:"items"`
	Notes    *string                `json:"notes"`
}

type BillFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type BillResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	VendorID      string                 `json:"vendor_id"`
	VendorName    string                 `json:"vendor_name"`
	BillDate      string                 `json:"bill_date"`
	DueDate       string                 `json:"due_date"`
	Status        string                 `json:"status"`
	DisplayStatus string                 `json:"display_status"`
	Items         []DocumentItemResponse `json:"items"`
	Subtotal      string                 `json:"subtotal"`
	Tax           string                 `json:"tax"`
	Total         string                 `json:"total"`
	Notes         string                 `json:"notes"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}

// --- Interface ---

type BillService interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req CreateBillRequest) (BillResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, id string) (BillResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter BillFilter) ([]BillResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id string, req UpdateBillRequest) (BillResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id string) error
}

type billService struct {
	billRepo    repository.BillRepository
	counterRepo repository.CounterRepository
	resolver    PartyResolver
	txManager   repository.TransactionManager
	log         *logrus.Logger
}

func NewBillService(
	billRepo repository.BillRepository,
	counterRepo repository.CounterRepository,
	resolver PartyResolver,
	txManager repository.TransactionManager,
	log *logrus.Logger,
) BillService {
	return &billService{
		billRepo:    billRepo,
		counterRepo: counterRepo,
		resolver:    resolver,
		txManager:   txManager,
		log:         log,
	}
}

// billTransitionAllowed mirrors the invoice machine with the extra
// approval state: draft->open, open->approved, open/approved->paid,
// anything may be voided, nothing leaves void.
func billTransitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	if from == model.BillStatusVoid {
		return false
	}
	if to == model.BillStatusVoid {
		return true
	}
	switch {
	case from == model.BillStatusDraft && to == model.BillStatusOpen:
		return true
	case from == model.BillStatusOpen && to == model.BillStatusApproved:
		return true
	case from == model.BillStatusOpen && to == model.BillStatusPaid:
		return true
	case from == model.BillStatusApproved && to == model.BillStatusPaid:
		return true
	}
	return false
}

// --- Implementation ---

func (s *billService) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req CreateBillRequest) (BillResponse, error) {
	vendor, err := s.resolver.ResolveVendor(ctx, tenantID, req.Vendor)
	if err != nil {
		return BillResponse{}, err
	}

	if err := validateItems(req.Items); err != nil {
		return BillResponse{}, err
	}

	status := model.BillStatusDraft
	if req.Status != "" {
		normalized, ok := model.NormalizeBillStatus(req.Status)
		if !ok {
			return BillResponse{}, apperror.Newf(apperror.KindValidation, "unrecognized bill status %q", req.Status)
		}
		status = normalized
	}

	now := time.Now()
	billDate := parseDateOr(req.BillDate, now)

	// Unlike invoices, a bill has no due date policy to fall back on.
	if req.DueDate == "" {
		return BillResponse{}, apperror.Validation("due_date is required")
	}
	dueDate, err := parseDateStrict("due_date", req.DueDate)
	if err != nil {
		return BillResponse{}, err
	}

	number := req.Number
	if number == "" {
		seq, seqErr := s.counterRepo.Next(ctx, tenantID, counterKey("bill", billDate))
		if seqErr != nil {
			return BillResponse{}, seqErr
		}
		number = formatDocNumber("BILL", billDate, seq)
	}

	totals := model.SumTotals(lineTotals(req.Items))
	bill := &model.Bill{
		TenantID:   tenantID,
		Number:     number,
		VendorID:   vendor.ID,
		VendorName: vendor.Name,
		BillDate:   billDate,
		DueDate:    dueDate,
		Status:     status,
		Items:      buildBillItems(req.Items),
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return BillResponse{}, apperror.Newf(apperror.KindConflict, "bill number %s already exists", number)
		}
		return BillResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"bill_id":   bill.ID,
		"number":    bill.Number,
	}).Info("bill created")

	return toBillResponse(bill), nil
}

func (s *billService) Get(ctx context.Context, tenantID uuid.UUID, id string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, apperror.New(apperror.KindBadRequest, "invalid bill id")
	}
	bill, err := s.billRepo.FindByID(ctx, tenantID, billID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BillResponse{}, apperror.NotFound("bill not found")
		}
		return BillResponse{}, err
	}
	return toBillResponse(bill), nil
}

func (s *billService) List(ctx context.Context, tenantID uuid.UUID, filter BillFilter) ([]BillResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	status := ""
	if filter.Status != "" {
		normalized, ok := model.NormalizeBillStatus(filter.Status)
		if !ok {
			return nil, 0, apperror.Newf(apperror.KindValidation, "unrecognized status filter %q", filter.Status)
		}
		status = normalized
	}

	bills, total, err := s.billRepo.List(ctx, tenantID, repository.BillListFilter{
		Status: status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	result := make([]BillResponse, 0, len(bills))
	for i := range bills {
		result = append(result, toBillResponse(&bills[i]))
	}
	return result, total, nil
}

func (s *billService) Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id string, req UpdateBillRequest) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, apperror.New(apperror.KindBadRequest, "invalid bill id")
	}

	var updated *model.Bill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		bill, findErr := s.billRepo.FindByID(txCtx, tenantID, billID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("bill not found")
			}
			return findErr
		}

		if req.Vendor != nil {
			vendor, resolveErr := s.resolver.ResolveVendor(txCtx, tenantID, *req.Vendor)
			if resolveErr != nil {
				return resolveErr
			}
			bill.VendorID = vendor.ID
			bill.VendorName = vendor.Name
		}
		if req.Number != nil && *req.Number != "" {
			bill.Number = *req.Number
		}
		if req.BillDate != nil {
			billDate, parseErr := parseDateStrict("bill_date", *req.BillDate)
			if parseErr != nil {
				return parseErr
			}
			bill.BillDate = billDate
		}
		if req.DueDate != nil {
			dueDate, parseErr := parseDateStrict("due_date", *req.DueDate)
			if parseErr != nil {
				return parseErr
			}
			bill.DueDate = dueDate
		}
		if req.Status != nil {
			// Tolerant update path: an unrecognized bill status is
			// dropped and the previous value kept; the rest of the
			// update still applies.
			if normalized, ok := model.NormalizeBillStatus(*req.Status); ok {
				if !billTransitionAllowed(bill.Status, normalized) {
					return apperror.Newf(apperror.KindValidation, "invalid status transition %s -> %s", bill.Status, normalized)
				}
				bill.Status = normalized
			}
		}
		if req.Notes != nil {
			bill.Notes = *req.Notes
		}
		if req.Items != nil {
			if itemErr := validateItems(*req.Items); itemErr != nil {
				return itemErr
			}
			totals := model.SumTotals(lineTotals(*req.Items))
			bill.Subtotal = totals.Subtotal
			bill.Tax = totals.Tax
			bill.Total = totals.Total

			items := buildBillItems(*req.Items)
			for i := range items {
				items[i].BillID = bill.ID
			}
			if replaceErr := s.billRepo.ReplaceItems(txCtx, bill.ID, items); replaceErr != nil {
				return replaceErr
			}
			bill.Items = items
		}

		bill.UpdatedBy = userID
		if updateErr := s.billRepo.Update(txCtx, bill); updateErr != nil {
			if errors.Is(updateErr, gorm.ErrDuplicatedKey) {
				return apperror.Newf(apperror.KindConflict, "bill number %s already exists", bill.Number)
			}
			return updateErr
		}
		updated = bill
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	return toBillResponse(updated), nil
}

func (s *billService) Delete(ctx context.Context, tenantID uuid.UUID, id string) error {
	billID, err := uuid.Parse(id)
	if err != nil {
		return apperror.New(apperror.KindBadRequest, "invalid bill id")
	}
	if _, err := s.billRepo.FindByID(ctx, tenantID, billID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("bill not found")
		}
		return err
	}
	return s.billRepo.Delete(ctx, tenantID, billID)
}

// --- Mapping ---

func buildBillItems(items []DocumentItemRequest) []model.BillItem {
	result := make([]model.BillItem, 0, len(items))
	for i, item := range items {
		result = append(result, model.BillItem{
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitRate:    item.UnitRate,
			TaxPct:      item.TaxPct,
			Amount:      model.LineAmount(item.Quantity, item.UnitRate, item.TaxPct),
		})
	}
	return result
}

func toBillItemResponses(items []model.BillItem) []DocumentItemResponse {
	result := make([]DocumentItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, DocumentItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitRate:    item.UnitRate.StringFixed(2),
			TaxPct:      item.TaxPct.StringFixed(2),
			Amount:      item.Amount.StringFixed(2),
		})
	}
	return result
}

func toBillResponse(b *model.Bill) BillResponse {
	displayStatus := b.Status
	if (b.Status == model.BillStatusOpen || b.Status == model.BillStatusApproved) &&
		b.DueDate.Before(time.Now().Truncate(24*time.Hour)) {
		displayStatus = "overdue"
	}
	return BillResponse{
		ID:            b.ID.String(),
		Number:        b.Number,
		VendorID:      b.VendorID.String(),
		VendorName:    b.VendorName,
		BillDate:      b.BillDate.Format(DateLayout),
		DueDate:       b.DueDate.Format(DateLayout),
		Status:        b.Status,
		DisplayStatus: displayStatus,
		Items:         toBillItemResponses(b.Items),
		Subtotal:      b.Subtotal.StringFixed(2),
		Tax:           b.Tax.StringFixed(2),
		Total:         b.Total.StringFixed(2),
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
}
