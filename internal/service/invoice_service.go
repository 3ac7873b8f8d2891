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

type CreateInvoiceRequest struct {
	Customer  Reference             `json:"customer"`
	Number    string                `json:"number"`
	IssueDate string                `json:"issue_date"`
	DueDate   string                `json:"due_date"`
	Status    string                `json:"status"`
	Items     []DocumentItemRequest `json:"items"`
	Notes     string                `json:"notes"`
}

type UpdateInvoiceRequest struct {
	Customer  *Reference             `json:"customer"`
	Number    *string                `json:"number"`
	IssueDate *string                `json:"issue_date"`
	DueDate   *string                `json:"due_date"`
	Status    *string                `json:"status"`
	Items     *[]DocumentItemRequest `json:"items"`
	Notes     *string                `json:"notes"`
}

type InvoiceFilter struct {
	Status string // raw; normalized here, unrecognized -> validation failure
	Search string // matches number and denormalized customer name
	Page   int
	Limit  int
}

type InvoiceResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	CustomerID    string                 `json:"customer_id"`
	CustomerName  string                 `json:"customer_name"`
	IssueDate     string                 `json:"issue_date"`
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

type InvoiceService interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id string) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	counterRepo repository.CounterRepository
	resolver    PartyResolver
	txManager   repository.TransactionManager
	log         *logrus.Logger
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	counterRepo repository.CounterRepository,
	resolver PartyResolver,
	txManager repository.TransactionManager,
	log *logrus.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		counterRepo: counterRepo,
		resolver:    resolver,
		txManager:   txManager,
		log:         log,
	}
}

// --- State machine ---

// invoiceTransitionAllowed captures the stored-state machine: draft
// moves to sent, sent to paid, anything may be voided, nothing leaves
// void. Demotion paid->sent happens only through payment recomputation,
// not through explicit updates.
func invoiceTransitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	if from == model.InvoiceStatusVoid {
		return false
	}
	if to == model.InvoiceStatusVoid {
		return true
	}
	switch {
	case from == model.InvoiceStatusDraft && to == model.InvoiceStatusSent:
		return true
	case from == model.InvoiceStatusSent && to == model.InvoiceStatusPaid:
		return true
	}
	return false
}

// --- Implementation ---

func (s *invoiceService) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error) {
	customer, err := s.resolver.ResolveCustomer(ctx, tenantID, req.Customer)
	if err != nil {
		return InvoiceResponse{}, err
	}

	if err := validateItems(req.Items); err != nil {
		return InvoiceResponse{}, err
	}

	status := model.InvoiceStatusDraft
	if req.Status != "" {
		normalized, ok := model.NormalizeInvoiceStatus(req.Status)
		if !ok {
			return InvoiceResponse{}, apperror.Newf(apperror.KindValidation, "unrecognized invoice status %q", req.Status)
		}
		status = normalized
	}

	now := time.Now()
	issueDate := parseDateOr(req.IssueDate, now)
	dueDate := parseDateOr(req.DueDate, issueDate.AddDate(0, 0, DefaultInvoiceTermsDays))

	number := req.Number
	if number == "" {
		seq, seqErr := s.counterRepo.Next(ctx, tenantID, counterKey("invoice", issueDate))
		if seqErr != nil {
			return InvoiceResponse{}, seqErr
		}
		number = formatDocNumber("INV", issueDate, seq)
	}

	totals := model.SumTotals(lineTotals(req.Items))
	invoice := &model.Invoice{
		TenantID:     tenantID,
		Number:       number,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		Status:       status,
		Items:        buildInvoiceItems(req.Items),
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Total:        totals.Total,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return InvoiceResponse{}, apperror.Newf(apperror.KindConflict, "invoice number %s already exists", number)
		}
		return InvoiceResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoice.ID,
		"number":     invoice.Number,
	}).Info("invoice created")

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) Get(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperror.New(apperror.KindBadRequest, "invalid invoice id")
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, apperror.NotFound("invoice not found")
		}
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
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
		normalized, ok := model.NormalizeInvoiceStatus(filter.Status)
		if !ok {
			return nil, 0, apperror.Newf(apperror.KindValidation, "unrecognized status filter %q", filter.Status)
		}
		status = normalized
	}

	invoices, total, err := s.invoiceRepo.List(ctx, tenantID, repository.InvoiceListFilter{
		Status: status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		result = append(result, toInvoiceResponse(&invoices[i]))
	}
	return result, total, nil
}

func (s *invoiceService) Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperror.New(apperror.KindBadRequest, "invalid invoice id")
	}

	var updated *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.invoiceRepo.FindByID(txCtx, tenantID, invoiceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("invoice not found")
			}
			return findErr
		}

		if req.Customer != nil {
			customer, resolveErr := s.resolver.ResolveCustomer(txCtx, tenantID, *req.Customer)
			if resolveErr != nil {
				return resolveErr
			}
			invoice.CustomerID = customer.ID
			invoice.CustomerName = customer.Name
		}
		if req.Number != nil && *req.Number != "" {
			invoice.Number = *req.Number
		}
		if req.IssueDate != nil {
			issueDate, parseErr := parseDateStrict("issue_date", *req.IssueDate)
			if parseErr != nil {
				return parseErr
			}
			invoice.IssueDate = issueDate
		}
		if req.DueDate != nil {
			dueDate, parseErr := parseDateStrict("due_date", *req.DueDate)
			if parseErr != nil {
				return parseErr
			}
			invoice.DueDate = dueDate
		}
		if req.Status != nil {
			// Invoice updates fail loudly on unrecognized status; the
			// bill path drops it silently. The asymmetry is deliberate.
			normalized, ok := model.NormalizeInvoiceStatus(*req.Status)
			if !ok {
				return apperror.Newf(apperror.KindValidation, "unrecognized invoice status %q", *req.Status)
			}
			if !invoiceTransitionAllowed(invoice.Status, normalized) {
				return apperror.Newf(apperror.KindValidation, "invalid status transition %s -> %s", invoice.Status, normalized)
			}
			invoice.Status = normalized
		}
		if req.Notes != nil {
			invoice.Notes = *req.Notes
		}
		if req.Items != nil {
			if itemErr := validateItems(*req.Items); itemErr != nil {
				return itemErr
			}
			totals := model.SumTotals(lineTotals(*req.Items))
			invoice.Subtotal = totals.Subtotal
			invoice.Tax = totals.Tax
			invoice.Total = totals.Total

			items := buildInvoiceItems(*req.Items)
			for i := range items {
				items[i].InvoiceID = invoice.ID
			}
			if replaceErr := s.invoiceRepo.ReplaceItems(txCtx, invoice.ID, items); replaceErr != nil {
				return replaceErr
			}
			invoice.Items = items
		}

		invoice.UpdatedBy = userID
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			if errors.Is(updateErr, gorm.ErrDuplicatedKey) {
				return apperror.Newf(apperror.KindConflict, "invoice number %s already exists", invoice.Number)
			}
			return updateErr
		}
		updated = invoice
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return toInvoiceResponse(updated), nil
}

// Delete soft-deletes the invoice together with its payments so the
// payment history cannot point at a live aggregate that no longer
// exists.
func (s *invoiceService) Delete(ctx context.Context, tenantID uuid.UUID, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return apperror.New(apperror.KindBadRequest, "invalid invoice id")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.invoiceRepo.FindByID(txCtx, tenantID, invoiceID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("invoice not found")
			}
			return findErr
		}
		if delErr := s.paymentRepo.DeleteByInvoice(txCtx, tenantID, invoiceID); delErr != nil {
			return delErr
		}
		return s.invoiceRepo.Delete(txCtx, tenantID, invoiceID)
	})
}

// --- Mapping ---

func buildInvoiceItems(items []DocumentItemRequest) []model.InvoiceItem {
	result := make([]model.InvoiceItem, 0, len(items))
	for i, item := range items {
		result = append(result, model.InvoiceItem{
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

func toInvoiceItemResponses(items []model.InvoiceItem) []DocumentItemResponse {
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

func toInvoiceResponse(inv *model.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID.String(),
		Number:        inv.Number,
		CustomerID:    inv.CustomerID.String(),
		CustomerName:  inv.CustomerName,
		IssueDate:     inv.IssueDate.Format(DateLayout),
		DueDate:       inv.DueDate.Format(DateLayout),
		Status:        inv.Status,
		DisplayStatus: inv.DisplayStatus(time.Now()),
		Items:         toInvoiceItemResponses(inv.Items),
		Subtotal:      inv.Subtotal.StringFixed(2),
		Tax:           inv.Tax.StringFixed(2),
		Total:         inv.Total.StringFixed(2),
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
	}
}
