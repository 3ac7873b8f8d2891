package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

// CreatePaymentRequest accepts the invoice reference as a direct id, an
// exact invoice number, or a case-sensitive number prefix (fallback).
type CreatePaymentRequest struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Method        string          `json:"method"`
	Notes         string          `json:"notes"`
}

type PaymentResponse struct {
	ID            string `json:"id"`
	InvoiceID     string `json:"invoice_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Method        string `json:"method"`
	Notes         string `json:"notes"`
	InvoiceStatus string `json:"invoice_status"` // status after recomputation
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type PaymentService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (PaymentResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, invoiceID string, page, limit int) ([]PaymentResponse, int64, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id string) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
	log         *logrus.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	log *logrus.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		txManager:   txManager,
		hub:         hub,
		log:         log,
	}
}

// --- Implementation ---

func (s *paymentService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (PaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return PaymentResponse{}, apperror.Validation("amount must be > 0")
	}

	invoice, err := s.resolveInvoice(ctx, tenantID, req.InvoiceID, req.InvoiceNumber)
	if err != nil {
		return PaymentResponse{}, err
	}

	payment := &model.Payment{
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Amount:    req.Amount,
		Date:      parseDateOr(req.Date, time.Now()),
		Method:    req.Method,
		Notes:     req.Notes,
	}

	var status string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.paymentRepo.Create(txCtx, payment); createErr != nil {
			return createErr
		}
		var recomputeErr error
		status, recomputeErr = s.recomputeInvoiceStatus(txCtx, tenantID, invoice.ID)
		return recomputeErr
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoice.ID,
		"payment_id": payment.ID,
		"amount":     payment.Amount,
		"status":     status,
	}).Info("payment recorded")
	s.broadcast(tenantID, invoice.ID, status)

	return toPaymentResponse(payment, status), nil
}

func (s *paymentService) List(ctx context.Context, tenantID uuid.UUID, invoiceID string, page, limit int) ([]PaymentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var invoiceFilter *uuid.UUID
	if invoiceID != "" {
		parsed, err := uuid.Parse(invoiceID)
		if err != nil {
			return nil, 0, apperror.New(apperror.KindBadRequest, "invalid invoice id")
		}
		invoiceFilter = &parsed
	}

	payments, total, err := s.paymentRepo.List(ctx, tenantID, invoiceFilter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, toPaymentResponse(&payments[i], ""))
	}
	return result, total, nil
}

func (s *paymentService) Delete(ctx context.Context, tenantID uuid.UUID, id string) error {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return apperror.New(apperror.KindBadRequest, "invalid payment id")
	}

	payment, err := s.paymentRepo.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("payment not found")
		}
		return err
	}

	var status string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.paymentRepo.Delete(txCtx, tenantID, paymentID); delErr != nil {
			return delErr
		}
		var recomputeErr error
		status, recomputeErr = s.recomputeInvoiceStatus(txCtx, tenantID, payment.InvoiceID)
		return recomputeErr
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": payment.InvoiceID,
		"payment_id": paymentID,
		"status":     status,
	}).Info("payment deleted")
	s.broadcast(tenantID, payment.InvoiceID, status)

	return nil
}

// resolveInvoice tries a direct id, then an exact number match, then a
// case-sensitive prefix match.
func (s *paymentService) resolveInvoice(ctx context.Context, tenantID uuid.UUID, idField, numberField string) (*model.Invoice, error) {
	candidate := idField
	if candidate == "" {
		candidate = numberField
	}
	if candidate == "" {
		return nil, apperror.Validation("missing invoice reference")
	}

	if parsed, err := uuid.Parse(candidate); err == nil {
		invoice, findErr := s.invoiceRepo.FindByID(ctx, tenantID, parsed)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil, apperror.New(apperror.KindReference, "invoice reference does not resolve within tenant")
			}
			return nil, findErr
		}
		return invoice, nil
	}

	invoice, err := s.invoiceRepo.FindByNumber(ctx, tenantID, candidate)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	invoice, err = s.invoiceRepo.FindByNumberPrefix(ctx, tenantID, candidate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindReference, "no invoice matches %q", candidate)
		}
		return nil, err
	}
	return invoice, nil
}

// recomputeInvoiceStatus derives the stored status from the aggregate
// payment sum: paid iff the sum covers the total, otherwise sent.
// Draft and void invoices are left alone. Idempotent; must run inside
// the same transaction as the payment mutation.
func (s *paymentService) recomputeInvoiceStatus(ctx context.Context, tenantID, invoiceID uuid.UUID) (string, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.Status == model.InvoiceStatusDraft || invoice.Status == model.InvoiceStatusVoid {
		return invoice.Status, nil
	}

	paid, err := s.paymentRepo.SumForInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return "", err
	}

	status := model.InvoiceStatusSent
	if paid.GreaterThanOrEqual(invoice.Total) && invoice.Total.IsPositive() {
		status = model.InvoiceStatusPaid
	}
	if status == invoice.Status {
		return status, nil
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, tenantID, invoiceID, status); err != nil {
		return "", err
	}
	return status, nil
}

func (s *paymentService) broadcast(tenantID, invoiceID uuid.UUID, status string) {
	if s.hub == nil {
		return
	}
	event := "invoice.reopened"
	if status == model.InvoiceStatusPaid {
		event = "invoice.paid"
	}
	s.hub.BroadcastEvent(ws.Event{
		Type:      event,
		TenantID:  tenantID.String(),
		InvoiceID: invoiceID.String(),
		Status:    status,
	})
}

func toPaymentResponse(p *model.Payment, invoiceStatus string) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		InvoiceID:     p.InvoiceID.String(),
		Amount:        p.Amount.StringFixed(2),
		Date:          p.Date.Format(DateLayout),
		Method:        p.Method,
		Notes:         p.Notes,
		InvoiceStatus: invoiceStatus,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
