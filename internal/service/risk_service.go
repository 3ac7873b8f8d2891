package service

import (
	"context"
	"math"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Risk scoring weights. The score is a 0-100 composite of how late the
// invoice is, how much money is on the line, and how the customer has
// paid in the past.
const (
	riskLatenessPerDay  = 1.2
	riskLatenessCap     = 40.0
	riskApproachPerDay  = 2.0
	riskApproachCap     = 12.0
	riskApproachWindow  = 7
	riskHistoryPerLate  = 4.0
	riskHistoryLateCap  = 16.0
	riskHistoryPerDay   = 0.3
	riskHistoryDelayCap = 12.0
	riskNoContactBonus  = 4.0
	riskOverdueBonus    = 6.0
)

// Band thresholds on the rounded score.
const (
	RiskBandCritical = "critical"
	RiskBandHigh     = "high"
	RiskBandMedium   = "medium"
	RiskBandLow      = "low"
)

// RiskFactors breaks the composite score into its parts so the UI can
// explain why an invoice landed in a band.
type RiskFactors struct {
	Lateness  float64 `json:"lateness"`
	Amount    float64 `json:"amount"`
	History   float64 `json:"history"`
	NoContact float64 `json:"no_contact"`
	Overdue   float64 `json:"overdue"`
}

type RiskItem struct {
	InvoiceID    string      `json:"invoice_id"`
	Number       string      `json:"number"`
	CustomerName string      `json:"customer_name"`
	DueDate      string      `json:"due_date"`
	DaysOverdue  int         `json:"days_overdue"`
	Outstanding  string      `json:"outstanding"`
	Score        int         `json:"score"`
	Band         string      `json:"band"`
	Factors      RiskFactors `json:"factors"`
}

// customerHistory summarizes how a customer has settled paid invoices.
type customerHistory struct {
	lateCount    int
	avgDaysLate  float64
	totalDays    float64
	paidInvoices int
}

type RiskService interface {
	Score(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]RiskItem, error)
}

type riskService struct {
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	log          *logrus.Logger
}

func NewRiskService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	log *logrus.Logger,
) RiskService {
	return &riskService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		log:          log,
	}
}

// Score rates every open (non-paid, non-void) invoice and returns the
// list sorted by descending score.
func (s *riskService) Score(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]RiskItem, error) {
	invoices, err := s.invoiceRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	customers, err := s.customerRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	today := dateOnly(now)
	paidByInvoice := sumPaymentsByInvoice(payments)
	lastPaymentByInvoice := lastPaymentDates(payments)
	history := buildHistory(invoices, lastPaymentByInvoice)
	contactable := contactIndex(customers)

	items := make([]RiskItem, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status == model.InvoiceStatusPaid || inv.Status == model.InvoiceStatusVoid {
			continue
		}

		outstanding := inv.Total.Sub(paidByInvoice[inv.ID])
		daysOverdue := daysBetween(dateOnly(inv.DueDate), today)
		hist := history[inv.CustomerName]
		hasContact := contactable[inv.CustomerName]

		score, factors := scoreInvoice(daysOverdue, outstanding, hist, hasContact)
		rounded := int(math.Round(score))

		items = append(items, RiskItem{
			InvoiceID:    inv.ID.String(),
			Number:       inv.Number,
			CustomerName: inv.CustomerName,
			DueDate:      inv.DueDate.Format(DateLayout),
			DaysOverdue:  daysOverdue,
			Outstanding:  outstanding.StringFixed(2),
			Score:        rounded,
			Band:         riskBand(rounded),
			Factors:      factors,
		})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Score > items[b].Score
	})

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"invoices":  len(items),
	}).Debug("risk scores computed")

	return items, nil
}

// scoreInvoice is the pure scoring core. daysOverdue is negative
// before the due date.
func scoreInvoice(daysOverdue int, outstanding decimal.Decimal, hist customerHistory, hasContact bool) (float64, RiskFactors) {
	var f RiskFactors

	if daysOverdue > 0 {
		f.Lateness = clamp(float64(daysOverdue)*riskLatenessPerDay, 0, riskLatenessCap)
		f.Overdue = riskOverdueBonus
	} else if daysOverdue >= -riskApproachWindow {
		// Due date is within the approach window; pressure ramps up as
		// it gets closer.
		f.Lateness = clamp(float64(riskApproachWindow+daysOverdue)*riskApproachPerDay, 0, riskApproachCap)
	}

	f.Amount = amountTier(outstanding)

	f.History = clamp(float64(hist.lateCount)*riskHistoryPerLate, 0, riskHistoryLateCap) +
		clamp(hist.avgDaysLate*riskHistoryPerDay, 0, riskHistoryDelayCap)

	if !hasContact {
		f.NoContact = riskNoContactBonus
	}

	total := f.Lateness + f.Amount + f.History + f.NoContact + f.Overdue
	return clamp(total, 0, 100), f
}

func amountTier(outstanding decimal.Decimal) float64 {
	switch {
	case !outstanding.IsPositive():
		return 0
	case outstanding.LessThan(decimal.NewFromInt(10000)):
		return 4
	case outstanding.LessThan(decimal.NewFromInt(50000)):
		return 8
	default:
		return 12
	}
}

func riskBand(score int) string {
	switch {
	case score >= 80:
		return RiskBandCritical
	case score >= 60:
		return RiskBandHigh
	case score >= 35:
		return RiskBandMedium
	default:
		return RiskBandLow
	}
}

// buildHistory derives per-customer payment behavior from paid
// invoices: how many settled late and by how many days on average.
func buildHistory(invoices []model.Invoice, lastPayment map[uuid.UUID]time.Time) map[string]customerHistory {
	result := make(map[string]customerHistory)
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != model.InvoiceStatusPaid {
			continue
		}
		settled, ok := lastPayment[inv.ID]
		if !ok {
			continue
		}
		hist := result[inv.CustomerName]
		hist.paidInvoices++
		if late := daysBetween(dateOnly(inv.DueDate), dateOnly(settled)); late > 0 {
			hist.lateCount++
			hist.totalDays += float64(late)
		}
		if hist.lateCount > 0 {
			hist.avgDaysLate = hist.totalDays / float64(hist.lateCount)
		}
		result[inv.CustomerName] = hist
	}
	return result
}

func sumPaymentsByInvoice(payments []model.Payment) map[uuid.UUID]decimal.Decimal {
	sums := make(map[uuid.UUID]decimal.Decimal)
	for i := range payments {
		p := &payments[i]
		sums[p.InvoiceID] = sums[p.InvoiceID].Add(p.Amount)
	}
	return sums
}

func lastPaymentDates(payments []model.Payment) map[uuid.UUID]time.Time {
	last := make(map[uuid.UUID]time.Time)
	for i := range payments {
		p := &payments[i]
		if existing, ok := last[p.InvoiceID]; !ok || p.Date.After(existing) {
			last[p.InvoiceID] = p.Date
		}
	}
	return last
}

func contactIndex(customers []model.Customer) map[string]bool {
	index := make(map[string]bool, len(customers))
	for i := range customers {
		c := &customers[i]
		index[c.Name] = c.Email != "" || c.Phone != ""
	}
	return index
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
