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

// DefaultPaymentDelayDays is the baseline delay assumed for customers
// with no payment history.
const DefaultPaymentDelayDays = 30.0

const topPayersLimit = 5

// ForecastOptions control the projection. Zero values are replaced by
// the defaults in Normalize.
type ForecastOptions struct {
	HorizonDays        int     `json:"horizon_days"`
	SpreadDays         int     `json:"spread_days"`
	SpreadShape        string  `json:"spread_shape"` // flat, linear, geometric
	MediumMultiplier   float64 `json:"medium_multiplier"`
	HighMultiplier     float64 `json:"high_multiplier"`
	CriticalMultiplier float64 `json:"critical_multiplier"`
	DiscountUptakePct  float64 `json:"discount_uptake_pct"` // 0-100
	DiscountPullDays   int     `json:"discount_pull_days"`
	CollectionPushDays int     `json:"collection_push_days"`
}

func (o *ForecastOptions) Normalize() {
	if o.HorizonDays <= 0 {
		o.HorizonDays = 30
	}
	if o.SpreadDays <= 0 {
		o.SpreadDays = 5
	}
	switch o.SpreadShape {
	case "flat", "linear", "geometric":
	default:
		o.SpreadShape = "flat"
	}
	if o.MediumMultiplier <= 0 {
		o.MediumMultiplier = 1.15
	}
	if o.HighMultiplier <= 0 {
		o.HighMultiplier = 1.3
	}
	if o.CriticalMultiplier <= 0 {
		o.CriticalMultiplier = 1.5
	}
	if o.DiscountUptakePct < 0 {
		o.DiscountUptakePct = 0
	}
	if o.DiscountUptakePct > 100 {
		o.DiscountUptakePct = 100
	}
	if o.DiscountPullDays < 0 {
		o.DiscountPullDays = 0
	}
	if o.CollectionPushDays < 0 {
		o.CollectionPushDays = 0
	}
}

// ForecastBucket is one day of the horizon. Zero days are included so
// the series plots without gaps.
type ForecastBucket struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// ForecastDetail is a single (invoice, day, portion) contribution for
// drill-down.
type ForecastDetail struct {
	InvoiceID    string `json:"invoice_id"`
	Number       string `json:"number"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Portion      string `json:"portion"` // normal or discounted
	Amount       string `json:"amount"`
}

type ForecastPayer struct {
	InvoiceID    string `json:"invoice_id"`
	Number       string `json:"number"`
	CustomerName string `json:"customer_name"`
	EarliestDate string `json:"earliest_date"`
	Total        string `json:"total"`
	RiskScore    int    `json:"risk_score"`
	RiskBand     string `json:"risk_band"`
	Status       string `json:"status"`
}

type ForecastResult struct {
	Horizon   []ForecastBucket `json:"horizon"`
	Details   []ForecastDetail `json:"details"`
	TopPayers []ForecastPayer  `json:"top_payers"`
	Options   ForecastOptions  `json:"options"`
}

type ForecastService interface {
	Project(ctx context.Context, tenantID uuid.UUID, now time.Time, opts ForecastOptions) (ForecastResult, error)
}

type forecastService struct {
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	log          *logrus.Logger
}

func NewForecastService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	log *logrus.Logger,
) ForecastService {
	return &forecastService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		log:          log,
	}
}

// Project runs the two-phase forecast: learn historical payment delays
// per customer, then spread each open invoice's outstanding amount over
// the horizon. Deterministic for a fixed snapshot and options.
func (s *forecastService) Project(ctx context.Context, tenantID uuid.UUID, now time.Time, opts ForecastOptions) (ForecastResult, error) {
	opts.Normalize()

	invoices, err := s.invoiceRepo.ListAll(ctx, tenantID)
	if err != nil {
		return ForecastResult{}, err
	}
	payments, err := s.paymentRepo.ListAll(ctx, tenantID)
	if err != nil {
		return ForecastResult{}, err
	}
	customers, err := s.customerRepo.ListAll(ctx, tenantID)
	if err != nil {
		return ForecastResult{}, err
	}

	today := dateOnly(now)
	delays := learnDelays(invoices, payments)
	paidByInvoice := sumPaymentsByInvoice(payments)
	lastPayment := lastPaymentDates(payments)
	history := buildHistory(invoices, lastPayment)
	contactable := contactIndex(customers)

	buckets := make(map[string]decimal.Decimal, opts.HorizonDays)
	horizonEnd := today.AddDate(0, 0, opts.HorizonDays-1)
	var details []ForecastDetail
	payerIndex := make(map[uuid.UUID]*ForecastPayer)

	for i := range invoices {
		inv := &invoices[i]
		if inv.Status == model.InvoiceStatusPaid || inv.Status == model.InvoiceStatusVoid {
			continue
		}
		outstanding := inv.Total.Sub(paidByInvoice[inv.ID])
		if !outstanding.IsPositive() {
			continue
		}

		daysOverdue := daysBetween(dateOnly(inv.DueDate), today)
		score, _ := scoreInvoice(daysOverdue, outstanding, history[inv.CustomerName], contactable[inv.CustomerName])
		rounded := int(math.Round(score))
		band := riskBand(rounded)

		baseDelay := delays.forCustomer(inv.CustomerName)
		shift := int(math.Round(baseDelay*s.multiplier(band, opts))) - opts.CollectionPushDays
		expected := clampDate(dateOnly(inv.DueDate).AddDate(0, 0, shift), today, horizonEnd)

		weights := spreadWeights(opts.SpreadShape, opts.SpreadDays, score)

		discountFrac := decimal.NewFromFloat(opts.DiscountUptakePct / 100)
		discounted := outstanding.Mul(discountFrac).Round(2)
		normal := outstanding.Sub(discounted)

		s.spread(inv, normal, "normal", expected, today, horizonEnd, weights, buckets, &details, payerIndex, rounded, band)
		if discounted.IsPositive() {
			pulled := clampDate(expected.AddDate(0, 0, -opts.DiscountPullDays), today, horizonEnd)
			s.spread(inv, discounted, "discounted", pulled, today, horizonEnd, weights, buckets, &details, payerIndex, rounded, band)
		}
	}

	horizon := make([]ForecastBucket, 0, opts.HorizonDays)
	for d := 0; d < opts.HorizonDays; d++ {
		key := today.AddDate(0, 0, d).Format(DateLayout)
		horizon = append(horizon, ForecastBucket{Date: key, Amount: buckets[key].StringFixed(2)})
	}

	payers := make([]ForecastPayer, 0, len(payerIndex))
	for _, p := range payerIndex {
		payers = append(payers, *p)
	}
	sort.SliceStable(payers, func(a, b int) bool {
		if payers[a].EarliestDate != payers[b].EarliestDate {
			return payers[a].EarliestDate < payers[b].EarliestDate
		}
		at, _ := decimal.NewFromString(payers[a].Total)
		bt, _ := decimal.NewFromString(payers[b].Total)
		return at.GreaterThan(bt)
	})
	if len(payers) > topPayersLimit {
		payers = payers[:topPayersLimit]
	}

	sort.SliceStable(details, func(a, b int) bool {
		if details[a].Date != details[b].Date {
			return details[a].Date < details[b].Date
		}
		return details[a].Number < details[b].Number
	})

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"days":      opts.HorizonDays,
		"details":   len(details),
	}).Debug("forecast projected")

	return ForecastResult{Horizon: horizon, Details: details, TopPayers: payers, Options: opts}, nil
}

// spread books one portion of an invoice across the spread window. The
// last day takes the rounding remainder, so the sum of the booked
// amounts always equals the portion exactly.
func (s *forecastService) spread(
	inv *model.Invoice,
	portion decimal.Decimal,
	label string,
	start, today, horizonEnd time.Time,
	weights []float64,
	buckets map[string]decimal.Decimal,
	details *[]ForecastDetail,
	payers map[uuid.UUID]*ForecastPayer,
	riskScore int,
	band string,
) {
	booked := decimal.Zero
	for k, w := range weights {
		day := clampDate(start.AddDate(0, 0, k), today, horizonEnd)
		var amount decimal.Decimal
		if k == len(weights)-1 {
			amount = portion.Sub(booked)
		} else {
			amount = portion.Mul(decimal.NewFromFloat(w)).Round(2)
			booked = booked.Add(amount)
		}
		if amount.IsZero() {
			continue
		}

		key := day.Format(DateLayout)
		buckets[key] = buckets[key].Add(amount)
		*details = append(*details, ForecastDetail{
			InvoiceID:    inv.ID.String(),
			Number:       inv.Number,
			CustomerName: inv.CustomerName,
			Date:         key,
			Portion:      label,
			Amount:       amount.StringFixed(2),
		})

		payer, ok := payers[inv.ID]
		if !ok {
			payer = &ForecastPayer{
				InvoiceID:    inv.ID.String(),
				Number:       inv.Number,
				CustomerName: inv.CustomerName,
				EarliestDate: key,
				Total:        "0",
				RiskScore:    riskScore,
				RiskBand:     band,
				Status:       inv.Status,
			}
			payers[inv.ID] = payer
		}
		if key < payer.EarliestDate {
			payer.EarliestDate = key
		}
		running, _ := decimal.NewFromString(payer.Total)
		payer.Total = running.Add(amount).StringFixed(2)
	}
}

func (s *forecastService) multiplier(band string, opts ForecastOptions) float64 {
	switch band {
	case RiskBandMedium:
		return opts.MediumMultiplier
	case RiskBandHigh:
		return opts.HighMultiplier
	case RiskBandCritical:
		return opts.CriticalMultiplier
	default:
		return 1.0
	}
}

// spreadWeights returns len==n weights normalized to sum 1.
func spreadWeights(shape string, n int, riskScore float64) []float64 {
	weights := make([]float64, n)
	switch shape {
	case "linear":
		// Earliest day heaviest: n, n-1, ..., 1.
		for k := 0; k < n; k++ {
			weights[k] = float64(n - k)
		}
	case "geometric":
		// Higher risk → smaller p → slower decay → longer tail.
		p := 0.75 - (riskScore/100)*0.30
		for k := 0; k < n; k++ {
			weights[k] = math.Pow(1-p, float64(k))
		}
	default: // flat
		for k := 0; k < n; k++ {
			weights[k] = 1
		}
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	for k := range weights {
		weights[k] /= sum
	}
	return weights
}

// delayModel holds learned per-customer average payment delays with an
// overall fallback.
type delayModel struct {
	perCustomer map[string]float64
	overall     float64
}

func (m delayModel) forCustomer(name string) float64 {
	if d, ok := m.perCustomer[name]; ok {
		return d
	}
	return m.overall
}

// learnDelays matches each paid invoice to the earliest payment by the
// same customer on or after the invoice issue date and averages the day
// deltas. Unmatched invoices are skipped; no data means the default
// delay.
func learnDelays(invoices []model.Invoice, payments []model.Payment) delayModel {
	customerOf := make(map[uuid.UUID]string, len(invoices))
	for i := range invoices {
		customerOf[invoices[i].ID] = invoices[i].CustomerName
	}

	paymentsByCustomer := make(map[string][]time.Time)
	for i := range payments {
		name, ok := customerOf[payments[i].InvoiceID]
		if !ok {
			continue
		}
		paymentsByCustomer[name] = append(paymentsByCustomer[name], dateOnly(payments[i].Date))
	}
	for _, dates := range paymentsByCustomer {
		sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var overallSum float64
	var overallCount int

	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != model.InvoiceStatusPaid {
			continue
		}
		issued := dateOnly(inv.IssueDate)
		var matched bool
		var delta int
		for _, d := range paymentsByCustomer[inv.CustomerName] {
			if !d.Before(issued) {
				delta = daysBetween(issued, d)
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		sums[inv.CustomerName] += float64(delta)
		counts[inv.CustomerName]++
		overallSum += float64(delta)
		overallCount++
	}

	learned := delayModel{perCustomer: make(map[string]float64, len(sums)), overall: DefaultPaymentDelayDays}
	if overallCount > 0 {
		learned.overall = overallSum / float64(overallCount)
	}
	for name, sum := range sums {
		learned.perCustomer[name] = sum / float64(counts[name])
	}
	return learned
}

func clampDate(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
