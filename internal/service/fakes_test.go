package service

import (
	"context"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes. They keep the tenant-scoping semantics of
// the real repositories (a lookup under the wrong tenant behaves like a
// missing row) so resolver and service tests exercise the same paths.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if c, ok := r.customers[id]; ok && c.TenantID == tenantID {
		delete(r.customers, id)
	}
	return nil
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	if c, ok := r.customers[id]; ok && c.TenantID == tenantID {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.TenantID == tenantID && c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error) {
	all, _ := r.ListAll(ctx, tenantID)
	return all, int64(len(all)), nil
}

func (r *fakeCustomerRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error) {
	var result []model.Customer
	for _, c := range r.customers {
		if c.TenantID == tenantID {
			result = append(result, *c)
		}
	}
	return result, nil
}

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*model.Vendor
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: make(map[uuid.UUID]*model.Vendor)}
}

func (r *fakeVendorRepo) Create(ctx context.Context, vendor *model.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *fakeVendorRepo) Update(ctx context.Context, vendor *model.Vendor) error {
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *fakeVendorRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if v, ok := r.vendors[id]; ok && v.TenantID == tenantID {
		delete(r.vendors, id)
	}
	return nil
}

func (r *fakeVendorRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Vendor, error) {
	if v, ok := r.vendors[id]; ok && v.TenantID == tenantID {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeVendorRepo) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*model.Vendor, error) {
	for _, v := range r.vendors {
		if v.TenantID == tenantID && v.Name == name {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeVendorRepo) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Vendor, int64, error) {
	var result []model.Vendor
	for _, v := range r.vendors {
		if v.TenantID == tenantID {
			result = append(result, *v)
		}
	}
	return result, int64(len(result)), nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if inv, ok := r.invoices[id]; ok && inv.TenantID == tenantID {
		delete(r.invoices, id)
	}
	return nil
}

func (r *fakeInvoiceRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error) {
	if inv, ok := r.invoices[id]; ok && inv.TenantID == tenantID {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepo) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.Number == number {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepo) FindByNumberPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && strings.HasPrefix(inv.Number, prefix) {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	var result []model.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		result = append(result, *inv)
	}
	return result, int64(len(result)), nil
}

func (r *fakeInvoiceRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Invoice, error) {
	var result []model.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID {
			result = append(result, *inv)
		}
	}
	return result, nil
}

func (r *fakeInvoiceRepo) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error {
	if inv, ok := r.invoices[invoiceID]; ok {
		inv.Items = items
	}
	return nil
}

func (r *fakeInvoiceRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	if inv, ok := r.invoices[id]; ok && inv.TenantID == tenantID {
		inv.Status = status
	}
	return nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if p, ok := r.payments[id]; ok && p.TenantID == tenantID {
		delete(r.payments, id)
	}
	return nil
}

func (r *fakePaymentRepo) DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	for id, p := range r.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			delete(r.payments, id)
		}
	}
	return nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Payment, error) {
	if p, ok := r.payments[id]; ok && p.TenantID == tenantID {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) List(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, page, limit int) ([]model.Payment, int64, error) {
	var result []model.Payment
	for _, p := range r.payments {
		if p.TenantID != tenantID {
			continue
		}
		if invoiceID != nil && p.InvoiceID != *invoiceID {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *fakePaymentRepo) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.Payment, error) {
	var result []model.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) SumForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type fakeBillRepo struct {
	bills map[uuid.UUID]*model.Bill
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[uuid.UUID]*model.Bill)}
}

func (r *fakeBillRepo) Create(ctx context.Context, bill *model.Bill) error {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.bills[bill.ID] = bill
	return nil
}

func (r *fakeBillRepo) Update(ctx context.Context, bill *model.Bill) error {
	r.bills[bill.ID] = bill
	return nil
}

func (r *fakeBillRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if b, ok := r.bills[id]; ok && b.TenantID == tenantID {
		delete(r.bills, id)
	}
	return nil
}

func (r *fakeBillRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Bill, error) {
	if b, ok := r.bills[id]; ok && b.TenantID == tenantID {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBillRepo) List(ctx context.Context, tenantID uuid.UUID, filter repository.BillListFilter) ([]model.Bill, int64, error) {
	var result []model.Bill
	for _, b := range r.bills {
		if b.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		result = append(result, *b)
	}
	return result, int64(len(result)), nil
}

func (r *fakeBillRepo) ReplaceItems(ctx context.Context, billID uuid.UUID, items []model.BillItem) error {
	if b, ok := r.bills[billID]; ok {
		b.Items = items
	}
	return nil
}

type fakeCounterRepo struct {
	values map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{values: make(map[string]int64)}
}

func (r *fakeCounterRepo) Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error) {
	k := tenantID.String() + "/" + key
	r.values[k]++
	return r.values[k], nil
}
