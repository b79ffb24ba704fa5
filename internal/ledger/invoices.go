package ledger

import (
	"fmt"
	"strings"

	"supplierledger/internal/validation"

	"github.com/shopspring/decimal"
)

// AddInvoice records a session invoice for an existing provider. TotalCost is
// the sum of the item totals; the invoice starts with no payments.
func (s *Store) AddInvoice(in InvoiceInput) Result[Invoice] {
	if len(in.Items) == 0 {
		return invalid[Invoice](ErrEmptyInvoice, map[string]string{"items": "la factura debe tener al menos un item"})
	}
	if fields := validation.Struct(in); fields != nil {
		return invalid[Invoice](ErrInvalidInput, fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pi := s.providerIndex(in.ProviderID)
	if pi < 0 {
		return fail[Invoice](KindPrecondition, ErrProviderNotFound, fmt.Sprintf("provider %d not found", in.ProviderID))
	}

	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(it.Total)
	}

	now := s.now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}

	inv := Invoice{
		ID:           s.nextInvoiceID(),
		ProviderID:   in.ProviderID,
		ProviderName: s.providers[pi].Name,
		Items:        append([]LineItem{}, in.Items...),
		TotalCost:    total,
		PaidAmount:   decimal.Zero,
		Payments:     []Payment{},
		Date:         date,
		CreatedAt:    now,
	}
	inv.settle()
	s.invoices = append(s.invoices, inv)

	s.log.Info().Int("invoice_id", inv.ID).Uint("provider_id", inv.ProviderID).Str("total", total.StringFixed(2)).Msg("invoice added")
	return ok(inv.clone())
}

// AddPaymentToInvoice applies a payment and replaces the invoice with its
// settled version.
func (s *Store) AddPaymentToInvoice(invoiceID int, in PaymentInput) Result[PaymentReceipt] {
	if !in.Amount.IsPositive() {
		return invalid[PaymentReceipt](ErrInvalidAmount, map[string]string{"amount": "debe ser mayor a 0"})
	}
	if fields := validation.Struct(in); fields != nil {
		return invalid[PaymentReceipt](ErrInvalidInput, fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.invoiceIndex(invoiceID)
	if i < 0 {
		return fail[PaymentReceipt](KindNotFound, ErrInvoiceNotFound, fmt.Sprintf("invoice %d not found", invoiceID))
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}

	next := s.invoices[i].clone()
	pay := Payment{
		ID:        nextPaymentID(next.Payments),
		Amount:    in.Amount,
		Date:      date,
		Method:    strings.TrimSpace(in.Method),
		Reference: strings.TrimSpace(in.Reference),
	}
	next.Payments = append(next.Payments, pay)
	next.PaidAmount = next.PaidAmount.Add(in.Amount)
	next.settle()
	s.invoices[i] = next

	s.log.Info().
		Int("invoice_id", next.ID).
		Int("payment_id", pay.ID).
		Str("amount", pay.Amount.StringFixed(2)).
		Str("status", string(next.Status)).
		Msg("payment applied")
	return ok(PaymentReceipt{Payment: pay, Invoice: next.clone()})
}

// Invoices returns the session's invoices in creation order.
func (s *Store) Invoices() []Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv.clone())
	}
	return out
}

func (s *Store) InvoiceByID(id int) (Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.invoiceIndex(id); i >= 0 {
		return s.invoices[i].clone(), true
	}
	return Invoice{}, false
}

// InvoicesByProvider returns the provider's invoices in creation order.
func (s *Store) InvoicesByProvider(providerID uint) []Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Invoice{}
	for _, inv := range s.invoices {
		if inv.ProviderID == providerID {
			out = append(out, inv.clone())
		}
	}
	return out
}

// invoiceIndex must be called under s.mu.
func (s *Store) invoiceIndex(id int) int {
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			return i
		}
	}
	return -1
}

// nextInvoiceID must be called under s.mu.
func (s *Store) nextInvoiceID() int {
	last := 0
	for _, inv := range s.invoices {
		if inv.ID > last {
			last = inv.ID
		}
	}
	return last + 1
}

func nextPaymentID(payments []Payment) int {
	last := 0
	for _, p := range payments {
		if p.ID > last {
			last = p.ID
		}
	}
	return last + 1
}

// normalizeAmount accepts both "1.500,50" and "1,500.50": when both separators
// appear the last one is the decimal point and repeated separators are
// thousands groupings. A lone separator is a decimal point unless exactly
// three digits follow it ("1.500"), which could be either and is rejected.
func normalizeAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")

	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", ""), nil
		}
		if len(s)-comma-1 == 3 {
			return "", fmt.Errorf("%w: %q", ErrAmbiguousAmount, s)
		}
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", ""), nil
		}
		if len(s)-dot-1 == 3 {
			return "", fmt.Errorf("%w: %q", ErrAmbiguousAmount, s)
		}
	}
	return s, nil
}
