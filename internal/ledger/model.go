package ledger

import (
	"time"

	"supplierledger/internal/dto"

	"github.com/shopspring/decimal"
)

// ProviderInput is the create/update payload sent to the Backend API.
type ProviderInput = dto.ProviderRequest

// Provider mirrors one server record. Absent text fields are empty strings.
type Provider struct {
	ID           uint      `json:"id"`
	Document     string    `json:"document"`
	Name         string    `json:"name"`
	BusinessName string    `json:"business_name"`
	ContactName  string    `json:"contact_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Mobile       string    `json:"mobile"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	PaymentTerms string    `json:"payment_terms"`
	PaymentDays  *int      `json:"payment_days"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input returns the editable fields of p, e.g. to prefill an edit form.
func (p Provider) Input() ProviderInput {
	return ProviderInput{
		Document:     p.Document,
		Name:         p.Name,
		BusinessName: p.BusinessName,
		ContactName:  p.ContactName,
		Email:        p.Email,
		Phone:        p.Phone,
		Mobile:       p.Mobile,
		Address:      p.Address,
		City:         p.City,
		Country:      p.Country,
		PaymentTerms: p.PaymentTerms,
		PaymentDays:  p.PaymentDays,
	}
}

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// LineItem is one invoice line. Only Total contributes to the invoice cost;
// Quantity and UnitPrice are informative.
type LineItem struct {
	Description string          `json:"description" validate:"omitempty,max=200"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"       validate:"dgte=0"`
}

// Payment is owned by exactly one invoice; its ID is unique within that invoice.
type Payment struct {
	ID        int             `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// Invoice is session-local. TotalCost is fixed at creation.
//
// Balance is max(0, TotalCost-PaidAmount) and Status is derived from Balance.
// PaidAmount is never clamped, so an overpaid invoice reports
// PaidAmount > TotalCost with a zero Balance.
type Invoice struct {
	ID           int             `json:"id"`
	ProviderID   uint            `json:"provider_id"`
	ProviderName string          `json:"provider_name"`
	Items        []LineItem      `json:"items"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Balance      decimal.Decimal `json:"balance"`
	Status       InvoiceStatus   `json:"status"`
	Payments     []Payment       `json:"payments"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InvoiceInput creates an invoice for an existing provider. Date defaults to now.
type InvoiceInput struct {
	ProviderID uint       `json:"provider_id"`
	Date       *time.Time `json:"date"`
	Items      []LineItem `json:"items"       validate:"required,min=1,dive"`
}

// PaymentInput applies a payment to an invoice. Date defaults to now.
type PaymentInput struct {
	Amount    decimal.Decimal `json:"amount"    validate:"dgt=0"`
	Date      *time.Time      `json:"date"`
	Method    string          `json:"method"    validate:"omitempty,max=40"`
	Reference string          `json:"reference" validate:"omitempty,max=80"`
}

// PaymentReceipt is returned by AddPaymentToInvoice.
type PaymentReceipt struct {
	Payment Payment `json:"payment"`
	Invoice Invoice `json:"invoice"`
}

func (inv Invoice) clone() Invoice {
	out := inv
	out.Items = append([]LineItem(nil), inv.Items...)
	out.Payments = append([]Payment(nil), inv.Payments...)
	if out.Items == nil {
		out.Items = []LineItem{}
	}
	if out.Payments == nil {
		out.Payments = []Payment{}
	}
	return out
}

// settle recomputes Balance and Status from TotalCost and PaidAmount.
func (inv *Invoice) settle() {
	inv.Balance = decimal.Max(decimal.Zero, inv.TotalCost.Sub(inv.PaidAmount))
	inv.Status = statusFor(inv.Balance)
}

func statusFor(balance decimal.Decimal) InvoiceStatus {
	if balance.LessThanOrEqual(decimal.Zero) {
		return InvoicePaid
	}
	return InvoicePending
}

// ParseAmount parses a user-entered money amount ("1500", "1500.50", "1.500,50").
// A single separator followed by exactly three digits ("1.500") fails with
// ErrAmbiguousAmount; write "1500", "1.500,00" or "1,500.00" instead.
func ParseAmount(s string) (decimal.Decimal, error) {
	n, err := normalizeAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n)
}
