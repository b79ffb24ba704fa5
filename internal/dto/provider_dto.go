package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProviderRequest is the create/update payload. Server-assigned fields
// (id, timestamps, is_active) are not accepted.
type ProviderRequest struct {
	Document     string `json:"document"      validate:"required,min=5,max=20,document"`
	Name         string `json:"name"          validate:"required,min=2,max=120"`
	BusinessName string `json:"business_name" validate:"omitempty,max=160"`
	ContactName  string `json:"contact_name"  validate:"omitempty,max=120"`
	Email        string `json:"email"         validate:"omitempty,email"`
	Phone        string `json:"phone"         validate:"omitempty,phone"`
	Mobile       string `json:"mobile"        validate:"omitempty,phone"`
	Address      string `json:"address"       validate:"omitempty,max=200"`
	City         string `json:"city"          validate:"omitempty,max=80"`
	Country      string `json:"country"       validate:"omitempty,max=80"`
	PaymentTerms string `json:"payment_terms" validate:"omitempty,max=120"`
	PaymentDays  *int   `json:"payment_days"  validate:"omitempty,min=0,max=365"`
}

// ProviderSearch binds GET /providers/search.
type ProviderSearch struct {
	Q string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProviderResponse struct {
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
