package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopProvidersLimit caps Stats.TopProviders.
const TopProvidersLimit = 5

// UnknownProviderName labels top-provider rows whose provider is no longer in
// the local list.
const UnknownProviderName = "Proveedor desconocido"

type Stats struct {
	TotalProviders     int             `json:"total_providers"`
	ActiveProviders    int             `json:"active_providers"`
	InactiveProviders  int             `json:"inactive_providers"`
	TotalInvoices      int             `json:"total_invoices"`
	PendingInvoices    int             `json:"pending_invoices"`
	PaidInvoices       int             `json:"paid_invoices"`
	TotalDebt          decimal.Decimal `json:"total_debt"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	TotalInvoiceAmount decimal.Decimal `json:"total_invoice_amount"`
	TopProviders       []TopProvider   `json:"top_providers"`
}

type TopProvider struct {
	ProviderID   uint            `json:"provider_id"`
	Name         string          `json:"name"`
	InvoiceCount int             `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
}

// ProvidersStats summarises the current providers and session invoices.
// It is recomputed on every call.
func (s *Store) ProvidersStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeStats(s.providers, s.invoices)
}

func computeStats(providers []Provider, invoices []Invoice) Stats {
	st := Stats{
		TotalProviders:     len(providers),
		TotalInvoices:      len(invoices),
		TotalDebt:          decimal.Zero,
		TotalPaid:          decimal.Zero,
		TotalInvoiceAmount: decimal.Zero,
		TopProviders:       []TopProvider{},
	}
	names := make(map[uint]string, len(providers))
	for _, p := range providers {
		names[p.ID] = p.Name
		if p.IsActive {
			st.ActiveProviders++
		} else {
			st.InactiveProviders++
		}
	}

	// Rows are kept in first-appearance order so the stable sort below
	// breaks ties by invoice order.
	var rows []TopProvider
	rowOf := make(map[uint]int)
	for _, inv := range invoices {
		switch inv.Status {
		case InvoicePending:
			st.PendingInvoices++
		case InvoicePaid:
			st.PaidInvoices++
		}
		st.TotalDebt = st.TotalDebt.Add(inv.Balance)
		st.TotalPaid = st.TotalPaid.Add(inv.PaidAmount)
		st.TotalInvoiceAmount = st.TotalInvoiceAmount.Add(inv.TotalCost)

		i, seen := rowOf[inv.ProviderID]
		if !seen {
			name, known := names[inv.ProviderID]
			if !known {
				name = UnknownProviderName
			}
			rows = append(rows, TopProvider{
				ProviderID:  inv.ProviderID,
				Name:        name,
				TotalAmount: decimal.Zero,
				TotalPaid:   decimal.Zero,
				Balance:     decimal.Zero,
			})
			i = len(rows) - 1
			rowOf[inv.ProviderID] = i
		}
		rows[i].InvoiceCount++
		rows[i].TotalAmount = rows[i].TotalAmount.Add(inv.TotalCost)
		rows[i].TotalPaid = rows[i].TotalPaid.Add(inv.PaidAmount)
		rows[i].Balance = rows[i].Balance.Add(inv.Balance)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].TotalAmount.GreaterThan(rows[b].TotalAmount)
	})
	if len(rows) > TopProvidersLimit {
		rows = rows[:TopProvidersLimit]
	}
	st.TopProviders = append(st.TopProviders, rows...)
	return st
}
