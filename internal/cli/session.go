package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"supplierledger/internal/ledger"

	"github.com/shopspring/decimal"
)

// Session is the on-disk description of a working session's invoices.
//
//	{
//	  "invoices": [
//	    {
//	      "provider_id": 1,
//	      "date": "2024-05-01T00:00:00Z",
//	      "items": [{"description": "Cajas", "quantity": 10, "unit_price": 10, "total": 100}],
//	      "payments": [{"amount": "1.500,50", "method": "transferencia"}]
//	    }
//	  ]
//	}
type Session struct {
	Invoices []SessionInvoice `json:"invoices"`
}

type SessionInvoice struct {
	ProviderID uint              `json:"provider_id"`
	Date       *time.Time        `json:"date"`
	Items      []ledger.LineItem `json:"items"`
	Payments   []SessionPayment  `json:"payments"`
}

type SessionPayment struct {
	Amount    Amount     `json:"amount"`
	Date      *time.Time `json:"date"`
	Method    string     `json:"method"`
	Reference string     `json:"reference"`
}

// Amount accepts a JSON number or a user-formatted string ("1.500,50").
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := ledger.ParseAmount(s)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		a.Decimal = d
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

// LoadSession reads and decodes a session file.
func LoadSession(path string) (Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, nil
}

// Replay adds the session's invoices and payments to store in file order.
// Entries the store rejects are skipped and reported; the rest still apply.
func Replay(store *ledger.Store, s Session) []string {
	var issues []string
	for i, draft := range s.Invoices {
		r := store.AddInvoice(ledger.InvoiceInput{
			ProviderID: draft.ProviderID,
			Date:       draft.Date,
			Items:      draft.Items,
		})
		if !r.Success {
			issues = append(issues, fmt.Sprintf("invoice #%d skipped: %s", i+1, r.Error))
			continue
		}
		for j, p := range draft.Payments {
			pr := store.AddPaymentToInvoice(r.Data.ID, ledger.PaymentInput{
				Amount:    p.Amount.Decimal,
				Date:      p.Date,
				Method:    p.Method,
				Reference: p.Reference,
			})
			if !pr.Success {
				issues = append(issues, fmt.Sprintf("invoice #%d payment #%d skipped: %s", i+1, j+1, pr.Error))
			}
		}
	}
	return issues
}
