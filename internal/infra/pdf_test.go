package infra

import (
	"bytes"
	"net/smtp"
	"os"
	"path/filepath"
	"testing"
	"time"

	"supplierledger/internal/config"
	"supplierledger/internal/ledger"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatement() StatementInput {
	return StatementInput{
		CompanyName: "Distribuidora Sur",
		IssuedAt:    time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		Provider: ledger.Provider{
			ID: 1, Document: "30-11111111-1", Name: "Acme Logística", ContactName: "José Pérez",
			Email: "ventas@acme.com", City: "Córdoba", Country: "Argentina", PaymentTerms: "30 días",
		},
		Invoice: ledger.Invoice{
			ID: 4, ProviderID: 1, ProviderName: "Acme Logística",
			Items: []ledger.LineItem{
				{Description: "Cajas de cartón", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(100)},
				{Description: "Cinta", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(50)},
			},
			TotalCost:  decimal.NewFromInt(150),
			PaidAmount: decimal.NewFromInt(40),
			Balance:    decimal.NewFromInt(110),
			Status:     ledger.InvoicePending,
			Payments: []ledger.Payment{
				{ID: 1, Amount: decimal.NewFromInt(40), Date: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), Method: "transferencia", Reference: "TRX-991"},
			},
			Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteStatementPDF(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteStatementPDF(&buf, sampleStatement()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestGenerateStatementPDF_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := GenerateStatementPDF(sampleStatement(), dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "statement_4_1.pdf"), path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}

func TestWriteStatementPDF_NoPaymentsNoProvider(t *testing.T) {
	in := sampleStatement()
	in.Provider = ledger.Provider{}
	in.Invoice.Payments = nil
	var buf bytes.Buffer

	require.NoError(t, WriteStatementPDF(&buf, in))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

// ── Mailer ────────────────────────────────────────────────────────────────────

func TestMailer_SendStatementAttachesPDF(t *testing.T) {
	path, err := GenerateStatementPDF(sampleStatement(), t.TempDir())
	require.NoError(t, err)

	m := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 2525, SMTPUser: "compras@example.com", SMTPPassword: "x"})
	var sent *email.Email
	var sentAddr string
	m.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		sent, sentAddr = e, addr
		return nil
	}

	require.NoError(t, m.SendStatement("ventas@acme.com", "Estado de cuenta", "Adjuntamos el estado de cuenta.", path))

	require.NotNil(t, sent)
	assert.Equal(t, "smtp.example.com:2525", sentAddr)
	assert.Equal(t, []string{"ventas@acme.com"}, sent.To)
	assert.Equal(t, "compras@example.com", sent.From)
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "statement_4_1.pdf", sent.Attachments[0].Filename)
}

func TestMailer_RequiresHostAndRecipient(t *testing.T) {
	unconfigured := NewMailer(&config.Config{})
	assert.False(t, unconfigured.Configured())
	assert.ErrorContains(t, unconfigured.SendStatement("a@b.com", "s", "b", ""), "SMTP_HOST")

	m := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 25})
	assert.ErrorContains(t, m.SendStatement("", "s", "b", ""), "no email")
}
