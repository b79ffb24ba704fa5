package infra

// pdf.go: invoice statement generation using go-pdf/fpdf.
// One A4 page per invoice with:
//   - Company header and statement date
//   - Provider block (name, document, contact, city)
//   - Item table (description, quantity, unit price, total)
//   - Payments applied so far
//   - Total, paid amount and balance, with the invoice status
//
// The output file is saved to storagePath/statement_{invoice}_{provider}.pdf.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"supplierledger/internal/ledger"

	"github.com/go-pdf/fpdf"
)

// StatementInput is everything a statement shows.
type StatementInput struct {
	CompanyName string
	Invoice     ledger.Invoice
	Provider    ledger.Provider
	IssuedAt    time.Time
}

// GenerateStatementPDF writes the statement for in.Invoice under storagePath
// (created if needed) and returns the file path.
func GenerateStatementPDF(in StatementInput, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("statement_%d_%d.pdf", in.Invoice.ID, in.Invoice.ProviderID)
	filePath := filepath.Join(storagePath, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := WriteStatementPDF(f, in); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: close file: %w", err)
	}
	return filePath, nil
}

// WriteStatementPDF renders the statement to w.
func WriteStatementPDF(w io.Writer, in StatementInput) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("Estado de cuenta factura %d", in.Invoice.ID), true)
	pdf.AddPage()

	// Core fonts are cp1252; accented provider names need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	issued := in.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	company := in.CompanyName
	if company == "" {
		company = "Supplier Ledger"
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(company), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, tr("Estado de cuenta de factura"), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Emitido: "+issued.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	// ── Provider ─────────────────────────────────────────────────────────────
	p := in.Provider
	name := p.Name
	if name == "" {
		name = in.Invoice.ProviderName
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr("Proveedor: "+name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range providerLines(p) {
		pdf.CellFormat(contentW, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, fmt.Sprintf("Factura N %d", in.Invoice.ID), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Fecha: "+in.Invoice.Date.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // description
	col2 := contentW * 0.14 // qty
	col3 := contentW * 0.20 // unit price
	col4 := contentW * 0.20 // total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(col1, 6, tr("Descripción"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "1", 0, "C", true, 0, "")
	pdf.CellFormat(col3, 6, "P. unit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(col4, 6, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range in.Invoice.Items {
		desc := item.Description
		if desc == "" {
			desc = "-"
		}
		if r := []rune(desc); len(r) > 48 {
			desc = string(r[:47]) + "..."
		}
		pdf.CellFormat(col1, 6, tr(desc), "1", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, money(item.UnitPrice.StringFixed(2)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, money(item.Total.StringFixed(2)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Payments ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Pagos", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if len(in.Invoice.Payments) == 0 {
		pdf.CellFormat(contentW, 5, "Sin pagos registrados", "", 1, "L", false, 0, "")
	}
	for _, pay := range in.Invoice.Payments {
		label := fmt.Sprintf("#%d  %s", pay.ID, pay.Date.Format("02/01/2006"))
		if pay.Method != "" {
			label += "  " + pay.Method
		}
		if pay.Reference != "" {
			label += "  (" + pay.Reference + ")"
		}
		pdf.CellFormat(col1+col2+col3, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, money(pay.Amount.StringFixed(2)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(col1+col2+col3, 6, "Total factura:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, money(in.Invoice.TotalCost.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2+col3, 6, "Pagado:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, money(in.Invoice.PaidAmount.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 7, "Saldo:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, money(in.Invoice.Balance.StringFixed(2)), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "Estado: "+statusLabel(in.Invoice.Status), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

func providerLines(p ledger.Provider) []string {
	var lines []string
	if p.Document != "" {
		lines = append(lines, "Documento: "+p.Document)
	}
	if p.BusinessName != "" {
		lines = append(lines, "Razón social: "+p.BusinessName)
	}
	if p.ContactName != "" {
		lines = append(lines, "Contacto: "+p.ContactName)
	}
	if p.Email != "" {
		lines = append(lines, "Email: "+p.Email)
	}
	if p.City != "" || p.Country != "" {
		loc := p.City
		if p.Country != "" {
			if loc != "" {
				loc += ", "
			}
			loc += p.Country
		}
		lines = append(lines, "Ciudad: "+loc)
	}
	if p.PaymentTerms != "" {
		lines = append(lines, "Condición de pago: "+p.PaymentTerms)
	}
	return lines
}

func money(s string) string {
	return "$" + s
}

func statusLabel(s ledger.InvoiceStatus) string {
	switch s {
	case ledger.InvoicePaid:
		return "PAGADA"
	case ledger.InvoicePending:
		return "PENDIENTE"
	default:
		return string(s)
	}
}
