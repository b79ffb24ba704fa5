package cli

import (
	"errors"
	"fmt"
	"strconv"

	"supplierledger/internal/infra"
	"supplierledger/internal/ledger"

	"github.com/spf13/cobra"
)

var (
	errNoSession = errors.New("no session file given (use --session)")
	errNoAPI     = errors.New("backend api client is not configured")
)

func newInvoicesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"facturas", "i"},
		Short:   "Inspect the session's invoices and issue statements",
	}
	cmd.AddCommand(
		newInvoicesListCommand(app),
		newInvoicesStatementCommand(app),
	)
	return cmd
}

func newInvoicesListCommand(app *App) *cobra.Command {
	var providerKey, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the session's invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := parseInvoiceStatus(status)
			if err != nil {
				return err
			}
			if app.sessionPath == "" {
				return errNoSession
			}
			if err := app.load(cmd); err != nil {
				return err
			}

			list := app.Store.Invoices()
			if providerKey != "" {
				p, ok := app.Store.ProviderByKey(providerKey)
				if !ok {
					return fmt.Errorf("proveedor %q no encontrado", providerKey)
				}
				list = app.Store.InvoicesByProvider(p.ID)
			}
			if sf != "" {
				list = filterInvoices(list, sf)
			}

			if app.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return renderInvoices(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&providerKey, "provider", "", "Only invoices of this provider id")
	cmd.Flags().StringVar(&status, "status", "", "Only invoices with this status: pending | paid")
	return cmd
}

func parseInvoiceStatus(s string) (ledger.InvoiceStatus, error) {
	switch s {
	case "", "all":
		return "", nil
	case string(ledger.InvoicePending):
		return ledger.InvoicePending, nil
	case string(ledger.InvoicePaid):
		return ledger.InvoicePaid, nil
	default:
		return "", fmt.Errorf("unknown invoice status %q (use pending or paid)", s)
	}
}

func filterInvoices(list []ledger.Invoice, status ledger.InvoiceStatus) []ledger.Invoice {
	out := []ledger.Invoice{}
	for _, inv := range list {
		if inv.Status == status {
			out = append(out, inv)
		}
	}
	return out
}

func newInvoicesStatementCommand(app *App) *cobra.Command {
	var dir string
	var send bool
	cmd := &cobra.Command{
		Use:   "statement <invoice-id>",
		Short: "Write a PDF statement for an invoice, optionally emailing it to the provider",
		Example: `  ledgerctl --session mayo.json invoices statement 2
  ledgerctl --session mayo.json invoices statement 2 --email`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.sessionPath == "" {
				return errNoSession
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid invoice id %q", args[0])
			}
			if err := app.load(cmd); err != nil {
				return err
			}

			inv, ok := app.Store.InvoiceByID(id)
			if !ok {
				return fmt.Errorf("factura %d no encontrada", id)
			}
			provider, _ := app.Store.ProviderByID(inv.ProviderID)

			if dir == "" {
				dir = app.Config.PDFStoragePath
			}
			path, err := infra.GenerateStatementPDF(infra.StatementInput{
				CompanyName: app.Config.CompanyName,
				Invoice:     inv,
				Provider:    provider,
				IssuedAt:    app.Now(),
			}, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Estado de cuenta generado: %s\n", path)

			if !send {
				return nil
			}
			if app.Mailer == nil || !app.Mailer.Configured() {
				return errors.New("SMTP is not configured (set SMTP_HOST)")
			}
			subject := fmt.Sprintf("%s - estado de cuenta factura %d", app.Config.CompanyName, inv.ID)
			body := fmt.Sprintf("Estimado/a %s:\n\nAdjuntamos el estado de cuenta de la factura %d. Saldo pendiente: %s.\n\nSaludos,\n%s\n",
				orDash(provider.ContactName), inv.ID, money(inv.Balance), app.Config.CompanyName)
			if err := app.Mailer.SendStatement(provider.Email, subject, body, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enviado a %s\n", provider.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default PDF_STORAGE_PATH)")
	cmd.Flags().BoolVar(&send, "email", false, "Email the statement to the provider")
	return cmd
}
