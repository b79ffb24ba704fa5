package cli

import (
	"context"
	"fmt"

	"supplierledger/internal/ledger"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newProvidersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "providers",
		Aliases: []string{"proveedores", "p"},
		Short:   "List, inspect and edit providers",
	}
	cmd.AddCommand(
		newProvidersListCommand(app),
		newProvidersShowCommand(app),
		newProvidersSearchCommand(app),
		newProvidersCreateCommand(app),
		newProvidersUpdateCommand(app),
		newProvidersToggleCommand(app),
		newLookupCommand(app, "cities", "List the distinct provider cities", Directory.Cities),
		newLookupCommand(app, "countries", "List the distinct provider countries", Directory.Countries),
	)
	return cmd
}

func newProvidersListCommand(app *App) *cobra.Command {
	var search, status, city string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List providers, newest first",
		Example: `  ledgerctl providers list
  ledgerctl providers list --status active --city Rosario
  ledgerctl providers list --search acme -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := parseStatus(status)
			if err != nil {
				return err
			}
			if err := app.load(cmd); err != nil {
				return err
			}
			app.Store.SetSearch(search)
			app.Store.SetFilters(sf, city)

			list := app.Store.FilteredProviders()
			if app.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return renderProviders(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name, email, city or contact (case-insensitive)")
	cmd.Flags().StringVar(&status, "status", "all", "Filter by status: all | active | inactive")
	cmd.Flags().StringVar(&city, "city", "", "Only providers in this exact city")
	return cmd
}

func parseStatus(s string) (ledger.StatusFilter, error) {
	switch s {
	case "", "all":
		return ledger.StatusAll, nil
	case "active":
		return ledger.StatusActive, nil
	case "inactive":
		return ledger.StatusInactive, nil
	default:
		return "", fmt.Errorf("unknown status %q (use all, active or inactive)", s)
	}
}

func newProvidersShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a provider and its session invoices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			p, ok := app.Store.ProviderByKey(args[0])
			if !ok {
				return fmt.Errorf("proveedor %q no encontrado", args[0])
			}
			invoices := app.Store.InvoicesByProvider(p.ID)
			if app.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), struct {
					Provider ledger.Provider  `json:"provider"`
					Invoices []ledger.Invoice `json:"invoices"`
				}{p, invoices})
			}
			return renderProvider(cmd.OutOrStdout(), p, invoices)
		},
	}
}

func newProvidersSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search providers on the server (name, document, email, city, contact)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.API == nil {
				return errNoAPI
			}
			list, err := app.API.SearchProviders(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return renderProviders(cmd.OutOrStdout(), list)
		},
	}
}

// providerFlags binds one flag per editable provider field.
type providerFlags struct {
	in          ledger.ProviderInput
	paymentDays int
}

func (f *providerFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Document, "document", "", "Tax or national id")
	fs.StringVar(&f.in.Name, "name", "", "Display name")
	fs.StringVar(&f.in.BusinessName, "business-name", "", "Legal business name")
	fs.StringVar(&f.in.ContactName, "contact", "", "Contact person")
	fs.StringVar(&f.in.Email, "email", "", "Contact email")
	fs.StringVar(&f.in.Phone, "phone", "", "Phone number")
	fs.StringVar(&f.in.Mobile, "mobile", "", "Mobile number")
	fs.StringVar(&f.in.Address, "address", "", "Street address")
	fs.StringVar(&f.in.City, "city", "", "City")
	fs.StringVar(&f.in.Country, "country", "", "Country")
	fs.StringVar(&f.in.PaymentTerms, "payment-terms", "", "Payment terms, e.g. \"30 dias fecha factura\"")
	fs.IntVar(&f.paymentDays, "payment-days", 0, "Payment days (0-365)")
}

// apply copies the flags the user actually set onto base.
func (f *providerFlags) apply(fs *pflag.FlagSet, base ledger.ProviderInput) ledger.ProviderInput {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("document", &base.Document, f.in.Document)
	set("name", &base.Name, f.in.Name)
	set("business-name", &base.BusinessName, f.in.BusinessName)
	set("contact", &base.ContactName, f.in.ContactName)
	set("email", &base.Email, f.in.Email)
	set("phone", &base.Phone, f.in.Phone)
	set("mobile", &base.Mobile, f.in.Mobile)
	set("address", &base.Address, f.in.Address)
	set("city", &base.City, f.in.City)
	set("country", &base.Country, f.in.Country)
	set("payment-terms", &base.PaymentTerms, f.in.PaymentTerms)
	if fs.Changed("payment-days") {
		days := f.paymentDays
		base.PaymentDays = &days
	}
	return base
}

func newProvidersCreateCommand(app *App) *cobra.Command {
	var flags providerFlags
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a provider",
		Example: `  ledgerctl providers create --document 30-71234567-8 --name "Acme SA" --email ventas@acme.com --city Rosario`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.apply(cmd.Flags(), ledger.ProviderInput{})
			r := app.Store.AddProvider(cmd.Context(), in)
			if !r.Success {
				return resultError(cmd.ErrOrStderr(), r)
			}
			return printProvider(cmd, app, r.Data, "Proveedor creado")
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newProvidersUpdateCommand(app *App) *cobra.Command {
	var flags providerFlags
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update the given fields of a provider",
		Example: `  ledgerctl providers update 12 --email compras@acme.com --payment-days 45`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			current, ok := app.Store.ProviderByKey(args[0])
			if !ok {
				return fmt.Errorf("proveedor %q no encontrado", args[0])
			}
			in := flags.apply(cmd.Flags(), current.Input())
			r := app.Store.UpdateProvider(cmd.Context(), current.ID, in)
			if !r.Success {
				return resultError(cmd.ErrOrStderr(), r)
			}
			return printProvider(cmd, app, r.Data, "Proveedor actualizado")
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newProvidersToggleCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Deactivate an active provider or reactivate an inactive one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			p, ok := app.Store.ProviderByKey(args[0])
			if !ok {
				return fmt.Errorf("proveedor %q no encontrado", args[0])
			}
			r := app.Store.ToggleProviderStatus(cmd.Context(), p.ID)
			if !r.Success {
				return resultError(cmd.ErrOrStderr(), r)
			}
			msg := "Proveedor desactivado"
			if r.Data.IsActive {
				msg = "Proveedor activado"
			}
			return printProvider(cmd, app, r.Data, msg)
		},
	}
}

func printProvider(cmd *cobra.Command, app *App, p ledger.Provider, msg string) error {
	if app.jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (id %d, %s)\n", msg, p.Name, p.ID, activeLabel(p.IsActive))
	return nil
}

// fetch is a method expression so app.API is read when the command runs.
func newLookupCommand(app *App, use, short string, fetch func(Directory, context.Context) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.API == nil {
				return errNoAPI
			}
			values, err := fetch(app.API, cmd.Context())
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), values)
			}
			return renderStrings(cmd.OutOrStdout(), values)
		},
	}
}
