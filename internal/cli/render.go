package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"supplierledger/internal/ledger"

	"github.com/shopspring/decimal"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func activeLabel(active bool) string {
	if active {
		return "activo"
	}
	return "inactivo"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderProviders(w io.Writer, list []ledger.Provider) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNOMBRE\tDOCUMENTO\tCIUDAD\tCONTACTO\tEMAIL\tESTADO")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Document, orDash(p.City), orDash(p.ContactName), orDash(p.Email), activeLabel(p.IsActive))
	}
	return tw.Flush()
}

func renderProvider(w io.Writer, p ledger.Provider, invoices []ledger.Invoice) error {
	tw := newTable(w)
	days := "-"
	if p.PaymentDays != nil {
		days = strconv.Itoa(*p.PaymentDays)
	}
	rows := [][2]string{
		{"ID", strconv.FormatUint(uint64(p.ID), 10)},
		{"Nombre", p.Name},
		{"Documento", p.Document},
		{"Razon social", orDash(p.BusinessName)},
		{"Contacto", orDash(p.ContactName)},
		{"Email", orDash(p.Email)},
		{"Telefono", orDash(p.Phone)},
		{"Celular", orDash(p.Mobile)},
		{"Direccion", orDash(p.Address)},
		{"Ciudad", orDash(p.City)},
		{"Pais", orDash(p.Country)},
		{"Condicion de pago", orDash(p.PaymentTerms)},
		{"Dias de pago", days},
		{"Estado", activeLabel(p.IsActive)},
		{"Alta", p.CreatedAt.Format("02/01/2006")},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(invoices) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return renderInvoices(w, invoices)
}

func renderInvoices(w io.Writer, list []ledger.Invoice) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPROVEEDOR\tFECHA\tTOTAL\tPAGADO\tSALDO\tESTADO\tPAGOS")
	for _, inv := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			inv.ID, inv.ProviderName, inv.Date.Format("02/01/2006"),
			money(inv.TotalCost), money(inv.PaidAmount), money(inv.Balance), inv.Status, len(inv.Payments))
	}
	return tw.Flush()
}

func renderStats(w io.Writer, st ledger.Stats) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Proveedores:\t%d (activos %d, inactivos %d)\n", st.TotalProviders, st.ActiveProviders, st.InactiveProviders)
	fmt.Fprintf(tw, "Facturas:\t%d (pendientes %d, pagadas %d)\n", st.TotalInvoices, st.PendingInvoices, st.PaidInvoices)
	fmt.Fprintf(tw, "Total facturado:\t%s\n", money(st.TotalInvoiceAmount))
	fmt.Fprintf(tw, "Total pagado:\t%s\n", money(st.TotalPaid))
	fmt.Fprintf(tw, "Deuda total:\t%s\n", money(st.TotalDebt))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(st.TopProviders) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "#\tPROVEEDOR\tFACTURAS\tTOTAL\tPAGADO\tSALDO")
	for i, tp := range st.TopProviders {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
			i+1, tp.Name, tp.InvoiceCount, money(tp.TotalAmount), money(tp.TotalPaid), money(tp.Balance))
	}
	return tw.Flush()
}

func renderStrings(w io.Writer, values []string) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

// resultError prints a failed result's field messages and returns it as an error.
func resultError[T any](w io.Writer, r ledger.Result[T]) error {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, r.Fields[k])
	}
	if r.Kind == ledger.KindValidation && len(r.Fields) > 0 {
		return errors.New("datos invalidos")
	}
	return errors.New(r.Error)
}
