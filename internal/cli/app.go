// Package cli is the ledgerctl presentation layer: a cobra command tree over
// one ledger.Store per invocation.
package cli

import (
	"context"
	"fmt"
	"time"

	"supplierledger/internal/config"
	"supplierledger/internal/ledger"
	"supplierledger/internal/logger"

	"github.com/spf13/cobra"
)

// Directory is the Backend API surface used by the commands: the store's
// collaborator plus the read-only lookups.
type Directory interface {
	ledger.ProviderAPI
	SearchProviders(ctx context.Context, q string) ([]ledger.Provider, error)
	Cities(ctx context.Context) ([]string, error)
	Countries(ctx context.Context) ([]string, error)
}

// StatementMailer sends a statement PDF to a provider.
type StatementMailer interface {
	Configured() bool
	SendStatement(to, subject, body, pdfPath string) error
}

// App carries the collaborators shared by every command.
type App struct {
	Config *config.Config
	API    Directory
	Store  *ledger.Store
	Mailer StatementMailer
	Now    func() time.Time

	output      string
	sessionPath string
}

// NewApp builds the store over api with the configured toggle reconciliation.
func NewApp(cfg *config.Config, api Directory, mailer StatementMailer) *App {
	return &App{
		Config: cfg,
		API:    api,
		Mailer: mailer,
		Now:    time.Now,
		Store: ledger.NewStore(api,
			ledger.WithReconcileOnToggle(cfg.ReconcileOnToggle),
			ledger.WithLogger(logger.WithComponent("ledger")),
		),
	}
}

// NewRootCommand returns the ledgerctl command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Supplier ledger client",
		Long: `ledgerctl manages providers through the Backend API and tracks the
invoices and payments of a working session.

Invoices and payments are not stored by the server. Describe them in a
session file (--session) and every command replays it into a fresh ledger
before running.

Configuration is read from the environment (or a .env file):
  API_BASE_URL         Backend API root, e.g. http://localhost:8000/v1
  API_TOKEN            bearer token (see gentoken)
  RECONCILE_ON_TOGGLE  re-read a provider after toggling its status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.validateOutput()
		},
	}

	root.PersistentFlags().StringVarP(&app.output, "output", "o", "table", "Output format: table | json")
	root.PersistentFlags().StringVar(&app.sessionPath, "session", "", "Session file with invoices and payments to replay")

	root.AddCommand(
		newProvidersCommand(app),
		newInvoicesCommand(app),
		newStatsCommand(app),
	)
	return root
}

// load fetches providers and, when a session file was given, replays it.
func (a *App) load(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := a.Store.FetchProviders(ctx); err != nil {
		return err
	}
	if a.sessionPath == "" {
		return nil
	}

	sess, err := LoadSession(a.sessionPath)
	if err != nil {
		return err
	}
	for _, issue := range Replay(a.Store, sess) {
		fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", issue)
	}
	return nil
}

func (a *App) jsonOutput() bool {
	return a.output == "json"
}

func (a *App) validateOutput() error {
	switch a.output {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use table or json)", a.output)
	}
}
