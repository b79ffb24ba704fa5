package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"supplierledger/internal/config"
	"supplierledger/internal/middleware"

	"github.com/spf13/cobra"
)

func main() {
	var username, rol string
	var hours int

	cmd := &cobra.Command{
		Use:   "gentoken",
		Short: "Mint a bearer token for ledgerctl (API_TOKEN) signed with JWT_SECRET",
		Example: `  gentoken --user compras1 --role compras
  export API_TOKEN=$(gentoken --role administrador --hours 1)`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			switch rol {
			case middleware.RoleAdmin, middleware.RoleBuyer, middleware.RoleViewer:
			default:
				return fmt.Errorf("unknown role %q (use %s, %s or %s)", rol, middleware.RoleAdmin, middleware.RoleBuyer, middleware.RoleViewer)
			}
			if hours <= 0 {
				hours = cfg.JWTExpirationHours
			}

			token, err := middleware.NewToken(cfg.JWTSecret, username, rol, time.Duration(hours)*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "ledgerctl", "Token subject")
	cmd.Flags().StringVar(&rol, "role", middleware.RoleBuyer, "Role: administrador | compras | consulta")
	cmd.Flags().IntVar(&hours, "hours", 0, "Lifetime in hours (default JWT_EXPIRATION_HOURS)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
