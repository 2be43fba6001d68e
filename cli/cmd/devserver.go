package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/securegate/sgadmin/cli/internal/devserver"
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run an in-memory SecureGate backend",
	Long: `Run a local SecureGate backend holding users, roles and the audit trail in
memory. It is seeded with admin/admin123 (Admin) and user/user123 (User).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		secret, _ := cmd.Flags().GetString("secret")

		dcfg := devserver.DefaultConfig()
		if secret != "" {
			dcfg.Secret = secret
		}
		srv, err := devserver.New(dcfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := newPrinter(cmd)
		p.Info("SecureGate dev server on %s (Ctrl+C to stop)", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(devServerCmd)

	devServerCmd.Flags().String("addr", ":8001", "listen address")
	devServerCmd.Flags().String("secret", "", "token signing secret (default: supersecret)")
}
