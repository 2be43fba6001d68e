package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/securegate/sgadmin/cli/internal/controller"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit trail commands",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries",
	Long:  "List audit entries in the order the server returns them, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(); err != nil {
			return err
		}
		entries, err := a.audit.GetAuditLogs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list audit entries: %w", err)
		}
		if limit > 0 {
			entries = controller.Truncate(entries, limit)
		}

		if a.jsonOutput() {
			return a.printer.JSON(entries)
		}
		renderAuditLogs(a.printer, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().Int("limit", controller.RecentAuditEntries, "show at most this many entries (0 for all)")
}
