package cmd

import (
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show users, roles and recent activity",
	Long:  "Load the admin dashboard: every user with their roles, the roles that can be assigned, and the five most recent audit entries.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		view := newDashboardView(a)
		if err := a.reconciler(view).Open(cmd.Context()); err != nil {
			return err
		}
		return view.Flush()
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
