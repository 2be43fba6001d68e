package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long:  "Review SecureGate users",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long:  "Display every user with the roles they hold",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(); err != nil {
			return err
		}
		users, err := a.admin.GetUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if a.jsonOutput() {
			return a.printer.JSON(users)
		}

		a.printer.Info("Users (%d total):", len(users))
		renderUsers(a.printer, users)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)
}
