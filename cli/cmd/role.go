package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Role management commands",
	Long:  "List roles and assign them to or remove them from users",
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(); err != nil {
			return err
		}
		roles, err := a.admin.GetRoles(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}

		if a.jsonOutput() {
			return a.printer.JSON(roles)
		}
		renderRoles(a.printer, roles)
		return nil
	},
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign [user-id] [role-id]",
	Short: "Assign a role to a user",
	Long:  "Assign a role to a user, then reload and show the dashboard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoleChange(cmd, args, "assigned", func(ctx context.Context, a *app, view *dashboardView, userID, roleID int64) error {
			return a.reconciler(view).AssignRole(ctx, userID, roleID)
		})
	},
}

var roleRemoveCmd = &cobra.Command{
	Use:   "remove [user-id] [role-id]",
	Short: "Remove a role from a user",
	Long:  "Remove a role from a user, then reload and show the dashboard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoleChange(cmd, args, "removed", func(ctx context.Context, a *app, view *dashboardView, userID, roleID int64) error {
			return a.reconciler(view).RemoveRole(ctx, userID, roleID)
		})
	},
}

type roleChange func(ctx context.Context, a *app, view *dashboardView, userID, roleID int64) error

func runRoleChange(cmd *cobra.Command, args []string, verb string, change roleChange) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	roleID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid role id %q", args[1])
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireSession(); err != nil {
		return err
	}

	view := newDashboardView(a)
	if err := change(cmd.Context(), a, view, userID, roleID); err != nil {
		return fmt.Errorf("role change failed: %w", err)
	}
	if !a.jsonOutput() {
		a.printer.Success("Role %d %s for user %d", roleID, verb, userID)
	}
	return view.Flush()
}

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleListCmd)
	roleCmd.AddCommand(roleAssignCmd)
	roleCmd.AddCommand(roleRemoveCmd)
}
