package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/securegate/sgadmin/cli/internal/client"
	"github.com/securegate/sgadmin/cli/internal/session"
	"github.com/securegate/sgadmin/cli/pkg/output"
)

// terminalNavigator turns view changes into hints, a terminal has no pages
// to switch between.
type terminalNavigator struct {
	printer *output.Printer
}

func (n *terminalNavigator) Navigate(view session.View) {
	switch view {
	case session.ViewLogin:
		n.printer.Warn("Not logged in. Run 'sgadmin login' to authenticate.")
	case session.ViewDashboard:
		n.printer.Info("Run 'sgadmin dashboard' to review users and roles.")
	}
}

// dashboardView renders the dashboard as tables, or collects it for a
// single JSON document.
type dashboardView struct {
	printer *output.Printer
	json    bool

	Users []client.User          `json:"users"`
	Roles []client.Role          `json:"roles"`
	Logs  []client.AuditLogEntry `json:"recent_activity"`
}

func newDashboardView(a *app) *dashboardView {
	return &dashboardView{printer: a.printer, json: a.jsonOutput()}
}

func (v *dashboardView) RenderUsers(users []client.User, roles []client.Role) {
	v.Users, v.Roles = users, roles
	if v.json {
		return
	}

	v.printer.Info("Users (%d total):", len(users))
	renderUsers(v.printer, users)
	fmt.Fprintln(v.printer.Out())
	v.printer.Info("Assignable roles: %s", roleChoices(roles))
	fmt.Fprintln(v.printer.Out())
}

func (v *dashboardView) RenderLogs(entries []client.AuditLogEntry) {
	v.Logs = entries
	if v.json {
		return
	}

	v.printer.Info("Recent activity:")
	renderAuditLogs(v.printer, entries)
}

// Flush prints the collected JSON document. It does nothing for tables.
func (v *dashboardView) Flush() error {
	if !v.json {
		return nil
	}
	return v.printer.JSON(v)
}

func renderUsers(p *output.Printer, users []client.User) {
	table := output.NewTable([]string{"ID", "USERNAME", "ROLES"})
	for _, u := range users {
		roles := strings.Join(u.Roles, ", ")
		if roles == "" {
			roles = "-"
		}
		table.AddRow([]string{strconv.FormatInt(u.ID, 10), u.Username, roles})
	}
	table.RenderTo(p.Out())
}

func renderRoles(p *output.Printer, roles []client.Role) {
	table := output.NewTable([]string{"ID", "NAME"})
	for _, r := range roles {
		table.AddRow([]string{strconv.FormatInt(r.ID, 10), r.Name})
	}
	table.RenderTo(p.Out())
}

func renderAuditLogs(p *output.Printer, entries []client.AuditLogEntry) {
	if len(entries) == 0 {
		p.Info("No activity recorded.")
		return
	}
	table := output.NewTable([]string{"USER", "ACTION", "STATUS", "TIMESTAMP"})
	for _, e := range entries {
		table.AddRow([]string{strconv.FormatInt(e.UserID, 10), e.Action, e.Status, e.Timestamp})
	}
	table.RenderTo(p.Out())
}

func roleChoices(roles []client.Role) string {
	if len(roles) == 0 {
		return "none"
	}
	choices := make([]string, 0, len(roles))
	for _, r := range roles {
		choices = append(choices, fmt.Sprintf("%d=%s", r.ID, r.Name))
	}
	return strings.Join(choices, " ")
}

func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}
