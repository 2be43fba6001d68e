package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/securegate/sgadmin/cli/internal/controller"
	"github.com/securegate/sgadmin/cli/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to SecureGate",
	Long:  "Authenticate with SecureGate and save the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.loginController().Login(cmd.Context(), username, password)
		if errors.Is(err, controller.ErrInvalidCredentials) {
			return fmt.Errorf("invalid username or password")
		}
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		name := res.Username
		if name == "" {
			name = username
		}
		a.printer.Success("Logged in as %s", name)
		a.printer.Info("Profile '%s' now talks to %s", a.profile, a.baseURL)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from SecureGate",
	Long:  "Remove the stored session token. With --forget the profile itself is removed from the config file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		forget, _ := cmd.Flags().GetBool("forget")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.loginController().Logout(cmd.Context()); err != nil {
			return err
		}
		a.printer.Success("Logged out from profile '%s'", a.profile)

		if forget {
			if _, err := cfg.GetProfile(a.profile); err != nil {
				return nil
			}
			if err := cfg.RemoveProfile(a.profile); err != nil {
				return fmt.Errorf("failed to remove profile: %w", err)
			}
			a.printer.Info("Profile '%s' removed from %s", a.profile, cfg.Path())
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the current session",
	Long:  "Show what the stored session token says about its holder. The token is decoded locally and not checked with the server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(); err != nil {
			return err
		}
		token, _ := a.store.Token()
		id, err := session.Describe(token)
		if err != nil {
			return err
		}

		if a.jsonOutput() {
			return a.printer.JSON(map[string]interface{}{
				"profile":  a.profile,
				"base_url": a.baseURL,
				"identity": id,
			})
		}

		a.printer.Info("Profile:  %s", a.profile)
		a.printer.Info("Base URL: %s", a.baseURL)
		a.printer.Info("User ID:  %s", id.Subject)
		if id.ExpiresAt != nil {
			a.printer.Info("Expires:  %s", id.ExpiresAt.Format(time.RFC3339))
			if id.Expired(time.Now()) {
				a.printer.Warn("Session expired, run 'sgadmin login' again")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password")
	loginCmd.Flags().String("base-url", "", "SecureGate URL (default from config/env)")

	logoutCmd.Flags().Bool("forget", false, "also remove the profile from the config file")
}
