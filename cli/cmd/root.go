package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/securegate/sgadmin/cli/internal/metrics"
	"github.com/securegate/sgadmin/common/config"
	"github.com/securegate/sgadmin/common/logging"
)

var (
	cfgFile  string
	cfg      *config.CLIConfig
	logger   *logging.Logger
	recorder *metrics.Recorder
)

var rootCmd = &cobra.Command{
	Use:   "sgadmin",
	Short: "SecureGate admin CLI",
	Long: `sgadmin is the command-line admin client for SecureGate.

Log in, review users, roles and the audit trail, and assign or remove
roles from your terminal.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exports metrics when asked to.
func Execute() error {
	err := rootCmd.Execute()

	path, _ := rootCmd.PersistentFlags().GetString("metrics-textfile")
	if werr := recorder.WriteTextfile(path); werr != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not write metrics: %v\n", werr)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.sgadmin/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use (default: current profile)")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "write request metrics to this file on exit")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep the session in memory only")
}

func initConfig() {
	var err error
	cfg, err = config.LoadCLI(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultCLI()
	}

	level := cfg.Logging.Level
	if flagLevel, _ := rootCmd.PersistentFlags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	logger = logging.New(logging.ParseLevel(level), cfg.Logging.Format, rootCmd.ErrOrStderr())
	logging.SetDefault(logger)
	recorder = metrics.NewRecorder()
}
