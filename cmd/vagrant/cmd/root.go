// Package cmd implements the CLI commands for vagrant.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lseinc/vagrant/internal/config"
	"github.com/lseinc/vagrant/internal/observability"
	"github.com/lseinc/vagrant/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "vagrant",
	Short:   "Workload orchestration through composed plugins",
	Version: version.Short(),
	Long: `vagrant composes user-supplied plugins into command pipelines executed
against a persistent state service. A basis scope owns the plugin
registries and loaded projects; tasks dispatch through command plugins
with middleware pipelines handling locking and recovery.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/vagrant, $HOME/.vagrant)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Bind flags to viper
	mustBindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// mustBindPFlag binds a viper key to a pflag and panics on failure, which
// only happens on programmer error.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

// initLogging configures the default slog logger from flags.
func initLogging() error {
	log := observability.NewLogger(config.LoggingConfig{
		Level:  viper.GetString("logging.level"),
		Format: viper.GetString("logging.format"),
	})
	slog.SetDefault(log)
	return nil
}
