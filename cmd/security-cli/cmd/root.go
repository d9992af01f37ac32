package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/service/client"
	"github.com/oshokin/home-security/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serverAddress overrides server_addr from the configuration file.
	serverAddress string

	// rootCmd represents the base command of the security CLI.
	rootCmd = &cobra.Command{
		Use:   "security-cli",
		Short: "Control the home security server.",
		Long: `Command line client of the home security server.

Arms and disarms the premise, manages sensors, submits camera images and watches
the alarm status. Server address and timeout are read from the configuration file
and the server address can be overridden with --server.`,
		SilenceUsage: true,
	}
)

// Execute runs the security-cli CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runSession connects to the server and runs session until it returns or a signal arrives.
func runSession(session client.Session) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	options := &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
	}

	return client.Run(ctx, options, session)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "a", "", "server address, overrides server_addr")

	rootCmd.AddCommand(statusCmd, armCmd, disarmCmd, sensorCmd, imageCmd, watchCmd)
}
