package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/service/server"
	"github.com/oshokin/home-security/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// httpAddress overrides the HTTP API listen address.
	httpAddress string
	// storageDriver overrides the configured storage driver.
	storageDriver string
	// storagePath overrides the state file or database path.
	storagePath string
	// skipInstanceCheck allows several servers on one host.
	skipInstanceCheck bool

	// rootCmd represents the base command for running the security server.
	rootCmd = &cobra.Command{
		Use:   "security-server [listen-address]",
		Short: "Run the home security alarm engine.",
		Long: `Starts the alarm decision engine and serves it over gRPC.

The engine keeps the alarm and arming status of the premise and reacts to sensor
events and camera images. Only the port from server_addr config is used for
listening (e.g., :50051); a listen address argument overrides it.

When http_addr is configured the HTTP status API and Prometheus metrics are served
as well, and when mqtt.enabled is set sensor events are read from the MQTT broker.
State is kept by the configured storage driver (memory, file, sqlite, postgres, redis).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:        configPath,
				ListenAddress:     listenAddress,
				HTTPAddress:       httpAddress,
				StorageDriver:     storageDriver,
				StoragePath:       storagePath,
				SkipInstanceCheck: skipInstanceCheck,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the security-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&httpAddress, "http-addr", "", "HTTP API listen address, overrides http_addr")
	rootCmd.Flags().StringVarP(&storageDriver, "storage-driver", "d", "",
		"storage driver: "+strings.Join(config.Drivers(), ", "))
	rootCmd.Flags().StringVarP(&storagePath, "storage-path", "s", "", "state file or sqlite database path")
	rootCmd.Flags().BoolVar(&skipInstanceCheck, "skip-instance-check", false, "allow several servers on one host")

	err := rootCmd.Flags().MarkHidden("skip-instance-check")
	if err != nil {
		panic(err)
	}
}
