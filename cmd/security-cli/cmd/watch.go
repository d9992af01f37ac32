package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/service/watcher"
)

//nolint:gochecknoglobals // Flag storage.
var (
	// pollInterval is the delay between status checks.
	pollInterval time.Duration
	// exitOnAlarm stops watching with a non-zero status once the alarm fires.
	exitOnAlarm bool
)

//nolint:gochecknoglobals // Cobra commands are package level by convention.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the server and log status changes.",
	Long: `Continuously polls the server and logs every alarm or arming status change.

With --exit-on-alarm the command exits with a non-zero status as soon as the alarm
is confirmed, which lets scripts react to it.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &watcher.Options{
			ConfigPath:    configPath,
			ServerAddress: serverAddress,
			PollInterval:  pollInterval,
			ExitOnAlarm:   exitOnAlarm,
		}

		return watcher.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	watchCmd.Flags().DurationVarP(&pollInterval, "interval", "i", watcher.DefaultPollInterval, "delay between status checks")
	watchCmd.Flags().BoolVar(&exitOnAlarm, "exit-on-alarm", false, "exit with an error once the alarm fires")
}
