package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/domain/security"
	"github.com/oshokin/home-security/internal/service/client"
	"github.com/oshokin/home-security/internal/service/common"
)

// retryFor bounds how long arming changes are retried while the server is unreachable.
//
//nolint:gochecknoglobals // Flag storage.
var retryFor time.Duration

//nolint:gochecknoglobals // Cobra commands are package level by convention.
var (
	armCmd = &cobra.Command{
		Use:       "arm home|away",
		Short:     "Arm the premise.",
		Long:      "Arm the premise while people are inside (home) or while nobody is (away). Arming resets every sensor to inactive.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"home", "away"},
		RunE: func(cmd *cobra.Command, args []string) error {
			arming, err := security.ParseArmingStatus(args[0])
			if err != nil {
				return err
			}

			if !arming.IsArmed() {
				return fmt.Errorf("%q is not an armed mode, use disarm", args[0])
			}

			return pushArming(cmd, arming)
		},
	}

	disarmCmd = &cobra.Command{
		Use:   "disarm",
		Short: "Disarm the premise and clear the alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return pushArming(cmd, security.Disarmed)
		},
	}
)

// pushArming keeps sending the arming status until the server confirms it.
func pushArming(cmd *cobra.Command, arming security.ArmingStatus) error {
	return runSession(func(ctx context.Context, c *common.Client) error {
		if retryFor > 0 {
			var cancel context.CancelFunc

			ctx, cancel = context.WithTimeout(ctx, retryFor)
			defer cancel()
		}

		state, err := client.PushArming(ctx, c, arming.String(), 0)
		if err != nil {
			return err
		}

		return client.PrintStatus(cmd.OutOrStdout(), state)
	})
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, cmd := range []*cobra.Command{armCmd, disarmCmd} {
		cmd.Flags().DurationVar(&retryFor, "retry-for", 30*time.Second, "give up after this long, 0 retries forever")
	}
}
