package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/service/client"
	"github.com/oshokin/home-security/internal/service/common"
)

//nolint:gochecknoglobals // Cobra commands are package level by convention.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show alarm status, arming status and sensors.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSession(func(ctx context.Context, c *common.Client) error {
			state, err := c.GetStatus(ctx)
			if err != nil {
				return err
			}

			return client.PrintStatus(cmd.OutOrStdout(), state)
		})
	},
}
