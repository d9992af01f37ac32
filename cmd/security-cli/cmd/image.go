package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/api/rest"
	"github.com/oshokin/home-security/internal/service/client"
	"github.com/oshokin/home-security/internal/service/common"
)

//nolint:gochecknoglobals // Cobra commands are package level by convention.
var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Submit a camera frame for cat detection.",
	Long:  "Submit a PNG, JPEG or GIF camera frame. A cat while armed home raises the alarm, a cat-free frame with no active sensor clears it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("stat image: %w", err)
		}

		if info.Size() > rest.MaxImageSize {
			return fmt.Errorf("image is %d bytes, at most %d are accepted", info.Size(), rest.MaxImageSize)
		}

		frame, err := os.ReadFile(filepath.Clean(args[0]))
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		return runSession(func(ctx context.Context, c *common.Client) error {
			state, err := c.ProcessImage(ctx, frame)
			if err != nil {
				return err
			}

			return client.PrintStatus(cmd.OutOrStdout(), state)
		})
	},
}
