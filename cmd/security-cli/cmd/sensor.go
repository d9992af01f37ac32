package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oshokin/home-security/internal/domain/security"
	pb "github.com/oshokin/home-security/internal/pb/v1"
	"github.com/oshokin/home-security/internal/service/client"
	"github.com/oshokin/home-security/internal/service/common"
)

//nolint:gochecknoglobals // Flag storage.
var (
	// sensorType is the category of a new or updated sensor.
	sensorType string
	// sensorName is the new name given by sensor update.
	sensorName string
)

//nolint:gochecknoglobals // Cobra commands are package level by convention.
var (
	sensorCmd = &cobra.Command{
		Use:   "sensor",
		Short: "Manage sensors.",
	}

	sensorListCmd = &cobra.Command{
		Use:   "list",
		Short: "List sensors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(func(ctx context.Context, c *common.Client) error {
				sensors, err := c.ListSensors(ctx)
				if err != nil {
					return err
				}

				return client.PrintSensors(cmd.OutOrStdout(), sensors)
			})
		},
	}

	sensorAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new inactive sensor.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(func(ctx context.Context, c *common.Client) error {
				sensor, err := c.AddSensor(ctx, args[0], sensorType)
				if err != nil {
					return err
				}

				return client.PrintSensors(cmd.OutOrStdout(), []*pb.Sensor{sensor})
			})
		},
	}

	sensorRemoveCmd = &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a sensor.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(func(ctx context.Context, c *common.Client) error {
				if err := c.RemoveSensor(ctx, args[0]); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Sensor %s removed.\n", args[0])

				return err
			})
		},
	}

	sensorUpdateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a sensor or change its type.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(func(ctx context.Context, c *common.Client) error {
				sensor, err := findSensor(ctx, c, args[0])
				if err != nil {
					return err
				}

				if cmd.Flags().Changed("name") {
					sensor.Name = sensorName
				}

				if cmd.Flags().Changed("type") {
					sensor.Type = sensorType
				}

				updated, err := c.UpdateSensor(ctx, sensor)
				if err != nil {
					return err
				}

				return client.PrintSensors(cmd.OutOrStdout(), []*pb.Sensor{updated})
			})
		},
	}

	sensorActivateCmd = &cobra.Command{
		Use:   "activate <id>",
		Short: "Report a sensor as triggered.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeActivation(cmd, args[0], true)
		},
	}

	sensorDeactivateCmd = &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Report a sensor as calm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeActivation(cmd, args[0], false)
		},
	}
)

// errSensorNotFound is returned when update addresses an unknown sensor.
var errSensorNotFound = errors.New("sensor not found")

// findSensor looks a sensor up by ID in the server listing.
func findSensor(ctx context.Context, c *common.Client, id string) (*pb.Sensor, error) {
	sensors, err := c.ListSensors(ctx)
	if err != nil {
		return nil, err
	}

	for _, sensor := range sensors {
		if strings.EqualFold(sensor.GetId(), id) {
			return sensor, nil
		}
	}

	return nil, fmt.Errorf("sensor %s: %w", id, errSensorNotFound)
}

// changeActivation sends a sensor event and prints the resulting status.
func changeActivation(cmd *cobra.Command, id string, active bool) error {
	return runSession(func(ctx context.Context, c *common.Client) error {
		state, err := c.ChangeSensorActivation(ctx, id, active)
		if err != nil {
			return err
		}

		return client.PrintStatus(cmd.OutOrStdout(), state)
	})
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	types := make([]string, 0, len(security.SensorTypes()))
	for _, t := range security.SensorTypes() {
		types = append(types, strings.ToLower(t.String()))
	}

	typeUsage := "sensor type: " + strings.Join(types, ", ")

	sensorAddCmd.Flags().StringVarP(&sensorType, "type", "t", "door", typeUsage)
	sensorUpdateCmd.Flags().StringVarP(&sensorType, "type", "t", "", typeUsage)
	sensorUpdateCmd.Flags().StringVarP(&sensorName, "name", "n", "", "new sensor name")

	sensorCmd.AddCommand(
		sensorListCmd,
		sensorAddCmd,
		sensorRemoveCmd,
		sensorUpdateCmd,
		sensorActivateCmd,
		sensorDeactivateCmd,
	)
}
