package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/logger"
	pb "github.com/oshokin/home-security/internal/pb/v1"
	"github.com/oshokin/home-security/internal/service/common"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between status checks.
	PollInterval time.Duration
	// ExitOnAlarm stops the watcher with ErrAlarmRaised once the alarm fires.
	ExitOnAlarm bool
}

// DefaultPollInterval defines the polling interval used when none is given.
const DefaultPollInterval = 5 * time.Second

// alarmStatus is the wire name of the confirmed alarm status.
const alarmStatus = "ALARM"

// ErrAlarmRaised is returned when ExitOnAlarm is set and the alarm fires.
var ErrAlarmRaised = errors.New("alarm raised")

// Statuser is the client call the watcher polls.
type Statuser interface {
	GetStatus(ctx context.Context) (*pb.StatusResponse, error)
}

// Run polls the server status until the context is canceled.
// Loads configuration first to get timeout and server address.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "security-watcher")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Detect current system actor for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	// Establish gRPC connection with timeout from configuration.
	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Watching security status", "server_address", serverAddress)

	return Watch(ctx, client, opts)
}

// Watch runs the polling loop against client.
func Watch(ctx context.Context, client Statuser, opts *Options) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	// Setup polling ticker with fixed interval.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *pb.StatusResponse

	// Main polling loop until context cancellation or alarm.
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
			current, err := client.GetStatus(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				logger.ErrorKV(ctx, "Check status failed", "error", err)

				continue
			}

			report(ctx, last, current)
			last = current

			if opts.ExitOnAlarm && current.GetAlarmStatus() == alarmStatus {
				logger.Warn(ctx, "Alarm raised, exiting")

				return ErrAlarmRaised
			}
		}
	}
}

// report logs what changed between two polls.
func report(ctx context.Context, previous, current *pb.StatusResponse) {
	if previous == nil {
		logger.InfoKV(ctx, "Security status",
			"alarm_status", current.GetAlarmStatus(),
			"arming_status", current.GetArmingStatus(),
			"sensors", len(current.GetSensors()),
			"any_sensor_active", current.GetAnySensorActive(),
		)

		return
	}

	if previous.GetArmingStatus() != current.GetArmingStatus() {
		logger.InfoKV(ctx, "Arming status changed",
			"from", previous.GetArmingStatus(),
			"to", current.GetArmingStatus(),
		)
	}

	if previous.GetAlarmStatus() != current.GetAlarmStatus() {
		logger.InfoKV(ctx, "Alarm status changed",
			"from", previous.GetAlarmStatus(),
			"to", current.GetAlarmStatus(),
		)
	}
}
