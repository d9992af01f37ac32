package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/logger"
	pb "github.com/oshokin/home-security/internal/pb/v1"
	"github.com/oshokin/home-security/internal/service/common"
)

// Options configures how the CLI reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// Session is a unit of CLI work run against a connected client.
type Session func(ctx context.Context, client *common.Client) error

// ArmingPusher is the client call PushArming repeats.
type ArmingPusher interface {
	SetArmingStatus(ctx context.Context, arming string) (*pb.StatusResponse, error)
}

// defaultPushInterval defines retry delay when pushing arming status to server.
const defaultPushInterval = 1 * time.Second

// Run connects to the server and runs the session.
func Run(ctx context.Context, opts *Options, session Session) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "security-cli")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	// Connect to security server with timeout from config.
	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	return session(ctx, client)
}

// PushArming sends the desired arming status until the server confirms it or ctx is done.
// Rejected requests are not retried.
func PushArming(
	ctx context.Context,
	client ArmingPusher,
	desired string,
	interval time.Duration,
) (*pb.StatusResponse, error) {
	if interval <= 0 {
		interval = defaultPushInterval
	}

	logger.InfoKV(ctx, "Pushing desired arming status", "desired_status", desired)

	// attempt tries once to change arming status, returns (response, completed, error).
	attempt := func() (*pb.StatusResponse, bool, error) {
		resp, err := client.SetArmingStatus(ctx, desired)
		if err != nil {
			if isPermanent(err) {
				return nil, false, err
			}

			// Log error but continue retrying for transient failures.
			logger.ErrorKV(ctx, "SetArmingStatus failed", "error", err)

			return nil, false, nil
		}

		return resp, true, nil
	}

	// Attempt immediately before starting retry loop.
	if resp, done, err := attempt(); err != nil || done {
		return resp, err
	}

	// Setup retry timer for subsequent attempts.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Retry loop until success or cancellation.
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if resp, done, err := attempt(); err != nil || done {
				return resp, err
			}
		}
	}
}

// isPermanent reports whether retrying err cannot help.
func isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}

	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.Unimplemented, codes.PermissionDenied:
		return true
	default:
		return false
	}
}
