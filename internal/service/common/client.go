//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/logger"
	pb "github.com/oshokin/home-security/internal/pb/v1"
)

const (
	// defaultRetries is how many times read-only calls are retried when the server is unavailable.
	defaultRetries uint64 = 3
	// defaultRetryInterval is the first pause between retries.
	defaultRetryInterval = 200 * time.Millisecond
)

// Client wraps the gRPC SecurityService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the security server.
	conn *grpc.ClientConn
	// api is the SecurityService client interface.
	api pb.SecurityServiceClient
	// actor is attached to every request when set.
	actor *Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// retries is the retry budget of read-only calls.
	retries uint64
	// retryInterval is the first pause between retries.
	retryInterval time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor tags every request with the actor.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// WithRetries sets how many times read-only calls are retried while the server is unavailable.
func WithRetries(retries uint64, interval time.Duration) Option {
	return func(c *Client) {
		c.retries = retries

		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errSensorRequired is returned when a nil sensor is passed to UpdateSensor.
	errSensorRequired = errors.New("sensor must be provided")
	// errImageRequired is returned when ProcessImage gets no bytes.
	errImageRequired = errors.New("image must be provided")
)

// Dial establishes a gRPC connection to the security server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial security server: %w", err)
	}

	client := &Client{
		conn:          conn,
		api:           pb.NewSecurityServiceClient(conn),
		callTimeout:   config.DefaultTimeout,
		retries:       defaultRetries,
		retryInterval: defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetStatus retrieves the alarm status, arming status and sensors.
func (c *Client) GetStatus(ctx context.Context) (*pb.StatusResponse, error) {
	var response *pb.StatusResponse

	err := c.retry(ctx, "get status", func(ctx context.Context) error {
		var err error

		response, err = c.api.GetStatus(ctx, new(pb.GetStatusRequest))

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return response, nil
}

// ListSensors retrieves every sensor.
func (c *Client) ListSensors(ctx context.Context) ([]*pb.Sensor, error) {
	var response *pb.ListSensorsResponse

	err := c.retry(ctx, "list sensors", func(ctx context.Context) error {
		var err error

		response, err = c.api.ListSensors(ctx, new(pb.ListSensorsRequest))

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}

	return response.GetSensors(), nil
}

// SetArmingStatus changes the arming status, e.g. "ARMED_HOME" or "disarmed".
func (c *Client) SetArmingStatus(ctx context.Context, arming string) (*pb.StatusResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.SetArmingStatus(callCtx, &pb.SetArmingStatusRequest{ArmingStatus: arming})
	if err != nil {
		return nil, fmt.Errorf("set arming status: %w", err)
	}

	return response, nil
}

// AddSensor registers a new sensor and returns it with its assigned ID.
func (c *Client) AddSensor(ctx context.Context, name, sensorType string) (*pb.Sensor, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.AddSensor(callCtx, &pb.AddSensorRequest{Name: name, Type: sensorType})
	if err != nil {
		return nil, fmt.Errorf("add sensor: %w", err)
	}

	return response.GetSensor(), nil
}

// RemoveSensor unregisters a sensor by ID.
func (c *Client) RemoveSensor(ctx context.Context, id string) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.RemoveSensor(callCtx, &pb.RemoveSensorRequest{Id: id}); err != nil {
		return fmt.Errorf("remove sensor: %w", err)
	}

	return nil
}

// UpdateSensor stores a sensor as-is.
func (c *Client) UpdateSensor(ctx context.Context, sensor *pb.Sensor) (*pb.Sensor, error) {
	if sensor == nil {
		return nil, errSensorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.UpdateSensor(callCtx, &pb.UpdateSensorRequest{Sensor: sensor})
	if err != nil {
		return nil, fmt.Errorf("update sensor: %w", err)
	}

	return response.GetSensor(), nil
}

// ChangeSensorActivation activates or deactivates a sensor by ID.
func (c *Client) ChangeSensorActivation(ctx context.Context, id string, active bool) (*pb.StatusResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &pb.ChangeSensorActivationRequest{
		Id:     id,
		Active: active,
	}

	response, err := c.api.ChangeSensorActivation(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("change sensor activation: %w", err)
	}

	return response, nil
}

// ProcessImage sends an encoded camera frame to the engine.
func (c *Client) ProcessImage(ctx context.Context, image []byte) (*pb.StatusResponse, error) {
	if len(image) == 0 {
		return nil, errImageRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.ProcessImage(callCtx, &pb.ProcessImageRequest{Image: image})
	if err != nil {
		return nil, fmt.Errorf("process image: %w", err)
	}

	return response, nil
}

// retry runs a read-only call, retrying while the server is unavailable.
func (c *Client) retry(ctx context.Context, action string, call func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval

	operation := func() error {
		callCtx, cancel := c.callContext(ctx)
		defer cancel()

		err := call(callCtx)
		if err != nil && status.Code(err) != codes.Unavailable {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.DebugKV(ctx, "Retrying call", "action", action, "error", err, "wait", wait)
	}

	return backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx),
		notify,
	)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, when
// set, travels in the request metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = withActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
