package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofrs/uuid"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/home-security/internal/config"
	domain "github.com/oshokin/home-security/internal/domain/security"
	"github.com/oshokin/home-security/internal/logger"
	engine "github.com/oshokin/home-security/internal/service/security"
)

const (
	// qos is the delivery guarantee of every subscription and publication.
	qos byte = 1
	// disconnectQuiesce is how long Disconnect waits for in-flight work, in milliseconds.
	disconnectQuiesce = 250
	// publishTimeout bounds a single publication.
	publishTimeout = 5 * time.Second
)

var (
	// errUnexpectedTopic is returned for messages outside the sensor state topic layout.
	errUnexpectedTopic = errors.New("unexpected topic")
	// errMissingActive is returned when a payload has no active field.
	errMissingActive = errors.New(`field "active" is required`)
	// errPublishTimeout is returned when the broker does not acknowledge a publication in time.
	errPublishTimeout = errors.New("publish timed out")
)

// Service abstracts the engine operations the bridge depends on.
type Service interface {
	GetSensor(ctx context.Context, id uuid.UUID) (*domain.Sensor, error)
	ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error
}

// publisher is the part of paho.Client used to publish.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) paho.Token
}

// sensorState is the payload of a sensor state message.
type sensorState struct {
	// Active is the reported flag.
	Active *bool `json:"active"`
}

// Bridge subscribes to sensor state topics and publishes engine changes.
// It implements the engine Listener.
type Bridge struct {
	engine.NopListener

	// client is the broker connection.
	client paho.Client
	// publisher publishes status messages, normally client.
	publisher publisher
	// service is the alarm engine.
	service Service
	// prefix is prepended to every topic.
	prefix string
	// ctx carries the logger used by callbacks.
	ctx context.Context //nolint:containedctx // paho callbacks have no context of their own.
}

// NewBridge prepares a broker connection without connecting.
func NewBridge(ctx context.Context, cfg *config.MQTT, service Service) *Bridge {
	ctx = logger.WithName(ctx, "mqtt")

	b := &Bridge{
		service: service,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		ctx:     ctx,
	}

	setLibraryLoggers(ctx, cfg.LogLevel)

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID("home-security-" + uuid.Must(uuid.NewV4()).String())
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(false)
	opts.SetAutoReconnect(true)
	opts.SetTLSConfig(&tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // Opt-in for self-signed brokers.
	})
	opts.SetOnConnectHandler(b.onConnect)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.WarnKV(ctx, "MQTT connection lost", "error", err)
	})

	b.client = paho.NewClient(opts)
	b.publisher = b.client

	return b
}

// Run connects to the broker and blocks until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	token := b.client.Connect()
	if err := waitToken(ctx, token); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}

	<-ctx.Done()

	b.client.Disconnect(disconnectQuiesce)
	logger.Info(b.ctx, "MQTT bridge stopped")

	return nil
}

// SensorStateTopic returns the topic a sensor reports its state on.
func (b *Bridge) SensorStateTopic(id uuid.UUID) string {
	return b.prefix + "/sensors/" + id.String() + "/state"
}

// AlarmStatusChanged publishes the alarm status.
func (b *Bridge) AlarmStatusChanged(ctx context.Context, status domain.AlarmStatus) {
	b.publishRetained(ctx, b.prefix+"/alarm/status", status.String())
}

// ArmingStatusChanged publishes the arming status.
func (b *Bridge) ArmingStatusChanged(ctx context.Context, status domain.ArmingStatus) {
	b.publishRetained(ctx, b.prefix+"/arming/status", status.String())
}

// onConnect (re)subscribes after every connection.
func (b *Bridge) onConnect(client paho.Client) {
	topic := b.prefix + "/sensors/+/state"

	token := client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		if err := b.handleSensorState(b.ctx, msg.Topic(), msg.Payload()); err != nil {
			logger.WarnKV(b.ctx, "Sensor state message rejected", "topic", msg.Topic(), "error", err)
		}
	})

	if err := waitToken(b.ctx, token); err != nil {
		logger.ErrorKV(b.ctx, "Unable to subscribe", "topic", topic, "error", err)

		return
	}

	logger.InfoKV(b.ctx, "MQTT bridge subscribed", "topic", topic)
}

// handleSensorState applies one sensor state message.
func (b *Bridge) handleSensorState(ctx context.Context, topic string, payload []byte) error {
	id, err := b.parseSensorTopic(topic)
	if err != nil {
		return err
	}

	var state sensorState
	if err = json.Unmarshal(payload, &state); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	if state.Active == nil {
		return fmt.Errorf("decode payload: %w", errMissingActive)
	}

	sensor, err := b.service.GetSensor(ctx, id)
	if err != nil {
		return fmt.Errorf("get sensor: %w", err)
	}

	if err = b.service.ChangeSensorActivationStatus(ctx, sensor, *state.Active); err != nil {
		return fmt.Errorf("change sensor activation: %w", err)
	}

	return nil
}

// parseSensorTopic extracts the sensor ID from <prefix>/sensors/<id>/state.
func (b *Bridge) parseSensorTopic(topic string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(topic, b.prefix+"/sensors/")
	if !ok {
		return uuid.Nil, fmt.Errorf("%s: %w", topic, errUnexpectedTopic)
	}

	raw, ok := strings.CutSuffix(rest, "/state")
	if !ok || strings.Contains(raw, "/") {
		return uuid.Nil, fmt.Errorf("%s: %w", topic, errUnexpectedTopic)
	}

	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse sensor id %q: %w", raw, err)
	}

	return id, nil
}

// publishRetained publishes a retained message and logs failures.
func (b *Bridge) publishRetained(ctx context.Context, topic, payload string) {
	token := b.publisher.Publish(topic, qos, true, payload)
	if err := waitToken(ctx, token); err != nil {
		logger.WarnKV(ctx, "Unable to publish", "topic", topic, "error", err)
	}
}

// waitToken waits for a paho token, bounded by publishTimeout and ctx.
func waitToken(ctx context.Context, token paho.Token) error {
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return errPublishTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setLibraryLoggers routes paho output to the context logger, capped at level.
func setLibraryLoggers(ctx context.Context, level string) {
	lvl, ok := logger.ParseLogLevel(level)
	if !ok {
		lvl = zapcore.WarnLevel
	}

	capped := logger.WithLevel(lvl)

	paho.DEBUG = logger.NewPrintf(ctx, zapcore.DebugLevel, capped)
	paho.WARN = logger.NewPrintf(ctx, zapcore.WarnLevel, capped)
	paho.ERROR = logger.NewPrintf(ctx, zapcore.ErrorLevel, capped)
	paho.CRITICAL = logger.NewPrintf(ctx, zapcore.ErrorLevel, capped)
}
