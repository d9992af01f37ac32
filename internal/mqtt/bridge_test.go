package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/home-security/internal/domain/security"
	repo "github.com/oshokin/home-security/internal/repository/security"
	imagesvc "github.com/oshokin/home-security/internal/service/image"
	engine "github.com/oshokin/home-security/internal/service/security"
)

// doneToken is an already completed paho token.
type doneToken struct {
	// err is the completion error.
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}

// message is one recorded publication.
type message struct {
	topic    string
	retained bool
	payload  any
}

// recordingPublisher records publications.
type recordingPublisher struct {
	// mu protects messages.
	mu sync.Mutex
	// messages holds every publication.
	messages []message
}

// Publish records the message and completes immediately.
func (p *recordingPublisher) Publish(topic string, _ byte, retained bool, payload any) paho.Token {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, message{topic: topic, retained: retained, payload: payload})

	return doneToken{}
}

func newTestBridge(t *testing.T) (*Bridge, *engine.Service, *recordingPublisher) {
	t.Helper()

	svc, err := engine.New(repo.NewMemoryRepository(), imagesvc.NewSeededFakeService(1))
	require.NoError(t, err)

	pub := new(recordingPublisher)
	b := &Bridge{
		publisher: pub,
		service:   svc,
		prefix:    "home",
		ctx:       context.Background(),
	}

	svc.AddListener(b)

	return b, svc, pub
}

func TestParseSensorTopic(t *testing.T) {
	t.Parallel()

	b := &Bridge{prefix: "home"}
	id := uuid.Must(uuid.NewV4())

	got, err := b.parseSensorTopic(b.SensorStateTopic(id))
	require.NoError(t, err)
	require.Equal(t, id, got)

	for _, topic := range []string{
		"home/sensors/" + id.String(),
		"other/sensors/" + id.String() + "/state",
		"home/sensors/a/b/state",
		"home/sensors/not-a-uuid/state",
	} {
		_, err = b.parseSensorTopic(topic)
		require.Error(t, err, topic)
	}
}

func TestHandleSensorState(t *testing.T) {
	t.Parallel()

	b, svc, pub := newTestBridge(t)
	ctx := context.Background()

	sensor := domain.NewSensor("Garage door", domain.SensorDoor)
	require.NoError(t, svc.AddSensor(ctx, sensor))
	require.NoError(t, svc.SetArmingStatus(ctx, domain.ArmedAway))

	require.NoError(t, b.handleSensorState(ctx, b.SensorStateTopic(sensor.ID), []byte(`{"active":true}`)))

	alarm, err := svc.GetAlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.PendingAlarm, alarm)

	pub.mu.Lock()
	defer pub.mu.Unlock()

	require.Equal(t, []message{
		{topic: "home/arming/status", retained: true, payload: "ARMED_AWAY"},
		{topic: "home/alarm/status", retained: true, payload: "PENDING_ALARM"},
	}, pub.messages)
}

func TestHandleSensorState_Rejects(t *testing.T) {
	t.Parallel()

	b, svc, _ := newTestBridge(t)
	ctx := context.Background()

	sensor := domain.NewSensor("Hall", domain.SensorMotion)
	require.NoError(t, svc.AddSensor(ctx, sensor))

	topic := b.SensorStateTopic(sensor.ID)

	require.Error(t, b.handleSensorState(ctx, topic, []byte(`not json`)))
	require.ErrorIs(t, b.handleSensorState(ctx, topic, []byte(`{}`)), errMissingActive)
	require.ErrorIs(t,
		b.handleSensorState(ctx, b.SensorStateTopic(uuid.Must(uuid.NewV4())), []byte(`{"active":true}`)),
		engine.ErrSensorNotFound)
	require.ErrorIs(t, b.handleSensorState(ctx, "home/other", []byte(`{"active":true}`)), errUnexpectedTopic)
}
