package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/oshokin/home-security/internal/domain/security"
)

const (
	namespace = "home_security"
	subsystem = "engine"
)

// Collector tracks the engine state. It implements the engine Listener.
type Collector struct {
	// alarmStatus holds the numeric alarm status.
	alarmStatus prometheus.Gauge
	// armingStatus holds the numeric arming status.
	armingStatus prometheus.Gauge
	// catDetected is 1 when the last frame showed a cat.
	catDetected prometheus.Gauge
	// sensorActive is 1 per active sensor.
	sensorActive *prometheus.GaugeVec
	// alarmTransitions counts alarm status changes by target status.
	alarmTransitions *prometheus.CounterVec
	// images counts processed frames by verdict.
	images *prometheus.CounterVec

	// mu protects known.
	mu sync.Mutex
	// known holds the label sets currently exported by sensorActive.
	known map[string]prometheus.Labels
}

// New registers the collector metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		alarmStatus: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alarm_status",
			Help:      "Alarm status: 0 no alarm, 1 pending alarm, 2 alarm.",
		}),
		armingStatus: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "arming_status",
			Help:      "Arming status: 0 disarmed, 1 armed home, 2 armed away.",
		}),
		catDetected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cat_detected",
			Help:      "1 when the last processed image contained a cat.",
		}),
		sensorActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sensor_active",
			Help:      "1 when the sensor is active.",
		}, []string{"id", "name", "type"}),
		alarmTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alarm_transitions_total",
			Help:      "Alarm status changes by target status.",
		}, []string{"status"}),
		images: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "images_processed_total",
			Help:      "Processed camera frames by verdict.",
		}, []string{"cat"}),
		known: make(map[string]prometheus.Labels),
	}
}

// Init sets the gauges from a state read at startup.
func (c *Collector) Init(
	ctx context.Context,
	alarm domain.AlarmStatus,
	arming domain.ArmingStatus,
	sensors []*domain.Sensor,
) {
	c.alarmStatus.Set(float64(alarm))
	c.armingStatus.Set(float64(arming))
	c.SensorsChanged(ctx, sensors)
}

// AlarmStatusChanged records an alarm transition.
func (c *Collector) AlarmStatusChanged(_ context.Context, status domain.AlarmStatus) {
	c.alarmStatus.Set(float64(status))
	c.alarmTransitions.WithLabelValues(status.String()).Inc()
}

// ArmingStatusChanged records the arming status.
func (c *Collector) ArmingStatusChanged(_ context.Context, status domain.ArmingStatus) {
	c.armingStatus.Set(float64(status))
}

// CatDetected records an image verdict.
func (c *Collector) CatDetected(_ context.Context, detected bool) {
	if detected {
		c.catDetected.Set(1)
		c.images.WithLabelValues("true").Inc()

		return
	}

	c.catDetected.Set(0)
	c.images.WithLabelValues("false").Inc()
}

// SensorsChanged replaces the exported sensor gauges.
func (c *Collector) SensorsChanged(_ context.Context, sensors []*domain.Sensor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := make(map[string]prometheus.Labels, len(sensors))

	for _, sensor := range sensors {
		labels := prometheus.Labels{
			"id":   sensor.ID.String(),
			"name": sensor.Name,
			"type": sensor.Type.String(),
		}

		value := 0.0
		if sensor.Active {
			value = 1
		}

		c.sensorActive.With(labels).Set(value)
		current[labels["id"]] = labels
	}

	for id, labels := range c.known {
		if stale, ok := current[id]; !ok || stale["name"] != labels["name"] || stale["type"] != labels["type"] {
			c.sensorActive.Delete(labels)
		}
	}

	c.known = current
}
