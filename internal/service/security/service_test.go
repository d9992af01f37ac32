package security

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/home-security/internal/domain/security"
	repo "github.com/oshokin/home-security/internal/repository/security"
	imagesvc "github.com/oshokin/home-security/internal/service/image"
)

var (
	errTestWrite    = errors.New("test write error")
	errTestClassify = errors.New("test classify error")
)

// stubImages returns a fixed verdict and records the thresholds it was called with.
type stubImages struct {
	// cat is the verdict to return.
	cat bool
	// err is returned instead of a verdict when set.
	err error
	// mu protects thresholds.
	mu sync.Mutex
	// thresholds holds every threshold passed in.
	thresholds []float32
}

// ImageContainsCat returns the configured verdict.
func (s *stubImages) ImageContainsCat(_ context.Context, _ image.Image, threshold float32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.thresholds = append(s.thresholds, threshold)

	return s.cat, s.err
}

// failingRepository wraps a MemoryRepository and fails selected writes.
type failingRepository struct {
	*repo.MemoryRepository
	// failAlarm makes SetAlarmStatus fail.
	failAlarm bool
	// failArming makes SetArmingStatus fail.
	failArming bool
	// failUpdate makes UpdateSensor fail.
	failUpdate bool
}

// SetAlarmStatus fails when failAlarm is set.
func (r *failingRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if r.failAlarm {
		return errTestWrite
	}

	return r.MemoryRepository.SetAlarmStatus(ctx, status)
}

// SetArmingStatus fails when failArming is set.
func (r *failingRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	if r.failArming {
		return errTestWrite
	}

	return r.MemoryRepository.SetArmingStatus(ctx, status)
}

// UpdateSensor fails when failUpdate is set.
func (r *failingRepository) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	if r.failUpdate {
		return errTestWrite
	}

	return r.MemoryRepository.UpdateSensor(ctx, sensor)
}

// recordingListener records every notification.
type recordingListener struct {
	// mu protects the fields below.
	mu sync.Mutex
	// alarms holds alarm status notifications.
	alarms []domain.AlarmStatus
	// armings holds arming status notifications.
	armings []domain.ArmingStatus
	// cats holds image verdicts.
	cats []bool
	// sensorUpdates counts sensor notifications.
	sensorUpdates int
}

func (l *recordingListener) AlarmStatusChanged(_ context.Context, status domain.AlarmStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.alarms = append(l.alarms, status)
}

func (l *recordingListener) ArmingStatusChanged(_ context.Context, status domain.ArmingStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.armings = append(l.armings, status)
}

func (l *recordingListener) CatDetected(_ context.Context, detected bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cats = append(l.cats, detected)
}

func (l *recordingListener) SensorsChanged(context.Context, []*domain.Sensor) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sensorUpdates++
}

// fixture bundles an engine with its collaborators.
type fixture struct {
	svc    *Service
	repo   *repo.MemoryRepository
	images *stubImages
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		repo:   repo.NewMemoryRepository(),
		images: new(stubImages),
	}

	svc, err := New(f.repo, f.images, opts...)
	require.NoError(t, err)

	f.svc = svc

	return f
}

// seed stores the statuses and sensors directly, bypassing the rules.
func (f *fixture) seed(
	t *testing.T,
	alarm domain.AlarmStatus,
	arming domain.ArmingStatus,
	sensors ...*domain.Sensor,
) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, f.repo.SetAlarmStatus(ctx, alarm))
	require.NoError(t, f.repo.SetArmingStatus(ctx, arming))

	for _, s := range sensors {
		require.NoError(t, f.repo.AddSensor(ctx, s))
	}
}

func (f *fixture) alarm(t *testing.T) domain.AlarmStatus {
	t.Helper()

	status, err := f.svc.GetAlarmStatus(context.Background())
	require.NoError(t, err)

	return status
}

func activeSensor(name string, sensorType domain.SensorType) *domain.Sensor {
	s := domain.NewSensor(name, sensorType)
	s.Active = true

	return s
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := New(nil, new(stubImages))
	require.Error(t, err)

	_, err = New(repo.NewMemoryRepository(), nil)
	require.Error(t, err)

	svc, err := New(repo.NewMemoryRepository(), new(stubImages), WithConfidenceThreshold(0))
	require.NoError(t, err)
	require.InDelta(t, DefaultConfidenceThreshold, svc.ConfidenceThreshold(), 0)
}

func TestChangeSensorActivationStatus_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		arming      domain.ArmingStatus
		alarm       domain.AlarmStatus
		wasActive   bool
		active      bool
		otherActive bool
		wantAlarm   domain.AlarmStatus
	}{
		{"armed home activation raises pending", domain.ArmedHome, domain.NoAlarm, false, true, false, domain.PendingAlarm},
		{"armed away activation raises pending", domain.ArmedAway, domain.NoAlarm, false, true, false, domain.PendingAlarm},
		{"pending activation raises alarm", domain.ArmedAway, domain.PendingAlarm, false, true, false, domain.Alarm},
		{"alarm stays on activation", domain.ArmedHome, domain.Alarm, false, true, false, domain.Alarm},
		{"last deactivation clears pending", domain.ArmedHome, domain.PendingAlarm, true, false, false, domain.NoAlarm},
		{"deactivation keeps pending while another is active", domain.ArmedHome, domain.PendingAlarm, true, false, true, domain.PendingAlarm},
		{"alarm stays on deactivation", domain.ArmedAway, domain.Alarm, true, false, false, domain.Alarm},
		{"inactive deactivation keeps pending", domain.ArmedHome, domain.PendingAlarm, false, false, false, domain.PendingAlarm},
		{"active reactivation keeps pending", domain.ArmedHome, domain.PendingAlarm, true, true, false, domain.PendingAlarm},
		{"disarmed activation is ignored", domain.Disarmed, domain.NoAlarm, false, true, false, domain.NoAlarm},
	}

	for _, tt := range tests {
		for _, sensorType := range domain.SensorTypes() {
			t.Run(tt.name+"/"+sensorType.String(), func(t *testing.T) {
				t.Parallel()

				f := newFixture(t)
				ctx := context.Background()

				sensor := domain.NewSensor("Sensor", sensorType)
				sensor.Active = tt.wasActive

				seeded := []*domain.Sensor{sensor}
				if tt.otherActive {
					seeded = append(seeded, activeSensor("Other", domain.SensorMotion))
				}

				f.seed(t, tt.alarm, tt.arming, seeded...)

				require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, tt.active))
				require.Equal(t, tt.wantAlarm, f.alarm(t))
				require.Equal(t, tt.active, sensor.Active)

				stored, err := f.svc.GetSensor(ctx, sensor.ID)
				require.NoError(t, err)
				require.Equal(t, tt.active, stored.Active)
			})
		}
	}
}

func TestChangeSensorActivationStatus_StoredFlagWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	stored := activeSensor("Door", domain.SensorDoor)
	f.seed(t, domain.PendingAlarm, domain.ArmedHome, stored)

	// The caller holds a stale copy that says inactive.
	stale := stored.Clone()
	stale.Active = false

	require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, stale, true))
	require.Equal(t, domain.PendingAlarm, f.alarm(t))
}

func TestChangeSensorActivationStatus_UnknownSensorIsStored(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, domain.NoAlarm, domain.ArmedAway)

	sensor := domain.NewSensor("Hall", domain.SensorMotion)
	require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, true))
	require.Equal(t, domain.PendingAlarm, f.alarm(t))

	sensors, err := f.svc.GetSensors(ctx)
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	require.True(t, sensors[0].Active)
}

func TestChangeSensorActivationStatus_AlarmIsSticky(t *testing.T) {
	t.Parallel()

	for _, sensorType := range domain.SensorTypes() {
		t.Run(sensorType.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()

			a := domain.NewSensor("A", sensorType)
			b := domain.NewSensor("B", sensorType)
			f.seed(t, domain.Alarm, domain.ArmedAway, a, b)

			for _, step := range []struct {
				sensor *domain.Sensor
				active bool
			}{
				{a, true}, {b, true}, {a, false}, {b, false}, {a, false}, {b, true},
			} {
				require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, step.sensor, step.active))
				require.Equal(t, domain.Alarm, f.alarm(t))
			}
		})
	}
}

func TestChangeSensorActivationStatus_Idempotent(t *testing.T) {
	t.Parallel()

	for _, alarm := range []domain.AlarmStatus{domain.NoAlarm, domain.PendingAlarm, domain.Alarm} {
		for _, active := range []bool{false, true} {
			f := newFixture(t)

			sensor := domain.NewSensor("Window", domain.SensorWindow)
			sensor.Active = active
			f.seed(t, alarm, domain.ArmedHome, sensor)

			require.NoError(t, f.svc.ChangeSensorActivationStatus(context.Background(), sensor, sensor.Active))
			require.Equal(t, alarm, f.alarm(t))
		}
	}
}

func TestChangeSensorActivationStatus_NilSensor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	err := f.svc.ChangeSensorActivationStatus(context.Background(), nil, true)
	require.ErrorIs(t, err, ErrSensorRequired)
}

// TestInvalidSensorsAreRejected checks sensors that could not be read back never reach storage.
func TestInvalidSensorsAreRejected(t *testing.T) {
	t.Parallel()

	invalid := []*domain.Sensor{
		{Name: "front", Type: domain.SensorDoor},
		{Name: "back", Type: domain.SensorWindow},
		{ID: domain.NewSensor("", domain.SensorDoor).ID, Name: "typeless"},
	}

	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, domain.NoAlarm, domain.ArmedAway)

	for _, sensor := range invalid {
		require.ErrorIs(t, f.svc.AddSensor(ctx, sensor), ErrInvalidSensor, sensor.Name)
		require.ErrorIs(t, f.svc.UpdateSensor(ctx, sensor), ErrInvalidSensor, sensor.Name)
		require.ErrorIs(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, true), ErrInvalidSensor, sensor.Name)
	}

	sensors, err := f.svc.GetSensors(ctx)
	require.NoError(t, err)
	require.Empty(t, sensors)
	require.Equal(t, domain.NoAlarm, f.alarm(t))
}

func TestChangeSensorActivationStatus_RollsBackOnAlarmWriteFailure(t *testing.T) {
	t.Parallel()

	failing := &failingRepository{MemoryRepository: repo.NewMemoryRepository()}
	ctx := context.Background()

	sensor := domain.NewSensor("Door", domain.SensorDoor)
	require.NoError(t, failing.AddSensor(ctx, sensor))
	require.NoError(t, failing.SetArmingStatus(ctx, domain.ArmedHome))

	svc, err := New(failing, new(stubImages))
	require.NoError(t, err)

	failing.failAlarm = true

	err = svc.ChangeSensorActivationStatus(ctx, sensor, true)
	require.ErrorIs(t, err, errTestWrite)
	require.False(t, sensor.Active)

	sensors, err := svc.GetSensors(ctx)
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	require.False(t, sensors[0].Active)

	alarm, err := svc.GetAlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.NoAlarm, alarm)
}

func TestChangeSensorActivationStatus_RollbackRemovesNewSensor(t *testing.T) {
	t.Parallel()

	failing := &failingRepository{MemoryRepository: repo.NewMemoryRepository()}
	ctx := context.Background()

	require.NoError(t, failing.SetArmingStatus(ctx, domain.ArmedAway))

	svc, err := New(failing, new(stubImages))
	require.NoError(t, err)

	failing.failAlarm = true

	err = svc.ChangeSensorActivationStatus(ctx, domain.NewSensor("New", domain.SensorMotion), true)
	require.ErrorIs(t, err, errTestWrite)

	sensors, err := svc.GetSensors(ctx)
	require.NoError(t, err)
	require.Empty(t, sensors)
}

func TestSetArmingStatus_DisarmClearsAlarm(t *testing.T) {
	t.Parallel()

	for _, alarm := range []domain.AlarmStatus{domain.NoAlarm, domain.PendingAlarm, domain.Alarm} {
		for _, arming := range []domain.ArmingStatus{domain.Disarmed, domain.ArmedHome, domain.ArmedAway} {
			f := newFixture(t)
			f.seed(t, alarm, arming, activeSensor("Door", domain.SensorDoor))

			require.NoError(t, f.svc.SetArmingStatus(context.Background(), domain.Disarmed))
			require.Equal(t, domain.NoAlarm, f.alarm(t))

			got, err := f.svc.GetArmingStatus(context.Background())
			require.NoError(t, err)
			require.Equal(t, domain.Disarmed, got)
		}
	}
}

func TestSetArmingStatus_ArmingResetsSensors(t *testing.T) {
	t.Parallel()

	for _, arming := range []domain.ArmingStatus{domain.ArmedHome, domain.ArmedAway} {
		t.Run(arming.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()

			var sensors []*domain.Sensor
			for _, sensorType := range domain.SensorTypes() {
				sensors = append(sensors, activeSensor(sensorType.String(), sensorType))
			}

			f.seed(t, domain.NoAlarm, domain.Disarmed, sensors...)

			require.NoError(t, f.svc.SetArmingStatus(ctx, arming))

			stored, err := f.svc.GetSensors(ctx)
			require.NoError(t, err)
			require.Len(t, stored, len(sensors))

			for _, s := range stored {
				require.False(t, s.Active, s.Name)
			}

			active, err := f.svc.IsAnySensorActive(ctx)
			require.NoError(t, err)
			require.False(t, active)
			require.Equal(t, domain.NoAlarm, f.alarm(t))
		})
	}
}

func TestSetArmingStatus_InvalidStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	err := f.svc.SetArmingStatus(context.Background(), domain.ArmingStatus(42))
	require.ErrorIs(t, err, ErrInvalidArmingStatus)
}

func TestSetArmingStatus_RollsBackSensorResets(t *testing.T) {
	t.Parallel()

	failing := &failingRepository{MemoryRepository: repo.NewMemoryRepository()}
	ctx := context.Background()

	a := activeSensor("A", domain.SensorDoor)
	b := activeSensor("B", domain.SensorWindow)
	require.NoError(t, failing.AddSensor(ctx, a))
	require.NoError(t, failing.AddSensor(ctx, b))

	svc, err := New(failing, new(stubImages))
	require.NoError(t, err)

	failing.failArming = true

	err = svc.SetArmingStatus(ctx, domain.ArmedAway)
	require.ErrorIs(t, err, errTestWrite)

	sensors, err := svc.GetSensors(ctx)
	require.NoError(t, err)

	for _, s := range sensors {
		require.True(t, s.Active, s.Name)
	}

	arming, err := svc.GetArmingStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Disarmed, arming)
}

func TestProcessImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		arming       domain.ArmingStatus
		alarm        domain.AlarmStatus
		cat          bool
		sensorActive bool
		want         domain.AlarmStatus
	}{
		{"cat while armed home raises alarm", domain.ArmedHome, domain.NoAlarm, true, false, domain.Alarm},
		{"cat while armed home with pending", domain.ArmedHome, domain.PendingAlarm, true, true, domain.Alarm},
		{"cat while armed away is ignored", domain.ArmedAway, domain.NoAlarm, true, false, domain.NoAlarm},
		{"cat while disarmed is ignored", domain.Disarmed, domain.NoAlarm, true, false, domain.NoAlarm},
		{"no cat and no sensors clears pending", domain.ArmedHome, domain.PendingAlarm, false, false, domain.NoAlarm},
		{"no cat and no sensors clears alarm", domain.ArmedAway, domain.Alarm, false, false, domain.NoAlarm},
		{"no cat with an active sensor keeps pending", domain.ArmedAway, domain.PendingAlarm, false, true, domain.PendingAlarm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, WithConfidenceThreshold(75))
			f.images.cat = tt.cat

			sensor := domain.NewSensor("Door", domain.SensorDoor)
			sensor.Active = tt.sensorActive
			f.seed(t, tt.alarm, tt.arming, sensor)

			require.NoError(t, f.svc.ProcessImage(context.Background(), testImage()))
			require.Equal(t, tt.want, f.alarm(t))
			require.Equal(t, []float32{75}, f.images.thresholds)
		})
	}
}

func TestProcessImage_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, domain.PendingAlarm, domain.ArmedHome)

	require.ErrorIs(t, f.svc.ProcessImage(context.Background(), nil), imagesvc.ErrImageRequired)

	f.images.err = errTestClassify

	err := f.svc.ProcessImage(context.Background(), testImage())
	require.ErrorIs(t, err, errTestClassify)
	require.Equal(t, domain.PendingAlarm, f.alarm(t))
}

func TestSetArmingStatus_ArmHomeAfterCat(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	f.images.cat = true
	require.NoError(t, f.svc.ProcessImage(ctx, testImage()))
	require.Equal(t, domain.NoAlarm, f.alarm(t))

	require.NoError(t, f.svc.SetArmingStatus(ctx, domain.ArmedAway))
	require.Equal(t, domain.NoAlarm, f.alarm(t))

	require.NoError(t, f.svc.SetArmingStatus(ctx, domain.ArmedHome))
	require.Equal(t, domain.Alarm, f.alarm(t))

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.CatDetected)

	// A later cat-free frame forgets the verdict.
	f.images.cat = false
	require.NoError(t, f.svc.ProcessImage(ctx, testImage()))
	require.NoError(t, f.svc.SetArmingStatus(ctx, domain.Disarmed))
	require.NoError(t, f.svc.SetArmingStatus(ctx, domain.ArmedHome))
	require.Equal(t, domain.NoAlarm, f.alarm(t))
}

func TestScenarios(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("arm home then activate", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		sensor := domain.NewSensor("S", domain.SensorDoor)
		require.NoError(t, f.svc.AddSensor(ctx, sensor))
		require.NoError(t, f.svc.SetArmingStatus(ctx, domain.ArmedHome))
		require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, true))
		require.Equal(t, domain.PendingAlarm, f.alarm(t))
	})

	t.Run("alarm survives activate and deactivate", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		sensor := domain.NewSensor("S", domain.SensorWindow)
		f.seed(t, domain.Alarm, domain.Disarmed, sensor)
		require.NoError(t, f.svc.SetArmingStatus(ctx, domain.ArmedAway))
		require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, true))
		require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, false))
		require.Equal(t, domain.Alarm, f.alarm(t))
	})

	t.Run("disarm when already disarmed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.svc.SetArmingStatus(ctx, domain.Disarmed))
		require.Equal(t, domain.NoAlarm, f.alarm(t))
	})
}

func TestPassthroughAndQueries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	door := domain.NewSensor("Door", domain.SensorDoor)
	require.NoError(t, f.svc.AddSensor(ctx, door))

	door.Name = "Front door"
	require.NoError(t, f.svc.UpdateSensor(ctx, door))

	got, err := f.svc.GetSensor(ctx, door.ID)
	require.NoError(t, err)
	require.Equal(t, "Front door", got.Name)

	require.NoError(t, f.svc.RemoveSensor(ctx, door))

	_, err = f.svc.GetSensor(ctx, door.ID)
	require.ErrorIs(t, err, ErrSensorNotFound)

	require.ErrorIs(t, f.svc.AddSensor(ctx, nil), ErrSensorRequired)
}

func TestListeners(t *testing.T) {
	t.Parallel()

	listener := new(recordingListener)
	f := newFixture(t, WithListeners(listener))
	ctx := context.Background()

	sensor := domain.NewSensor("Door", domain.SensorDoor)
	require.NoError(t, f.svc.AddSensor(ctx, sensor))
	require.NoError(t, f.svc.SetArmingStatus(ctx, domain.ArmedAway))
	require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, true))
	require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, sensor, true))

	f.images.cat = false
	require.NoError(t, f.svc.SetArmingStatus(ctx, domain.Disarmed))
	require.NoError(t, f.svc.ProcessImage(ctx, testImage()))

	listener.mu.Lock()
	defer listener.mu.Unlock()

	require.Equal(t, []domain.AlarmStatus{domain.PendingAlarm, domain.NoAlarm}, listener.alarms)
	require.Equal(t, []domain.ArmingStatus{domain.ArmedAway, domain.Disarmed}, listener.armings)
	require.Equal(t, []bool{false}, listener.cats)
	require.Equal(t, 3, listener.sensorUpdates)
}

func TestListeners_NotNotifiedOnFailure(t *testing.T) {
	t.Parallel()

	failing := &failingRepository{MemoryRepository: repo.NewMemoryRepository(), failArming: true}
	listener := new(recordingListener)

	svc, err := New(failing, new(stubImages))
	require.NoError(t, err)

	svc.AddListener(listener)

	require.Error(t, svc.SetArmingStatus(context.Background(), domain.ArmedHome))
	require.Empty(t, listener.armings)
	require.Empty(t, listener.alarms)
}

func TestConcurrentActivationsNeverDowngradeAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	sensors := make([]*domain.Sensor, 0, 16)
	for range 16 {
		sensors = append(sensors, domain.NewSensor("S", domain.SensorMotion))
	}

	f.seed(t, domain.NoAlarm, domain.ArmedAway, sensors...)

	var wg sync.WaitGroup

	for _, s := range sensors {
		wg.Add(1)

		go func(s *domain.Sensor) {
			defer wg.Done()

			candidate := s.Clone()
			if err := f.svc.ChangeSensorActivationStatus(ctx, candidate, true); err != nil {
				t.Error(err)
			}
		}(s)
	}

	wg.Wait()

	require.Equal(t, domain.Alarm, f.alarm(t))

	for _, s := range sensors {
		require.NoError(t, f.svc.ChangeSensorActivationStatus(ctx, s.Clone(), false))
		require.Equal(t, domain.Alarm, f.alarm(t))
	}
}
