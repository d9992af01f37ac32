package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/home-security/internal/service/client"
	"github.com/oshokin/home-security/internal/service/common"
	"github.com/oshokin/home-security/internal/service/watcher"
)

// TestWatcher_ExitsOnAlarm runs the watcher against a live server and raises the alarm.
func TestWatcher_ExitsOnAlarm(t *testing.T) {
	srv := newTestServer(t, t.TempDir())
	stop := srv.start(t)

	defer stop()

	ctx := context.Background()
	c := srv.dial(t)

	door, err := c.AddSensor(ctx, "Back door", "door")
	require.NoError(t, err)

	motion, err := c.AddSensor(ctx, "Hall", "motion")
	require.NoError(t, err)

	_, err = c.SetArmingStatus(ctx, "ARMED_HOME")
	require.NoError(t, err)

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- watcher.Run(runCtx, &watcher.Options{
			ConfigPath:   srv.configPath,
			PollInterval: 20 * time.Millisecond,
			ExitOnAlarm:  true,
		})
	}()

	// A second activation while pending confirms the alarm.
	state, err := c.ChangeSensorActivation(ctx, door.GetId(), true)
	require.NoError(t, err)
	require.Equal(t, "PENDING_ALARM", state.GetAlarmStatus())

	state, err = c.ChangeSensorActivation(ctx, motion.GetId(), true)
	require.NoError(t, err)
	require.Equal(t, "ALARM", state.GetAlarmStatus())

	require.ErrorIs(t, <-done, watcher.ErrAlarmRaised)
}

// TestCLI_PushArmingSession drives the CLI session helpers against a live server.
func TestCLI_PushArmingSession(t *testing.T) {
	srv := newTestServer(t, t.TempDir())
	stop := srv.start(t)

	defer stop()

	var out strings.Builder

	err := client.Run(context.Background(), &client.Options{ConfigPath: srv.configPath},
		func(ctx context.Context, c *common.Client) error {
			state, err := client.PushArming(ctx, c, "ARMED_AWAY", 10*time.Millisecond)
			if err != nil {
				return err
			}

			return client.PrintStatus(&out, state)
		},
	)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Arming: ARMED_AWAY")
	require.Contains(t, out.String(), "No sensors registered.")
}

// TestHTTP_StatusFollowsEngine checks the HTTP API and its cache track gRPC changes.
func TestHTTP_StatusFollowsEngine(t *testing.T) {
	srv := newTestServer(t, t.TempDir())
	stop := srv.start(t)

	defer stop()

	ctx := context.Background()
	c := srv.dial(t)
	base := "http://" + srv.httpAddr

	var status struct {
		AlarmStatus  string `json:"alarm_status"`
		ArmingStatus string `json:"arming_status"`
	}

	getStatus := func() bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/status", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&status) == nil
	}

	// The HTTP listener starts alongside gRPC.
	require.Eventually(t, getStatus, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, "DISARMED", status.ArmingStatus)

	_, err := c.SetArmingStatus(ctx, "ARMED_HOME")
	require.NoError(t, err)

	// The cached response is flushed by the engine listener.
	require.True(t, getStatus())
	require.Equal(t, "ARMED_HOME", status.ArmingStatus)
	require.Equal(t, "NO_ALARM", status.AlarmStatus)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/metrics", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}
