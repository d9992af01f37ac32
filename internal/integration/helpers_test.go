package integration

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/service/common"
	"github.com/oshokin/home-security/internal/service/server"
)

// testServer is a security server running inside the test process.
type testServer struct {
	// addr is the gRPC address.
	addr string
	// httpAddr is the HTTP API address.
	httpAddr string
	// configPath is the settings file shared with clients.
	configPath string
	// statePath is the file storage location.
	statePath string
}

// reservePort returns a free local address.
func reservePort(t *testing.T) string {
	t.Helper()

	lc := net.ListenConfig{}

	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// newTestServer writes a settings file for a server persisting state in dir.
func newTestServer(t *testing.T, dir string) *testServer {
	t.Helper()

	srv := &testServer{
		addr:       reservePort(t),
		httpAddr:   reservePort(t),
		configPath: filepath.Join(dir, "settings.yaml"),
		statePath:  filepath.Join(dir, "state.json"),
	}

	require.NoError(t, config.Save(srv.configPath, &config.Config{
		ServerAddress: srv.addr,
		HTTPAddress:   srv.httpAddr,
		Timeout:       3 * time.Second,
		LogLevel:      "warn",
		Storage: config.Storage{
			Driver: config.DriverFile,
			Path:   srv.statePath,
		},
	}))

	return srv
}

// start runs the server until the returned stop function is called.
func (s *testServer) start(t *testing.T) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:        s.configPath,
			ListenAddress:     s.addr,
			SkipInstanceCheck: true,
		})
	}()

	// Wait until the gRPC port accepts connections.
	require.Eventually(t, func() bool {
		select {
		case err := <-done:
			done <- err

			return true
		default:
		}

		conn, err := net.DialTimeout("tcp", s.addr, 100*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 5*time.Second, 20*time.Millisecond)

	return func() {
		cancel()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("server stopped with error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop in time")
		}
	}
}

// dial connects a client to the server.
func (s *testServer) dial(t *testing.T) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), s.addr,
		common.WithCallTimeout(3*time.Second),
		common.WithActor(&common.Actor{Hostname: "test-host", Username: "test-user"}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}
