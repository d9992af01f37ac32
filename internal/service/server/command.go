package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcapi "github.com/oshokin/home-security/internal/api/grpc/security"
	"github.com/oshokin/home-security/internal/api/rest"
	"github.com/oshokin/home-security/internal/config"
	"github.com/oshokin/home-security/internal/logger"
	"github.com/oshokin/home-security/internal/metrics"
	"github.com/oshokin/home-security/internal/mqtt"
	pb "github.com/oshokin/home-security/internal/pb/v1"
	repository "github.com/oshokin/home-security/internal/repository/security"
	"github.com/oshokin/home-security/internal/service/image"
	engine "github.com/oshokin/home-security/internal/service/security"
	"github.com/oshokin/home-security/internal/version"
)

// Options controls the security-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress provides an optional listen address override for the HTTP API.
	HTTPAddress string
	// StorageDriver overrides the configured storage driver.
	StorageDriver string
	// StoragePath overrides the configured state file or database path.
	StoragePath string
	// SkipInstanceCheck allows several servers on one host.
	SkipInstanceCheck bool
}

const (
	// readHeaderTimeout bounds slow HTTP clients.
	readHeaderTimeout = 10 * time.Second
	// shutdownTimeout bounds the HTTP server shutdown.
	shutdownTimeout = 5 * time.Second
	// maxMessageSize fits the largest accepted image plus the surrounding message.
	maxMessageSize = rest.MaxImageSize * 2
)

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the servers and blocks until context is canceled or a server fails.
// Loads configuration first, then determines listen address from config or override.
//
//nolint:funlen,cyclop // Startup wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	logger.Setup(settings.LogFormat, settings.LogLevel)

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "security-server")

	if !opts.SkipInstanceCheck {
		if err = ensureSingleInstance(); err != nil {
			return err
		}
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, closeRepo, err := repository.Open(ctx, settings.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		if closeErr := closeRepo(); closeErr != nil {
			logger.WarnKV(ctx, "Unable to close storage", "error", closeErr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector := metrics.New(registry)

	svc, err := engine.New(repo, newImageService(settings),
		engine.WithConfidenceThreshold(settings.Image.ConfidenceThreshold),
		engine.WithListeners(collector),
	)
	if err != nil {
		return fmt.Errorf("initialise engine: %w", err)
	}

	state, err := svc.Status(ctx)
	if err != nil {
		return fmt.Errorf("read initial state: %w", err)
	}

	collector.Init(ctx, state.Alarm, state.Arming, state.Sensors)

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup

	if httpAddress := firstNonEmpty(opts.HTTPAddress, settings.HTTPAddress); httpAddress != "" {
		router := rest.NewRouter(svc, rest.WithGatherer(registry))
		svc.AddListener(router.Listener())

		wg.Add(1)

		go func() {
			defer wg.Done()

			if serveErr := serveHTTP(ctx, httpAddress, router.Handler()); serveErr != nil {
				cancel(serveErr)
			}
		}()
	}

	if settings.MQTT.Enabled {
		bridge := mqtt.NewBridge(ctx, &settings.MQTT, svc)
		svc.AddListener(bridge)

		wg.Add(1)

		go func() {
			defer wg.Done()

			if runErr := bridge.Run(ctx); runErr != nil {
				cancel(fmt.Errorf("run mqtt bridge: %w", runErr))
			}
		}()
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(loggingInterceptor(ctx)),
		grpc.MaxRecvMsgSize(maxMessageSize),
	)
	pb.RegisterSecurityServiceServer(grpcServer, grpcapi.NewServer(svc))
	reflection.Register(grpcServer)

	logger.InfoKV(ctx, "Security server listening", append([]any{
		"listen_address", listenAddress,
		"storage_driver", settings.Storage.Driver,
		"alarm_status", state.Alarm.String(),
		"arming_status", state.Arming.String(),
	}, version.KV()...)...)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err = grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		cancel(err)
		<-done
		wg.Wait()

		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	wg.Wait()
	logger.Info(ctx, "GRPC server stopped")

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}

	return nil
}

// loadSettings reads the configuration and applies command line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.StorageDriver == "" && opts.StoragePath == "" {
		return settings, nil
	}

	if opts.StorageDriver != "" && opts.StorageDriver != settings.Storage.Driver {
		settings.Storage.Driver = opts.StorageDriver
		// The configured path belongs to the previous driver.
		settings.Storage.Path = ""
	}

	if opts.StoragePath != "" {
		settings.Storage.Path = opts.StoragePath
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return settings, nil
}

// newImageService selects the remote classifier when configured, otherwise the fake.
func newImageService(settings *config.Config) image.Service { //nolint:ireturn // Implementation is chosen by config.
	if settings.Image.ClassifierURL == "" {
		return image.NewFakeService()
	}

	return image.NewRemoteService(settings.Image.ClassifierURL, settings.Timeout,
		image.WithRetries(settings.Image.Retries),
	)
}

// serveHTTP serves the HTTP API until ctx is done.
func serveHTTP(ctx context.Context, address string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	logger.InfoKV(ctx, "HTTP API listening", "listen_address", address)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	// Extract port from config address (e.g., "server.example.com:8080" -> ":8080").
	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	// Parse the address to extract port.
	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Return port-only listen address to bind on all interfaces.
	return ":" + port, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
