package rest

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	domain "github.com/oshokin/home-security/internal/domain/security"
	engine "github.com/oshokin/home-security/internal/service/security"
)

const (
	// DefaultCacheTTL bounds how long a read is served from cache without a change notification.
	DefaultCacheTTL = time.Minute
	// DefaultImageRate is the per-IP image upload rate.
	DefaultImageRate rate.Limit = 1
	// DefaultImageBurst is the per-IP image upload burst.
	DefaultImageBurst = 5
	// MaxImageSize limits uploaded frames.
	MaxImageSize = 10 << 20
)

// Service abstracts the engine operations the HTTP layer depends on.
type Service interface {
	Status(ctx context.Context) (*engine.Status, error)
	GetSensors(ctx context.Context) ([]*domain.Sensor, error)
	GetSensor(ctx context.Context, id uuid.UUID) (*domain.Sensor, error)
	SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error
	ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error
	ProcessImage(ctx context.Context, img image.Image) error
}

// Router serves the HTTP API.
type Router struct {
	// engine is the gin engine with all routes.
	engine *gin.Engine
	// cache holds cached GET responses.
	cache *responseCache
	// service is the alarm engine.
	service Service
	// gatherer backs the /metrics endpoint.
	gatherer prometheus.Gatherer
	// cacheTTL is the cache expiration.
	cacheTTL time.Duration
	// imageRate is the per-IP image upload rate.
	imageRate rate.Limit
	// imageBurst is the per-IP image upload burst.
	imageBurst int
}

// Option configures the Router.
type Option func(*Router)

// WithGatherer serves the gatherer on /metrics.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(r *Router) {
		r.gatherer = gatherer
	}
}

// WithCacheTTL sets the cache expiration of read endpoints.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Router) {
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithImageRateLimit sets the per-IP image upload rate.
func WithImageRateLimit(limit rate.Limit, burst int) Option {
	return func(r *Router) {
		r.imageRate = limit
		r.imageBurst = burst
	}
}

// NewRouter creates the gin engine and registers every route.
func NewRouter(service Service, opts ...Option) *Router {
	r := &Router{
		service:    service,
		gatherer:   prometheus.DefaultGatherer,
		cacheTTL:   DefaultCacheTTL,
		imageRate:  DefaultImageRate,
		imageBurst: DefaultImageBurst,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.cache = newResponseCache(r.cacheTTL)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", r.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	caching := cached(r.cache)

	api := router.Group("/api/v1")
	{
		api.GET("/status", caching, r.getStatus)
		api.GET("/sensors", caching, r.getSensors)
		api.PUT("/arming", r.putArming)
		api.PUT("/sensors/:id/state", r.putSensorState)
		api.POST("/images", rateLimit(r.imageRate, r.imageBurst), r.postImage)
	}

	r.engine = router

	return r
}

// Handler returns the HTTP handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Listener returns an engine listener that drops cached reads on every change.
func (r *Router) Listener() engine.Listener { //nolint:ireturn // The engine consumes listeners by interface.
	return cacheInvalidator{cache: r.cache}
}

// cacheInvalidator drops cached responses on engine changes.
type cacheInvalidator struct {
	// cache is the response cache.
	cache *responseCache
}

func (i cacheInvalidator) AlarmStatusChanged(context.Context, domain.AlarmStatus) {
	i.cache.invalidate()
}

func (i cacheInvalidator) ArmingStatusChanged(context.Context, domain.ArmingStatus) {
	i.cache.invalidate()
}

func (i cacheInvalidator) CatDetected(context.Context, bool) {
	i.cache.invalidate()
}

func (i cacheInvalidator) SensorsChanged(context.Context, []*domain.Sensor) {
	i.cache.invalidate()
}
