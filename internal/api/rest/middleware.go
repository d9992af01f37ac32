package rest

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/oshokin/home-security/internal/logger"
)

// limiterIdleTTL is how long the bucket of a silent client IP is kept.
const limiterIdleTTL = 10 * time.Minute

// ipRateLimiter keeps one token bucket per client IP.
// Buckets of clients idle for longer than the TTL are dropped.
type ipRateLimiter struct {
	// limiters holds the bucket of each IP.
	limiters *cache.Cache
	// mu makes lookup and creation of a bucket atomic.
	mu sync.Mutex
	// limit is the refill rate of new buckets.
	limit rate.Limit
	// burst is the size of new buckets.
	burst int
}

func newIPRateLimiter(limit rate.Limit, burst int, idleTTL time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: cache.New(idleTTL, 2*idleTTL),
		limit:    limit,
		burst:    burst,
	}
}

// get returns the bucket of the IP, creating it on first use, and extends its lifetime.
func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := cachedLimiter(l.limiters, ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}

	l.limiters.SetDefault(ip, limiter)

	return limiter
}

func cachedLimiter(store *cache.Cache, ip string) (*rate.Limiter, bool) {
	item, found := store.Get(ip)
	if !found {
		return nil, false
	}

	limiter, ok := item.(*rate.Limiter)

	return limiter, ok
}

// rateLimit rejects requests above the per-IP rate with 429.
func rateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	limiter := newIPRateLimiter(limit, burst, limiterIdleTTL)

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "too many requests"})

			return
		}

		c.Next()
	}
}

// cachedResponse is a stored GET response.
type cachedResponse struct {
	// status is the HTTP status code.
	status int
	// contentType is the Content-Type header.
	contentType string
	// body is the response body.
	body []byte
}

// bodyCacheWriter copies the response body while writing it.
type bodyCacheWriter struct {
	gin.ResponseWriter

	// body receives a copy of everything written.
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)

	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)

	return w.ResponseWriter.WriteString(s)
}

// responseCache stores GET responses until the next engine change.
// Every invalidation starts a new generation; a response rendered during an
// older generation is never stored.
type responseCache struct {
	// store holds cachedResponse values keyed by request URI.
	store *cache.Cache
	// mu orders stores against invalidations.
	mu sync.Mutex
	// generation counts invalidations.
	generation uint64
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{store: cache.New(ttl, 2*ttl)}
}

// current returns the generation a request starts in.
func (c *responseCache) current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generation
}

// get returns the stored response for key.
func (c *responseCache) get(key string) (cachedResponse, bool) {
	item, found := c.store.Get(key)
	if !found {
		return cachedResponse{}, false
	}

	response, ok := item.(cachedResponse)

	return response, ok
}

// put stores the response unless an invalidation happened since generation.
func (c *responseCache) put(key string, generation uint64, response cachedResponse) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false
	}

	c.store.SetDefault(key, response)

	return true
}

// invalidate drops every stored response and starts a new generation.
func (c *responseCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.store.Flush()
}

// cached serves successful GET responses from store until it is invalidated.
func cached(store *responseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()

			return
		}

		key := c.Request.RequestURI
		if response, found := store.get(key); found {
			c.Header("X-Cache", "HIT")
			c.Data(response.status, response.contentType, response.body)
			c.Abort()

			return
		}

		generation := store.current()

		writer := &bodyCacheWriter{ResponseWriter: c.Writer, body: new(bytes.Buffer)}
		c.Writer = writer

		c.Next()

		if writer.Status() >= http.StatusOK && writer.Status() < http.StatusMultipleChoices {
			store.put(key, generation, cachedResponse{
				status:      writer.Status(),
				contentType: writer.Header().Get("Content-Type"),
				body:        writer.body.Bytes(),
			})
		}
	}
}

// requestLogger logs every request at debug level with the request context logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		c.Next()

		logger.DebugKV(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(started),
		)
	}
}
