package middleware

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gallery/internal/requestip"
)

// RateLimiter implements a token bucket algorithm for rate limiting
type RateLimiter struct {
	mu              sync.Mutex
	requestsPerMin  int
	clients         map[string]*clientBucket
	cleanupInterval time.Duration
	staleAfter      time.Duration
	resolver        *requestip.Resolver
	now             func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// clientBucket tracks tokens for a single client (IP). Tokens refill
// continuously at requestsPerMin per minute.
type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	Resolver          *requestip.Resolver
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop.
// Call Stop to release it.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 120
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	rl := &RateLimiter{
		requestsPerMin:  config.RequestsPerMinute,
		clients:         make(map[string]*clientBucket),
		cleanupInterval: config.CleanupInterval,
		staleAfter:      10 * time.Minute,
		resolver:        config.Resolver,
		now:             config.Clock,
		stop:            make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware returns an HTTP middleware function
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := rl.resolver.ClientIP(r)

			allowed, remaining, retryAfter := rl.Allow(clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				log.Printf("Rate limit exceeded for IP: %s on %s", clientIP, r.URL.Path)
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow takes a token for clientIP. It returns whether the request may
// proceed, the whole tokens left, and how long until the next token.
func (rl *RateLimiter) Allow(clientIP string) (bool, int, time.Duration) {
	now := rl.now()
	capacity := float64(rl.requestsPerMin)
	perSecond := capacity / 60

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.clients[clientIP]
	if !ok {
		bucket = &clientBucket{tokens: capacity, lastSeen: now}
		rl.clients[clientIP] = bucket
	}

	if elapsed := now.Sub(bucket.lastSeen); elapsed > 0 {
		bucket.tokens = math.Min(capacity, bucket.tokens+elapsed.Seconds()*perSecond)
	}
	bucket.lastSeen = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, int(bucket.tokens), 0
	}

	wait := time.Duration((1 - bucket.tokens) * 60 / capacity * float64(time.Second))
	return false, 0, wait
}

// cleanupLoop periodically removes stale client buckets
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup removes client buckets that haven't been used recently
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, bucket := range rl.clients {
		if now.Sub(bucket.lastSeen) > rl.staleAfter {
			delete(rl.clients, ip)
		}
	}
}
