// Package ratelimit provides token bucket rate limiting for the control server.
package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
// Generation hits the LLM and the PDF compiler, so it gets the strictest
// budget. Autofill and forced detection drive a live browser tab and are
// capped below the read endpoints.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/applications/generate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		{Path: "/tabs/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/applications/status", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket is a token bucket refilling at a steady rate.
type bucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) refillLocked(now time.Time) {
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
	b.lastRefill = now
}

// take consumes a token if one is available and reports the bucket status.
func (b *bucket) take() (allowed bool, remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refillLocked(now)

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		allowed = true
	}

	remaining = int(b.tokens)
	if b.tokens < float64(b.capacity) {
		secondsUntilFull := (float64(b.capacity) - b.tokens) / b.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	} else {
		resetTime = now
	}
	return allowed, remaining, resetTime
}

// Limiter manages per-client, per-endpoint token buckets.
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	lastAccess map[string]time.Time
	config     *Config
	ticker     *time.Ticker
	stop       chan struct{}
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
		config:     config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.ticker = time.NewTicker(config.CleanupInterval)
		l.stop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow checks whether a request from clientID may hit the given endpoint.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	ec := matchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	// Unlimited endpoint (health check).
	if ec.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + endpoint + ":" + method
	b := l.getBucket(key, ec)

	l.mu.Lock()
	l.lastAccess[key] = time.Now()
	l.mu.Unlock()

	allowed, remaining, resetTime := b.take()

	var retryAfter time.Duration
	if !allowed {
		retryAfter = time.Until(resetTime)
		if retryAfter < 0 {
			retryAfter = 0
		}
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      ec.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) getBucket(key string, ec *EndpointConfig) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	capacity := ec.Burst
	if capacity <= 0 {
		capacity = ec.Limit
	}
	fresh := newBucket(capacity, float64(ec.Limit)/ec.Window.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.buckets[key]; ok {
		return existing
	}
	l.buckets[key] = fresh
	return fresh
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.cleanupBuckets()
		case <-l.stop:
			return
		}
	}
}

// cleanupBuckets drops buckets idle for over an hour.
func (l *Limiter) cleanupBuckets() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.stop != nil {
		close(l.stop)
	}
}

// matchEndpoint matches a request path and method to an endpoint config.
// Patterns ending in "/" match by prefix, so "/tabs/" covers "/tabs/{id}/detect".
func matchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Limit: 0}
	}

	for i := range configs {
		ec := &configs[i]
		if ec.Path == path && ec.Method == method {
			return ec
		}
	}
	for i := range configs {
		ec := &configs[i]
		if ec.Method == method && strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) {
			return ec
		}
	}
	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
