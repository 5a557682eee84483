// Package ratelimit throttles HTTP clients with one token bucket per
// client, path and method.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the bucket state after a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a rate limiter. A nil config means DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow consumes a token for clientID on method and path if one is available.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	endpoint := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if endpoint == nil {
		endpoint = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	if endpoint.Limit <= 0 || endpoint.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	lim := l.bucketFor(clientID+":"+method+":"+path, *endpoint, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	info := Info{
		Allowed:   allowed,
		Limit:     endpoint.Limit,
		Remaining: max(int(tokens), 0),
		ResetTime: now.Add(untilFull(tokens, lim)),
	}
	if !allowed {
		info.RetryAfter = time.Duration((1 - tokens) / float64(lim.Limit()) * float64(time.Second))
	}
	return allowed, info
}

func (l *Limiter) bucketFor(key string, endpoint EndpointConfig, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		burst := endpoint.Burst
		if burst <= 0 {
			burst = endpoint.Limit
		}
		every := rate.Limit(float64(endpoint.Limit) / endpoint.Window.Seconds())
		b = &bucket{limiter: rate.NewLimiter(every, burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// untilFull is how long the bucket needs to refill to its burst size.
func untilFull(tokens float64, lim *rate.Limiter) time.Duration {
	missing := float64(lim.Burst()) - tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(lim.Limit()) * float64(time.Second))
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops buckets idle for longer than IdleTTL.
func (l *Limiter) cleanup() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
