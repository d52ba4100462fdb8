package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/utils"
	"golang.org/x/time/rate"
)

var errTooManyRequests = errors.New("Too many requests, please try again later")

// minSweepInterval keeps eviction from running on every request.
const minSweepInterval = time.Minute

// RateLimiter is a per-IP sliding window: at most rate requests per interval.
type RateLimiter struct {
	rate      int
	interval  time.Duration
	ips       map[string][]time.Time
	lastSweep time.Time
	mu        sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	rl.sweep(now, cutoff)

	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// sweep drops IPs whose whole window has expired. Caller holds rl.mu.
func (rl *RateLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(rl.lastSweep) < maxDuration(rl.interval, minSweepInterval) {
		return
	}
	rl.lastSweep = now
	for ip, hits := range rl.ips {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.ips)
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			utils.AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// strictLimiter keeps one token bucket per client IP. A bucket idle for
// every*burst has refilled completely and is indistinguishable from a new
// one, so it is evicted.
type strictLimiter struct {
	every     time.Duration
	burst     int
	buckets   map[string]*bucket
	lastSweep time.Time
	mu        sync.Mutex
}

func newStrictLimiter(every time.Duration, burst int) *strictLimiter {
	return &strictLimiter{
		every:   every,
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

func (sl *strictLimiter) allow(ip string, now time.Time) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	idle := sl.every * time.Duration(sl.burst)
	if now.Sub(sl.lastSweep) >= maxDuration(idle, minSweepInterval) {
		sl.lastSweep = now
		for key, b := range sl.buckets {
			if now.Sub(b.lastSeen) >= idle {
				delete(sl.buckets, key)
			}
		}
	}

	b, ok := sl.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(sl.every), sl.burst)}
		sl.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (sl *strictLimiter) tracked() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return len(sl.buckets)
}

// NewStrictRateLimiter guards the credential endpoints with one token bucket
// per client IP: a refill every `every`, bursts of up to burst requests.
func NewStrictRateLimiter(every time.Duration, burst int) gin.HandlerFunc {
	sl := newStrictLimiter(every, burst)
	return func(c *gin.Context) {
		if !sl.allow(c.ClientIP(), time.Now()) {
			utils.AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
