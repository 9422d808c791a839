package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendOTP       = "send_otp"
	ActionVerifyOTP     = "verify_otp"
	ActionRefreshOrders = "refresh_orders"
)

// Policy allows Burst actions at once, then one every Every.
type Policy struct {
	Every time.Duration
	Burst int
}

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// RateLimiter throttles actions per subject, e.g. OTP requests per phone
// number. Each (subject, action) pair gets its own limiter.
type RateLimiter struct {
	mutex    sync.Mutex
	buckets  map[string]*bucket
	policies map[string]Policy
	fallback Policy
	now      func() time.Time
}

// NewRateLimiter allows one OTP per otpCooldown for a phone number.
func NewRateLimiter(otpCooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		policies: map[string]Policy{
			ActionSendOTP:       {Every: otpCooldown, Burst: 1},
			ActionVerifyOTP:     {Every: 2 * time.Minute, Burst: 5},
			ActionRefreshOrders: {Every: 5 * time.Second, Burst: 1},
		},
		fallback: Policy{Every: 3 * time.Second, Burst: 20},
		now:      time.Now,
	}
}

// SetPolicy replaces the policy of action. Existing buckets keep the old one.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.policies[action] = p
}

// Allow consumes a token for subject's action when one is available.
// Otherwise it reports how long until the next one.
func (rl *RateLimiter) Allow(subject, action string) (bool, time.Duration) {
	now := rl.now()
	b := rl.bucket(subject+":"+action, action, now)

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) bucket(key, action string, now time.Time) *bucket {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		p, known := rl.policies[action]
		if !known {
			p = rl.fallback
		}
		b = &bucket{limiter: rate.NewLimiter(rate.Every(p.Every), p.Burst)}
		rl.buckets[key] = b
	}
	b.lastUsed = now
	return b
}

// Reset forgets the subject's history for action, e.g. after a successful
// verification.
func (rl *RateLimiter) Reset(subject, action string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	delete(rl.buckets, subject+":"+action)
}

// Cleanup removes buckets unused for an hour.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastUsed) > time.Hour {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup every 30 minutes until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}
