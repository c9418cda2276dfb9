package middleware

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/router"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
	"golang.org/x/time/rate"
)

// A bucket idle for this long is full again, so dropping it loses nothing.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per user, or per client ip for
// anonymous requests. Idle buckets are evicted.
type RateLimiter struct {
	limiters  *xsync.MapOf[string, *limiterEntry]
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}

	l := &RateLimiter{
		limiters: xsync.NewMapOf[*limiterEntry](),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *RateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		key := xcontext.RequestUserID(ctx)
		if key == "" {
			key = "ip:" + clientIP(ctx)
		}

		now := l.now()
		l.sweep(now)

		entry, ok := l.limiters.Load(key)
		if !ok {
			entry, _ = l.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)})
		}
		entry.lastSeen.Store(now.UnixNano())

		if !entry.limiter.AllowN(now, 1) {
			return nil, errorx.New(errorx.TooManyRequests, "Too many requests, please slow down")
		}

		return ctx, nil
	}
}

// Size returns the number of tracked buckets.
func (l *RateLimiter) Size() int {
	return l.limiters.Size()
}

// sweep drops idle buckets at most once per idle period. Only one caller
// wins the sweep, the others go on.
func (l *RateLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idleTTL) {
		return
	}

	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	threshold := now.Add(-l.idleTTL).UnixNano()
	l.limiters.Range(func(key string, entry *limiterEntry) bool {
		if entry.lastSeen.Load() < threshold {
			l.limiters.Delete(key)
		}
		return true
	})
}

func clientIP(ctx context.Context) string {
	if ip := xcontext.ClientIP(ctx); ip != "" {
		return ip
	}

	return xcontext.HTTPRequest(ctx).RemoteAddr
}
