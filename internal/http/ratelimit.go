package http

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tabung/internal/metrics"
)

// idleBucket is how long an untouched client bucket is kept.
const idleBucket = 10 * time.Minute

// mutationLimiter gives each client IP a token bucket holding perMinute
// tokens and refilling at perMinute tokens a minute. Every mutating request
// spends one token.
type mutationLimiter struct {
	mu        sync.Mutex
	burst     float64
	perSecond float64
	buckets   map[string]*bucket
	now       func() time.Time
	swept     time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newMutationLimiter(perMinute int) *mutationLimiter {
	return &mutationLimiter{
		burst:     float64(perMinute),
		perSecond: float64(perMinute) / 60,
		buckets:   make(map[string]*bucket),
		now:       time.Now,
	}
}

// take spends a token for client. When none is left it reports how long
// until the next one.
func (l *mutationLimiter) take(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > idleBucket {
		for key, b := range l.buckets {
			if now.Sub(b.seen) > idleBucket {
				delete(l.buckets, key)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{tokens: l.burst}
		l.buckets[client] = b
	} else {
		b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.seen).Seconds()*l.perSecond)
	}
	b.seen = now

	if b.tokens < 1 {
		return false, time.Duration((1 - b.tokens) / l.perSecond * float64(time.Second))
	}
	b.tokens--
	return true, 0
}

// middleware limits POST, PUT and DELETE. Reads are never limited.
func (l *mutationLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if ok, wait := l.take(clientIP(r)); !ok {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
