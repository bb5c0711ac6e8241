// Package ratelimit applies a fixed request quota per source address.
// It runs before any business logic, together with the body size cap.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token-bucket limiter per client IP. Stale
// per-IP entries are dropped in the background so the map does not grow
// without bound.
type Limiter struct {
	limit rate.Limit
	burst int

	mu       sync.RWMutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New builds a limiter allowing requests tokens per window for each
// source IP, with a burst of the full quota.
func New(requests int, window time.Duration) *Limiter {
	l := &Limiter{
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		visitors: make(map[string]*visitor),
	}
	go l.cleanupLoop(window)
	return l
}

// Allow reports whether the given IP still has quota.
func (l *Limiter) Allow(ip string) bool {
	l.mu.RLock()
	v, ok := l.visitors[ip]
	l.mu.RUnlock()

	if ok {
		l.mu.Lock()
		v.lastSeen = time.Now()
		l.mu.Unlock()
		return v.limiter.Allow()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	//re-check after taking the write lock
	if v, ok = l.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter.Allow()
	}

	v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: time.Now()}
	l.visitors[ip] = v
	return v.limiter.Allow()
}

func (l *Limiter) cleanupLoop(window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-2 * window)
		l.mu.Lock()
		for ip, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects over-quota requests with 429 before they reach
// any handler. With chi's RealIP middleware ahead of it, RemoteAddr
// already holds the client address.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.Allow(ip) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
