package server

import (
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter applies a token bucket per remote host and periodically
// evicts idle entries. A nil limiter allows everything.
type hostLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	byHost  map[string]*limiterEntry
	hits    uint64
	idleTTL time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newHostLimiter returns nil when rps or burst is not positive.
func newHostLimiter(rps float64, burst int, idleTTL time.Duration) *hostLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &hostLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		byHost:  make(map[string]*limiterEntry),
		idleTTL: idleTTL,
	}
}

// Allow reports whether one key message from host may be applied at now.
func (l *hostLimiter) Allow(host string, now time.Time) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byHost[host]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byHost[host] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byHost {
			if v.lastSeen.Before(cutoff) {
				delete(l.byHost, k)
			}
		}
	}

	return allowed
}

// Len returns the number of tracked hosts.
func (l *hostLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byHost)
}

// remoteHost strips the port from a request's RemoteAddr.
func remoteHost(remoteAddr string) string {
	remote := strings.TrimSpace(remoteAddr)
	if remote == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	if host == "" {
		return "unknown"
	}
	return host
}
