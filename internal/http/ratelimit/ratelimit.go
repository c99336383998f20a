package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to. An empty key falls back
// to the client IP.
type KeyFunc func(r *http.Request) string

// Limiter keeps one token bucket per key.
type Limiter struct {
	mu             sync.Mutex
	buckets        map[string]*bucket
	rate           rate.Limit
	burst          int
	idle           time.Duration
	maxEntries     int
	key            KeyFunc
	trustedProxies []*net.IPNet
	now            func() time.Time
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New creates a limiter allowing r requests per second with bursts of b.
// Buckets unused for idle are dropped by Prune. trustedProxies lists CIDRs or
// IPs whose forwarding headers are believed; empty trusts every proxy.
func New(r rate.Limit, b int, idle time.Duration, key KeyFunc, trustedProxies []string) *Limiter {
	return &Limiter{
		buckets:        make(map[string]*bucket),
		rate:           r,
		burst:          b,
		idle:           idle,
		maxEntries:     10000,
		key:            key,
		trustedProxies: parseProxies(trustedProxies),
		now:            time.Now,
	}
}

func parseProxies(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		if _, ipnet, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, ipnet)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip, bits = ip.To4(), 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Allow charges one request to key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.maxEntries {
			l.evictOldest()
		}
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastAccess = l.now()
	l.mu.Unlock()

	return b.limiter.Allow()
}

func (l *Limiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, b := range l.buckets {
		if oldestKey == "" || b.lastAccess.Before(oldest) {
			oldestKey, oldest = k, b.lastAccess
		}
	}
	if oldestKey != "" {
		delete(l.buckets, oldestKey)
	}
}

// Prune drops buckets idle for longer than the configured duration.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	removed := 0
	for k, b := range l.buckets {
		if b.lastAccess.Before(cutoff) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

// Run prunes idle buckets every idle interval until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(l.requestKey(r)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) requestKey(r *http.Request) string {
	if l.key != nil {
		if k := l.key(r); k != "" {
			return "key:" + k
		}
	}
	return "ip:" + l.clientIP(r)
}

func (l *Limiter) clientIP(r *http.Request) string {
	remoteIP := parseIP(r.RemoteAddr)

	if len(l.trustedProxies) > 0 {
		trusted := false
		for _, ipnet := range l.trustedProxies {
			if remoteIP != nil && ipnet.Contains(remoteIP) {
				trusted = true
				break
			}
		}
		if !trusted {
			return remoteIP.String()
		}
	}

	// Leftmost X-Forwarded-For entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if parsed := net.ParseIP(strings.TrimSpace(first)); parsed != nil {
			return parsed.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if parsed := net.ParseIP(xri); parsed != nil {
			return parsed.String()
		}
	}
	return remoteIP.String()
}

func parseIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}
