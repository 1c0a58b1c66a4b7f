package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"massage-booking/config"
	"massage-booking/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	// idle visitors are swept at most this often
	limiterSweepInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client IP with a token bucket.
// X-Forwarded-For is only honoured when the direct peer is a trusted proxy.
type RateLimitMiddleware struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	limit     rate.Limit
	burst     int
	trusted   []*net.IPNet
	log       *logrus.Logger
	now       func() time.Time
}

func NewRateLimitMiddleware(cfg config.RateLimitConfig, log *logrus.Logger) *RateLimitMiddleware {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &RateLimitMiddleware{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		trusted:  parseTrustedProxies(cfg.TrustedProxies, log),
		log:      log,
		now:      time.Now,
	}
}

// parseTrustedProxies accepts plain IPs and CIDR ranges; invalid entries are logged and ignored
func parseTrustedProxies(entries []string, log *logrus.Logger) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				log.Warnf("Ignoring invalid trusted proxy %q", entry)
				continue
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			log.Warnf("Ignoring invalid trusted proxy %q: %v", entry, err)
			continue
		}
		nets = append(nets, ipNet)
	}
	return nets
}

func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := m.clientIP(r)
		if !m.getLimiter(ip).Allow() {
			m.log.WithField("ip", ip).Warn("Rate limit exceeded")
			response.TooManyRequests(w, "Rate limit exceeded. Try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getLimiter returns the limiter for ip. Visitors idle for longer than limiterIdleTimeout
// are dropped, at most once per limiterSweepInterval.
func (m *RateLimitMiddleware) getLimiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= limiterSweepInterval {
		for key, v := range m.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTimeout {
				delete(m.visitors, key)
			}
		}
		m.lastSweep = now
	}

	v, exists := m.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// clientIP is the direct peer unless that peer is a trusted proxy. Behind trusted proxies the
// X-Forwarded-For chain is walked from the right and the first untrusted hop wins.
func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !m.isTrusted(peer) {
		return peer
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return peer
	}
	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) == nil {
			// garbage in the chain; do not let it pick a bucket
			return peer
		}
		if !m.isTrusted(hop) {
			return hop
		}
		peer = hop
	}
	return peer
}

func (m *RateLimitMiddleware) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range m.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
