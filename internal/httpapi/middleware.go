package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
	"legend-hub/internal/session"
)

const cookieName = "lh_token"

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// tokenFrom reads the session token from the Authorization header or, for
// browser clients, the session cookie.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	tok, _ := c.Cookie(cookieName)
	return tok
}

func Auth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, err := sessions.Verify(c.Request.Context(), tokenFrom(c))
		if err != nil {
			if portal.Kind(err) == portal.ErrUnauthenticated {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session store"})
			return
		}
		c.Set(claimsKey, cl)
		c.Set(actorKey, cl.Actor())
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorOf(c).Staff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}

func actorOf(c *gin.Context) portal.Actor {
	v, _ := c.Get(actorKey)
	a, _ := v.(portal.Actor)
	return a
}

func claimsOf(c *gin.Context) *session.Claims {
	v, _ := c.Get(claimsKey)
	cl, _ := v.(*session.Claims)
	return cl
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if a := actorOf(c); a.UserID != 0 {
			fields = append(fields, "user_id", a.UserID)
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}

// ipLimiter hands out one token bucket per client address.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func newIPLimiter(perMinute int) *ipLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	return &ipLimiter{
		buckets: map[string]*rate.Limiter{},
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.every, l.burst)
		l.buckets[ip] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

// RateLimit rejects clients that exceed the limiter with 429.
func RateLimit(l *ipLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, slow down"})
			return
		}
		c.Next()
	}
}
