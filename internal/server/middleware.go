package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Zachkp/crtfolio/internal/storage"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("request", fields...)
	}
}

// hashIP makes a visitor id that is stable for the lifetime of salt and
// cannot be reversed into the address.
func hashIP(ip, salt string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}

// VisitorStore records and summarizes visits.
type VisitorStore interface {
	RecordVisit(ctx context.Context, v storage.Visit) error
	Stats(ctx context.Context) (*storage.Stats, error)
	CleanupVisitors(ctx context.Context) (int64, error)
}

// visitorTracking logs hashed visits, honoring Do Not Track.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if s.visitors == nil ||
			strings.HasPrefix(path, "/admin") ||
			path == "/healthz" ||
			c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := storage.Visit{
			HashedIP:  hashIP(c.ClientIP(), s.salt),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.visitors.RecordVisit(ctx, visit); err != nil {
				s.logger.Warn("error recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

// ipLimiter hands out one token bucket per client address. Idle buckets
// expire from the cache.
type ipLimiter struct {
	limit rate.Limit
	burst int
	cache *gocache.Cache
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		limit: rate.Limit(float64(perMinute) / 60),
		burst: perMinute,
		cache: gocache.New(10*time.Minute, 20*time.Minute),
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	if v, ok := l.cache.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.cache.Add(ip, lim, gocache.DefaultExpiration); err != nil {
		if v, ok := l.cache.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		lim := l.get(ip)
		// touching the entry keeps active clients from expiring
		l.cache.SetDefault(ip, lim)
		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
