// Package server is the HTTP side of crtfolio: the streaming digital-twin
// chat, the resume download, geolocation for the boot greeting, and the
// visitor admin.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/chat"
)

// Replier streams an assistant reply.
type Replier interface {
	Reply(ctx context.Context, msgs []chat.Message, onDelta func(string) error) error
}

// Locator resolves a client address to a city.
type Locator interface {
	City(ctx context.Context, ip string) string
}

// Options wires the server's collaborators. Nil Visitors disables tracking
// and the admin stats; nil Mailer disables the contact form.
type Options struct {
	Twin          Replier
	Locator       Locator
	Visitors      VisitorStore
	Mailer        Mailer
	Catalog       *catalog.Catalog
	AdminToken    string
	RatePerMinute int
	Logger        *zap.Logger
}

type Server struct {
	twin       Replier
	locator    Locator
	visitors   VisitorStore
	mailer     Mailer
	catalog    *catalog.Catalog
	adminToken string
	salt       string
	logger     *zap.Logger
	engine     *gin.Engine
}

// New builds the gin engine. Call gin.SetMode before New.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	s := &Server{
		twin:       opts.Twin,
		locator:    opts.Locator,
		visitors:   opts.Visitors,
		mailer:     opts.Mailer,
		catalog:    opts.Catalog,
		adminToken: opts.AdminToken,
		salt:       randomToken(),
		logger:     opts.Logger,
	}
	if s.adminToken == "" {
		s.adminToken = randomToken()
		if gin.Mode() == gin.DebugMode {
			s.logger.Info("generated admin token (dev only)", zap.String("token", s.adminToken))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger), s.visitorTracking())

	chatHandlers := []gin.HandlerFunc{s.handleChat}
	if opts.RatePerMinute > 0 {
		chatHandlers = append([]gin.HandlerFunc{newIPLimiter(opts.RatePerMinute).middleware()}, chatHandlers...)
	}
	r.POST("/chat", chatHandlers...)
	r.GET("/resume", s.handleResume)
	r.GET("/whereami", s.handleWhereAmI)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/contact", s.handleContact)
	s.setupAdminRoutes(r)

	s.engine = r
	return s
}

// Handler exposes the engine, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.visitors != nil {
		go s.cleanupVisitors(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// cleanupVisitors purges expired visitor rows at startup and once a day.
func (s *Server) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		if n, err := s.visitors.CleanupVisitors(ctx); err != nil {
			s.logger.Warn("error cleaning up old visitor data", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("privacy cleanup removed old visitor records", zap.Int64("rows", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
