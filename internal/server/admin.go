package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

// adminAuth accepts the admin token as a bearer header or as the cookie set
// by POST /admin/login.
func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" || token == c.GetHeader("Authorization") {
			token, _ = c.Cookie(adminCookie)
		}
		if !s.validToken(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) validToken(token string) bool {
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		var body struct {
			Token string `json:"token" form:"token"`
		}
		if err := c.ShouldBind(&body); err != nil || !s.validToken(body.Token) {
			s.logger.Warn("failed admin login", zap.String("visitor", hashIP(c.ClientIP(), s.salt)))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", false, true)
		s.logger.Info("admin login", zap.String("visitor", hashIP(c.ClientIP(), s.salt)))
		c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
	})

	r.POST("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/api/stats", func(c *gin.Context) {
		if s.visitors == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visitor tracking disabled"})
			return
		}
		stats, err := s.visitors.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("error getting admin stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		if s.visitors == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visitor tracking disabled"})
			return
		}
		stats, err := s.visitors.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin stats exported", zap.String("visitor", hashIP(c.ClientIP(), s.salt)))
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.visitors == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Nothing to clean up", "removed": 0})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		n, err := s.visitors.CleanupVisitors(ctx)
		if err != nil {
			s.logger.Error("privacy cleanup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})
}
