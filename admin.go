// admin.go - privacy-conscious analytics and the admin area that reads them
package main

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

type adminAuth struct {
	username string
	password string
	token    string // random per process; login hands it out as a cookie
}

func equalConstantTime(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Middleware to check admin authentication
func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !equalConstantTime(token, s.admin.token) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Privacy-conscious visitor tracking middleware. Only page loads count.
func (s *server) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			strings.HasPrefix(path, "/admin/") ||
			strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/favicon") ||
			path == "/healthz" {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.tracker.RecordVisit(ctx, ip, ua, path); err != nil {
				s.log.Warn("error recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

// cleanupOldVisitorData drops analytics older than retention.
func (s *server) cleanupOldVisitorData(ctx context.Context, retention time.Duration) {
	removed, err := s.tracker.Cleanup(ctx, retention)
	if err != nil {
		s.log.Warn("error cleaning up old visitor data", zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("privacy cleanup", zap.Int64("removed", removed), zap.Duration("retention", retention))
	}
}

// startCleanup runs the startup retention sweep in the background. wait
// covers it, so the tracker must stay open until wait returns.
func (s *server) startCleanup(ctx context.Context) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		s.cleanupOldVisitorData(ctx, s.retention)
	}()
}

// Setup all admin routes
func (s *server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		// Evaluate both comparisons so timing does not reveal which one failed.
		userOK := equalConstantTime(username, s.admin.username)
		passOK := equalConstantTime(password, s.admin.password)
		if userOK && passOK {
			c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", false, true)
			s.log.Info("admin login successful")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		s.log.Warn("failed admin login attempt")
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.tracker.Stats(c.Request.Context())
		if err != nil {
			s.log.Error("error loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.tracker.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		s.cleanupOldVisitorData(c.Request.Context(), s.retention)
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete"})
	})
}
