package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atrium-events/core/internal/middleware"
	"github.com/atrium-events/core/internal/modules/auth"
	"github.com/atrium-events/core/internal/modules/content/event"
	"github.com/atrium-events/core/internal/modules/content/page"
	"github.com/atrium-events/core/internal/modules/content/preview"
	"github.com/atrium-events/core/internal/modules/membership"
	"github.com/atrium-events/core/internal/modules/messaging"
	"github.com/atrium-events/core/internal/modules/registration"
	"github.com/atrium-events/core/internal/modules/storage"
	"github.com/atrium-events/core/internal/modules/system"
	pkgredis "github.com/atrium-events/core/internal/pkg/redis"
	"github.com/atrium-events/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "atrium-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/atrium-events/core",
		"issues":   "https://github.com/atrium-events/core/issues",
	}

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	// Local uploads when object storage is off.
	r.Static("/static", a.cfg.StaticDir)

	api := r.Group("/api/v2")
	api.Use(middleware.OptionalAuth(db))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(a.cfgStartTime()).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})
	api.GET("/health", func(c *gin.Context) {
		status := gin.H{"db": "up", "redis": "up"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status["db"] = "down"
			code = http.StatusServiceUnavailable
		}
		if err := rc.Raw().Ping(c.Request.Context()).Err(); err != nil {
			status["redis"] = "down"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	// Settings (also serves public /site)
	settingsSvc := system.NewService(db)
	system.NewHandler(settingsSvc).RegisterRoutes(api, authMW)

	// Auth
	auth.NewHandler(auth.NewService(db, a.logger), db).RegisterRoutes(api, authMW)

	// Content
	eventSvc := event.NewService(db)
	event.NewHandler(eventSvc).RegisterRoutes(api, authMW)
	page.NewHandler(page.NewService(db)).RegisterRoutes(api, authMW)
	preview.NewHandler(a.previews).RegisterRoutes(api, authMW)

	// Registrations
	registrationSvc := registration.NewService(db)
	registration.NewHandler(registrationSvc).RegisterRoutes(api, authMW)

	// Membership
	membership.NewHandler(membership.NewService(db)).RegisterRoutes(api, authMW)

	// Messaging
	messaging.NewHandler(messaging.NewService(registrationSvc, settingsSvc, a.logger)).RegisterRoutes(api, authMW)

	// Uploads
	storageSvc := storage.NewService(db, settingsSvc, a.cfg.StaticDir, a.cfg.BaseURL, a.logger)
	storage.NewHandler(storageSvc).RegisterRoutes(api, authMW)
}
