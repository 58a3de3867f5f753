package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/minaarly/internal/authz"
	"github.com/Nixie-Tech-LLC/minaarly/internal/config"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/auth/endpoints"
	manageapi "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/manage/endpoints"
	publicapi "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/endpoints"
	"github.com/Nixie-Tech-LLC/minaarly/internal/metrics"
	"github.com/Nixie-Tech-LLC/minaarly/internal/notify"
	"github.com/Nixie-Tech-LLC/minaarly/internal/payment"
	"github.com/Nixie-Tech-LLC/minaarly/internal/storage"
	"github.com/Nixie-Tech-LLC/minaarly/internal/viewport"
)

// Services bundles what the route modules depend on.
type Services struct {
	Store    db.Store
	Fetcher  viewport.Fetcher
	Storage  storage.Storage
	Changes  *notify.Changes
	Payments *payment.Service
}

// RegisterRoutes sets up all application routes. The returned live map
// controller owns the open map sockets so they can be closed on shutdown.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc Services) *publicapi.LiveController {
	allowOrigin := originChecker(cfg)

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: allowOrigin,
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))
	r.Use(metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	var provider authz.Provider = svc.Store
	viewportCfg := viewport.Config{QuietPeriod: cfg.MapDebounce, FetchLimit: cfg.MapFetchLimit}
	live := publicapi.NewLiveController(svc.Store, svc.Fetcher, viewportCfg, requestOriginChecker(allowOrigin))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		publicapi.MosqueModule(svc.Store, svc.Fetcher, cfg.MapFetchLimit),
		live.Module(),
		publicapi.PaymentModule(svc.Payments),
		authapi.AuthPublicModule(cfg.JWTSecret, svc.Store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     svc.Store,
	},
		// session endpoints that require auth
		authapi.AuthSessionModule(cfg.JWTSecret, svc.Store, provider),
		manageapi.MosqueManageModule(svc.Store, svc.Storage, provider, svc.Changes),
		manageapi.PlatformAdminModule(svc.Store, provider, svc.Changes),
	)

	// Static content
	if !cfg.UseSpaces {
		r.Static(uploadsPath, cfg.UploadDir)
	}
	return live
}
