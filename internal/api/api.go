// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/platable/insights-backend/internal/api/handlers"
	"github.com/platable/insights-backend/internal/api/middleware"
	"github.com/platable/insights-backend/internal/cache"
	"github.com/platable/insights-backend/internal/config"
	"github.com/platable/insights-backend/internal/session"
)

// NewRouter wires the dashboard API around the session store.
func NewRouter(cfg *config.Config, store *session.Store, kpiCache cache.KPICache) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(buildCORSConfig(cfg.Server.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	dataHandler := handlers.NewDataHandler(store, kpiCache, cfg.App.UploadDir, cfg.App.MaxUploadBytes)
	dashboardHandler := handlers.NewDashboardHandler(store, kpiCache, cfg.App.DefaultTopN, cfg.App.MaskPIIInGrids)

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.POST("/upload", dataHandler.Upload)
		apiGroup.POST("/refresh", dataHandler.Refresh)
		apiGroup.GET("/status", dataHandler.Status)
		apiGroup.GET("/params", dataHandler.GetParams)
		apiGroup.PUT("/params", dataHandler.UpdateParams)

		apiGroup.GET("/orders", dashboardHandler.GetOrders)
		apiGroup.GET("/dimensions", dashboardHandler.GetDimensions)

		dashboardGroup := apiGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/kpis", dashboardHandler.GetKPIs)
			dashboardGroup.GET("/summary", dashboardHandler.GetSummary)
			dashboardGroup.GET("/timebuckets", dashboardHandler.GetTimeBuckets)
			dashboardGroup.GET("/topn", dashboardHandler.GetTopN)
			dashboardGroup.GET("/funnel", dashboardHandler.GetFunnel)
			dashboardGroup.GET("/heatmap", dashboardHandler.GetHeatmap)
			dashboardGroup.GET("/daily", dashboardHandler.GetDaily)
		}
	}

	return router
}

func buildCORSConfig(allowedOrigins []string) cors.Config {
	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}

	return corsConfig
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
