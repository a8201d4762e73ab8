// Package http assembles the gin router and the HTTP server lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
	"github.com/shelfswap/shelfswap/internal/interfaces/http/handlers"
	"github.com/shelfswap/shelfswap/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router needs. MetricsHandler and
// Collector are nil when metrics are disabled.
type RouterDeps struct {
	Analytics      *handlers.AnalyticsHandler
	Valuation      *handlers.ValuationHandler
	Health         *handlers.HealthHandler
	Logger         logging.Logger
	Metrics        middleware.MetricsCollector
	MetricsHandler http.Handler
	MetricsPath    string
	Mode           string
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(ginMode(deps.Mode))

	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger, deps.Metrics))

	r.GET("/healthz", deps.Health.Live)
	r.GET("/readyz", deps.Health.Ready)
	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(deps.MetricsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books/:id")
		books.GET("/analytics", deps.Analytics.Overview)
		books.GET("/trend", deps.Analytics.Trend)
		books.GET("/journey", deps.Analytics.Journey)
		books.GET("/discussions", deps.Analytics.Discussions)
		books.GET("/value", deps.Valuation.Value)
		books.POST("/revalue", deps.Valuation.Revalue)
	}

	return r
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
