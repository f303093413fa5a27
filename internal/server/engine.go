package server

import (
	"log/slog"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/metrics"
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/asianpilots/volunteer-manager/internal/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// GetEngine returns a gin engine with the middleware chain every route shares plus the health and
// metrics endpoints. Routes are registered by the caller.
func GetEngine(logger *slog.Logger, siteURL string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{siteURL}
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("authorization")
	r.Use(cors.New(corsConfig))

	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger, "/health", "/metrics"))
	r.Use(metrics.Middleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}
