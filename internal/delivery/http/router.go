package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AllowedOrigins []string
	// EnableMetrics публикует /metrics. Регистрирует коллекторы глобально, поэтому включается один раз на процесс.
	EnableMetrics bool
}

// NewRouter собирает gin.Engine со всеми middleware и маршрутами.
func NewRouter(logger *zap.Logger, cfg RouterConfig, handler *StoryHandler) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(ZapLogger(logger.Named("HTTP")))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	handler.RegisterRoutes(router)

	if cfg.EnableMetrics {
		p := ginprometheus.NewPrometheus("gin")
		p.Use(router)
	}

	return router
}
