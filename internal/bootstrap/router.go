package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/pmdesk/pm-backend/internal/api/http"
	"github.com/pmdesk/pm-backend/internal/api/http/middleware"
	"github.com/pmdesk/pm-backend/internal/api/http/routes"
	projecthttp "github.com/pmdesk/pm-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	Redis       *redis.Client
	Logger      *zap.Logger

	AllowedOrigins []string
	RateLimit      float64
	RateLimitBurst int

	Projects *projecthttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(dep.Logger),
		cors.New(cors.Config{
			AllowOrigins:     dep.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.ErrorHandler(dep.Logger),
	)

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limits []gin.HandlerFunc
	if dep.RateLimit > 0 {
		limits = append(limits, middleware.NewRateLimiter(dep.RateLimit, dep.RateLimitBurst).Middleware())
	}

	dep.Projects.Register(r.Group("/project", limits...))
	routes.RegisterV1(r, routes.V1Deps{Projects: dep.Projects, Middleware: limits})

	return r
}
