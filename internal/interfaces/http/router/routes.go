package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/logger"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/dto"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/handler"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// EngineConfig controls the global middleware chain
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with request ids, panic recovery, tracing,
// access logging and a body limit, in that order.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	})...)
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	middleware.SetupValidator()
	return engine, nil
}

// Handlers groups the endpoint handlers mounted by RegisterRoutes
type Handlers struct {
	Order    *handler.OrderHandler
	Matching *handler.MatchingHandler
	Catalog  *handler.CatalogHandler
	Health   *handler.HealthHandler
}

// RegisterRoutes mounts every endpoint under /api/v1
func RegisterRoutes(engine *gin.Engine, h Handlers) {
	r := NewRouter(engine, WithAPIVersion("v1"))

	orderRoutes := NewDomainGroup("order", "/orders")
	orderRoutes.POST("", h.Order.Create)
	orderRoutes.GET("/:id", h.Order.Get)
	orderRoutes.POST("/:id/match", h.Order.Match)
	r.Register(orderRoutes)

	itemRoutes := NewDomainGroup("order-item", "/order-items")
	itemRoutes.GET("/review", h.Matching.Review)
	itemRoutes.POST("/:id/match", h.Matching.Process)
	itemRoutes.POST("/:id/confirm", h.Matching.Confirm)
	itemRoutes.POST("/:id/reject", h.Matching.Reject)
	itemRoutes.POST("/:id/reprocess", h.Matching.Reprocess)
	r.Register(itemRoutes)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/reload", h.Catalog.Reload)
	catalogRoutes.GET("/stats", h.Catalog.Stats)
	r.Register(catalogRoutes)

	healthRoutes := NewDomainGroup("health", "/health")
	healthRoutes.GET("", h.Health.Health)
	r.Register(healthRoutes)

	r.Setup()
}
