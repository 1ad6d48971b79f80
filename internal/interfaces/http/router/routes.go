package router

import (
	"github.com/gin-gonic/gin"
	"github.com/organicmart/storefront/internal/infrastructure/logger"
	"github.com/organicmart/storefront/internal/interfaces/http/handler"
	"github.com/organicmart/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// CartRoutes mounts the cart endpoints under /cart. Every route resolves
// the shopper's session first; a missing X-Cart-Session header is issued.
func CartRoutes(h *handler.CartHandler) *DomainGroup {
	cart := NewDomainGroup("cart", "/cart").
		Use(middleware.CartSession(middleware.CartSessionConfig{Issue: true}))

	cart.GET("", h.GetCart).
		DELETE("", h.Clear).
		POST("/buy-now", h.BuyNow).
		GET("/checkout", h.CheckoutSummary).
		POST("/drawer/:action", h.Drawer).
		DELETE("/session", h.Abandon)

	cart.Group("items", "/items").
		POST("", h.AddItem).
		PUT("/:product_id/quantity", h.UpdateQuantity).
		DELETE("/:product_id", h.RemoveItem)

	return cart
}

// SystemRoutes mounts ping and system info. /health lives outside the
// versioned prefix and is registered by NewEngine.
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/ping", h.Ping)
	system.Group("system", "/system").GET("/info", h.GetSystemInfo)
	return system
}

// Handlers are the HTTP handlers served by the engine
type Handlers struct {
	Cart   *handler.CartHandler
	System *handler.SystemHandler
}

// EngineConfig holds the middleware settings of the engine
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	Metrics        middleware.HTTPMetricsConfig
	Profiling      middleware.ProfilingConfig
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the full middleware chain and all
// storefront routes.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	engine.Use(
		middleware.HTTPMetrics(cfg.Metrics),
		middleware.ProfilingWithConfig(cfg.Profiling),
	)

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine)
	if h.System != nil {
		r.Register(SystemRoutes(h.System))
	}
	if h.Cart != nil {
		r.Register(CartRoutes(h.Cart))
	}
	r.Setup()

	return engine, nil
}
