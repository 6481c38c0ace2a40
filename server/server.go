package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/scoring"
	"github.com/seo-optimizer/contentscore/stats"
)

// PageAnalyzer imports and scores published pages
type PageAnalyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*analyzer.Analysis, error)
	GetCacheStats() analyzer.CacheStats
}

// Deps are the services behind the HTTP API. Analyzer, Metrics and
// Limiter are optional.
type Deps struct {
	Engine   *scoring.Engine
	Analyzer PageAnalyzer
	Storage  *stats.Storage
	Traffic  *stats.Traffic
	Metrics  *metrics.Recorder
	Limiter  *middleware.RateLimiter
	Logger   *slog.Logger
	DevMode  bool
}

// Handler serves the scoring API
type Handler struct {
	deps Deps
	log  *slog.Logger
}

// NewRouter builds the gin engine with middleware and every route attached
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Traffic == nil {
		deps.Traffic = stats.NewTraffic()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(deps.Logger))
	r.Use(middleware.CORS())

	var obs middleware.RequestObserver
	if deps.Metrics != nil {
		obs = deps.Metrics
	}
	r.Use(middleware.Stats(deps.Traffic, obs))
	r.Use(middleware.Logger(deps.Logger))

	h := &Handler{deps: deps, log: deps.Logger.With("component", "http")}

	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(deps.Limiter.RateLimit())
	}
	h.RegisterRoutes(api)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

// RegisterRoutes attaches the API routes to a router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.POST("/score", h.score)
	rg.POST("/score/preview", h.preview)
	rg.GET("/rules", h.rules)
	rg.GET("/rules/impact/:field", h.impact)
	rg.GET("/statistics", h.statistics)
	if h.deps.Analyzer != nil {
		rg.POST("/analyze", h.analyze)
	}
}
