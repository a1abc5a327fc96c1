package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chefrelay/internal/journal"
)

// RouterConfig holds what NewRouter needs besides the handler.
type RouterConfig struct {
	CORSOrigins []string
	Journal     journal.Recorder
	Logger      *zap.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rec := cfg.Journal
	if rec == nil {
		rec = journal.Nop{}
	}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), Recovery(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	// WebP is already compressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/generate-image"})))

	r.GET("/healthz", h.Health)

	api := r.Group("/api", Journal(rec, logger))
	api.GET("/profiles", h.Profiles)
	api.POST("/recipe", h.GenerateRecipe)
	api.POST("/recipe/suggestions", h.Suggestions)
	api.POST("/generate-image", h.GenerateImage)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
