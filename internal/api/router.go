package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/contextual/internal/api/handler"
	"github.com/timmy/contextual/internal/api/middleware"
	"github.com/timmy/contextual/internal/app"
	"github.com/timmy/contextual/internal/logger"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(a *app.App, log *logger.Logger) *gin.Engine {
	switch a.Config.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.Metrics(a.Metrics))
	r.Use(middleware.CORS(a.Config.Server.CORS))

	healthHandler := handler.NewHealthHandler(a.Search, a.Classifier)
	searchHandler := handler.NewSearchHandler(a.Search)
	contextHandler := handler.NewContextHandler(a.Classifier, a.Catalog)
	adminHandler := handler.NewAdminHandler(a.Search, a.Classifier)
	favoriteHandler := handler.NewFavoriteHandler(a.Favorites)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/search", searchHandler.Search)
		v1.POST("/context", contextHandler.Analyze)

		v1.GET("/trending", contextHandler.Trending)
		v1.GET("/trending/gifs", searchHandler.TrendingGifs)

		v1.GET("/favorites", favoriteHandler.List)
		v1.POST("/favorites", favoriteHandler.Add)
		v1.DELETE("/favorites/:media_id", favoriteHandler.Remove)

		admin := v1.Group("/admin")
		admin.POST("/reset", adminHandler.Reset)
		admin.GET("/stats", adminHandler.Stats)
	}

	return r
}
