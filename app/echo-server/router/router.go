package router

import (
	"bestinclick/internal/middleware"
	"bestinclick/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetBehaviorRoutes(api *echo.Group, handler *rest.BehaviorHandler) {
	behaviors := api.Group("/behaviors", middleware.OptionalAuth())
	behaviors.POST("", handler.Record)
}

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, tracking *rest.TrackingHandler) {
	reco := api.Group("/recommendations")
	reco.GET("", handler.Recommend, middleware.OptionalAuth())
	reco.POST("/feedback", tracking.Feedback, middleware.OptionalAuth())
	reco.GET("/sessions/:id/performance", tracking.Performance, middleware.AuthMiddleware())
}

func SetProductRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	products := api.Group("/products")
	products.GET("/trending", handler.Trending)
	products.GET("/:id/similar", handler.Similar)
}

func SetAdminRoutes(api *echo.Group, handler *rest.JobHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.POST("/jobs/:job", handler.Trigger)
}

func SetMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
