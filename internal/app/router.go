package app

import (
	"github.com/gin-gonic/gin"

	"github.com/timlawrenz/fluffy-train-sub000/internal/http/middleware"
)

func wireRouter(h Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/healthcheck", h.Health.Health)

	api := router.Group("/api")
	{
		api.GET("/health", h.Health.Health)

		api.GET("/personas", h.Persona.List)
		api.POST("/personas/:id/selection/preview", h.Persona.PreviewSelection)
		api.GET("/personas/:id/gaps", h.Persona.GapReport)
		api.GET("/personas/:id/state", h.Persona.GetState)
		api.DELETE("/personas/:id/state", h.Persona.ResetState)

		api.POST("/config/reload", h.Config.Reload)
	}

	return router
}
