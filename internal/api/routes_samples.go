package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/handlers"
)

func registerSampleRoutes(api *gin.RouterGroup, samples *handlers.SampleHandler) {
	group := api.Group("/samples")
	{
		group.GET("", samples.List)
		group.POST("", samples.Create)
		group.GET("/:id", samples.Get)
		group.PATCH("/:id", samples.Update)
		group.DELETE("/:id", samples.Delete)
	}
}
