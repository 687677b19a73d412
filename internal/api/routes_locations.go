package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/handlers"
)

func registerLocationRoutes(api *gin.RouterGroup, locations *handlers.LocationHandler) {
	group := api.Group("/locations")
	{
		group.GET("", locations.List)
		group.POST("", locations.Create)
		group.GET("/:id", locations.Get)
		group.PATCH("/:id", locations.Update)
		group.DELETE("/:id", locations.Delete)
	}
}
