package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/handlers"
)

func registerProjectRoutes(api *gin.RouterGroup, projects *handlers.ProjectHandler, grants *handlers.GrantHandler) {
	group := api.Group("/projects")
	{
		group.GET("", projects.List)
		group.POST("", projects.Create)
		group.GET("/:id", projects.Get)
		group.PATCH("/:id", projects.Update)
		group.DELETE("/:id", projects.Delete)

		group.GET("/:id/grants", grants.ListProjectGrants)
		group.POST("/:id/grants", grants.GrantProject)
	}

	// Per-record grants for kinds without project ownership.
	api.POST("/records/:kind/:id/grants", grants.GrantRecord)
}
