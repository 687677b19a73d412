package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cgdb-project/cgdb/internal/access"
	iauth "github.com/cgdb-project/cgdb/internal/auth"
	"github.com/cgdb-project/cgdb/internal/handlers"
	"github.com/cgdb-project/cgdb/internal/middleware"
	"github.com/cgdb-project/cgdb/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	engine, err := access.NewEngine(db)
	if err != nil {
		return nil, err
	}
	hook, err := access.NewHook(db)
	if err != nil {
		return nil, err
	}

	projectSvc, err := services.NewProjectService(db, engine, hook)
	if err != nil {
		return nil, err
	}
	locationSvc, err := services.NewLocationService(db, engine, hook)
	if err != nil {
		return nil, err
	}
	sampleSvc, err := services.NewSampleService(db, engine, hook)
	if err != nil {
		return nil, err
	}
	grantSvc, err := services.NewGrantService(db, engine)
	if err != nil {
		return nil, err
	}
	authSvc, err := iauth.NewAuthService(db, jwt)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Public endpoints
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(db, authSvc)
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	registerProjectRoutes(api, handlers.NewProjectHandler(projectSvc), handlers.NewGrantHandler(grantSvc))
	registerLocationRoutes(api, handlers.NewLocationHandler(locationSvc))
	registerSampleRoutes(api, handlers.NewSampleHandler(sampleSvc))

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
