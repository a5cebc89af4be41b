package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(handler *Handler) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Report page and images.
	router.GET("/", handler.GetReport)
	router.Static("/images", handler.ImageDir())

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/manifest", handler.GetManifest)
	v1.GET("/images", handler.GetImages)
	v1.GET("/probe", handler.GetProbe)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
