package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the middleware chain and all routes
func NewRouter(handler *Handler, jwtSecret string, allowedOrigins []string) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(cors.New(corsConfig(allowedOrigins)))
	router.Use(JWTSecretMiddleware(jwtSecret))

	handler.SetupRoutes(router)
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.MaxAge = 12 * time.Hour

	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
