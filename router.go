package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeroshade/sgvdesk/internal/config"
	"github.com/zeroshade/sgvdesk/internal/monitoring"
	"github.com/zeroshade/sgvdesk/internal/session"
)

func newRouter(cfg *config.Config, store *session.Store) *gin.Engine {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig))
	router.Use(monitoring.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/", SessionMiddleware(store, cfg.SecureCookies))
	api.DELETE("/session", EndSession(store, cfg.SecureCookies))
	addVoucherRoutes(api, cfg)
	addInventoryRoutes(api, cfg)

	return router
}
