package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jasha9/digitaltwin/internal/middleware"
)

type RouterDeps struct {
	Twin       *TwinHandler
	AdminToken string
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/twin/query", deps.Twin.Query)
	api.GET("/twin/connectivity", deps.Twin.Connectivity)

	adminGroup := api.Group("")
	adminGroup.Use(middleware.AdminAuth(deps.AdminToken))
	adminGroup.GET("/twin/cache/stats", deps.Twin.CacheStats)
	adminGroup.POST("/twin/cache/invalidate", deps.Twin.CacheInvalidate)
	adminGroup.POST("/twin/cache/purge", deps.Twin.CachePurge)
}
