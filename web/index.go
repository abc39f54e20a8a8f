package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/docs"
)

func SetupIndex(router *gin.Engine, logger *slog.Logger, service *docs.Service) {
	router.POST("/api/reindex", handleReindex(service, logger))
	router.GET("/api/status", handleStatus(service))
}

func handleReindex(service *docs.Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := service.Reindex(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}

		writeResponse(c, toRebuildJSON(stats), http.StatusOK, nil)
	}
}

func handleStatus(service *docs.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeResponse(c, toStatusJSON(service.Status()), http.StatusOK, nil)
	}
}
