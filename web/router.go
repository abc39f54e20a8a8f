// Package web serves the document tree over HTTP.
package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/render"
)

// NewRouter builds the gin engine with every route registered.
func NewRouter(logger *slog.Logger, service *docs.Service, renderer *render.Renderer, validator *Validator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))

	router.GET("/health", health())

	SetupDocuments(router, logger, service, renderer, validator)
	SetupSearch(router, logger, service, validator)
	SetupIndex(router, logger, service)

	return router
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}
