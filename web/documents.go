package web

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/render"
)

type TreeRequest struct {
	Path string `form:"path" validate:"max=4096,safe_path"`
}

type FilesRequest struct {
	Pattern string `form:"pattern" validate:"max=1000,safe_path"`
}

type documentRequest struct {
	Path string `validate:"required,max=4096,safe_path"`
}

func SetupDocuments(router *gin.Engine, logger *slog.Logger, service *docs.Service, renderer *render.Renderer, validator *Validator) {
	router.GET("/api/tree", handleTree(service, logger, validator))
	router.GET("/api/files", handleFiles(service, logger, validator))
	router.GET("/api/raw/*path", handleRaw(service, logger, validator))
	router.GET("/view/*path", handleView(service, renderer, logger, validator))
}

func handleTree(service *docs.Service, logger *slog.Logger, validator *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := TreeRequest{}
		if !bindQuery(c, logger, validator, &request) {
			return
		}

		listing, err := service.List(request.Path)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		writeResponse(c, toTreeJSON(listing), http.StatusOK, nil)
	}
}

func handleFiles(service *docs.Service, logger *slog.Logger, validator *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := FilesRequest{}
		if !bindQuery(c, logger, validator, &request) {
			return
		}

		records, err := service.Files(c.Request.Context(), request.Pattern)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		writeResponse(c, toFilesJSON(records), http.StatusOK, nil)
	}
}

func handleRaw(service *docs.Service, logger *slog.Logger, validator *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := readDocument(c, service, logger, validator)
		if !ok {
			return
		}

		c.Data(http.StatusOK, "text/markdown; charset=utf-8", doc.Content)
	}
}

func handleView(service *docs.Service, renderer *render.Renderer, logger *slog.Logger, validator *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := readDocument(c, service, logger, validator)
		if !ok {
			return
		}

		var page bytes.Buffer
		if err := renderer.Page(&page, doc.Record.RelativePath, doc.Content); err != nil {
			writeError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
	}
}

func readDocument(c *gin.Context, service *docs.Service, logger *slog.Logger, validator *Validator) (docs.Document, bool) {
	request := documentRequest{Path: c.Param("path")}
	if err := validator.Validate(request); err != nil {
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{err.Error()})
		return docs.Document{}, false
	}

	doc, err := service.Read(c.Request.Context(), request.Path)
	if err != nil {
		writeError(c, logger, err)
		return docs.Document{}, false
	}
	return doc, true
}

// bindQuery binds and validates query parameters, writing a 422 response on failure.
func bindQuery(c *gin.Context, logger *slog.Logger, validator *Validator, request any) bool {
	if err := c.ShouldBindQuery(request); err != nil {
		logger.Warn("could not extract expected params from request", "path", c.Request.URL.Path, "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
		return false
	}

	if err := validator.Validate(request); err != nil {
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{err.Error()})
		return false
	}
	return true
}
