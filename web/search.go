package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/mdindex/docs"
)

type SearchRequest struct {
	Query string `form:"q" validate:"max=1000"`
	Scope string `form:"scope" validate:"omitempty,oneof=name content glob fuzzy"`
}

func SetupSearch(router *gin.Engine, logger *slog.Logger, service *docs.Service, validator *Validator) {
	router.GET("/api/search", handleSearch(service, logger, validator))
}

func handleSearch(service *docs.Service, logger *slog.Logger, validator *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if !bindQuery(c, logger, validator, &request) {
			return
		}

		result, err := service.Search(c.Request.Context(), request.Query, request.Scope)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		writeResponse(c, toSearchJSON(result), http.StatusOK, nil)
	}
}
