package projection

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/thosangs/revroll/internal/core/errors"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/summaries/:model", s.HandleQuerySummaries)
}

// HandleQuerySummaries handles GET /v1/summaries/:model
// Query parameters: start, end, rollup
func (s *Service) HandleQuerySummaries(c *gin.Context) {
	var uri struct {
		Model string `uri:"model" binding:"required"`
	}
	var query struct {
		Start  time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
		End    time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
		Rollup string    `form:"rollup"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	req := SummaryQueryRequest{
		Model:  uri.Model,
		Start:  query.Start,
		End:    query.End,
		Rollup: query.Rollup,
	}

	resp, err := s.QuerySummaries(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownModel):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnknownModelError,
				Message:   "Unknown summary model",
				Details:   err.Error(),
			})
		case errors.Is(err, ErrInvalidQuery):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   "Invalid summary query",
				Details:   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to query summaries",
				Details:   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
