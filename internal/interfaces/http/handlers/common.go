// Package handlers implements the HTTP API surface of the engine.
package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shelfswap/shelfswap/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an error onto the unified error body. AppError codes
// carry their own HTTP status; anything else reports 500 without leaking
// internals.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var resp ErrorResponse
	status := http.StatusInternalServerError
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		status = ae.Code.HTTPStatus()
		resp = ErrorResponse{
			Code:    ae.Code.String(),
			Message: ae.Message,
			Detail:  ae.Detail,
		}
	} else {
		resp = ErrorResponse{
			Code:    errors.ErrCodeInternal.String(),
			Message: "internal server error",
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

// queryInt parses an optional integer query parameter, returning fallback
// for absent or malformed values.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
