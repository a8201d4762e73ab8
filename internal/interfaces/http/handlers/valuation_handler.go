package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfswap/shelfswap/internal/application/valuation"
	"github.com/shelfswap/shelfswap/pkg/errors"
	"github.com/shelfswap/shelfswap/pkg/types/common"
)

// ValuationHandler serves point-value computation endpoints.
type ValuationHandler struct {
	engine *valuation.Engine
}

// NewValuationHandler constructs a ValuationHandler.
func NewValuationHandler(engine *valuation.Engine) *ValuationHandler {
	return &ValuationHandler{engine: engine}
}

// Value handles GET /api/v1/books/:id/value. It computes a fresh valuation
// without persisting anything.
func (h *ValuationHandler) Value(c *gin.Context) {
	id, err := parseBookID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	v, err := h.engine.ComputeValue(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Revalue handles POST /api/v1/books/:id/revalue. It computes, persists,
// and announces a fresh point value.
func (h *ValuationHandler) Revalue(c *gin.Context) {
	id, err := parseBookID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	v, err := h.engine.RevalueBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func parseBookID(raw string) (common.ID, error) {
	id, err := common.ParseID(raw)
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidBookID, "malformed book id").WithDetail(raw)
	}
	return id, nil
}
