package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
)

// CatalogIndex is the in-memory product snapshot
type CatalogIndex interface {
	Reload(ctx context.Context) error
	Stats() appmatching.IndexStats
}

// CatalogHandler exposes snapshot reload and stats
type CatalogHandler struct {
	BaseHandler
	index CatalogIndex
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(index CatalogIndex) *CatalogHandler {
	return &CatalogHandler{index: index}
}

// Reload godoc
// @Summary      Reload the catalog
// @Description  Rebuild the in-memory catalog snapshot from the product store. On failure the previous snapshot keeps serving.
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=appmatching.IndexStats}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/reload [post]
func (h *CatalogHandler) Reload(c *gin.Context) {
	if err := h.index.Reload(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.index.Stats())
}

// Stats godoc
// @Summary      Catalog statistics
// @Description  Report product count, duplicate codes and load time of the current snapshot
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=appmatching.IndexStats}
// @Router       /catalog/stats [get]
func (h *CatalogHandler) Stats(c *gin.Context) {
	h.Success(c, h.index.Stats())
}
