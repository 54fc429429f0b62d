package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/dto"
)

// Pinger reports whether a dependency answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health
// @Description Health check response
type HealthResponse struct {
	Status   string            `json:"status" example:"ok"`
	Version  string            `json:"version,omitempty" example:"1.0.0"`
	Checks   map[string]string `json:"checks"`
	Products int               `json:"products" example:"1250"`
}

// HealthHandler reports database reachability and catalog readiness
type HealthHandler struct {
	BaseHandler
	db      Pinger
	index   CatalogIndex
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, index CatalogIndex, version string) *HealthHandler {
	return &HealthHandler{db: db, index: index, version: version}
}

// Health godoc
// @Summary      Health check
// @Description  Answer 200 when the database responds and the catalog is loaded, 503 otherwise
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse,error=dto.ErrorInfo}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Version: h.version, Checks: map[string]string{}}

	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = err.Error()
	} else {
		resp.Checks["database"] = "ok"
	}

	stats := h.index.Stats()
	resp.Products = stats.Products
	if stats.Loaded {
		resp.Checks["catalog"] = "ok"
	} else {
		resp.Status = "degraded"
		resp.Checks["catalog"] = "not loaded"
	}

	if resp.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Service is degraded"},
		})
		return
	}
	h.Success(c, resp)
}
