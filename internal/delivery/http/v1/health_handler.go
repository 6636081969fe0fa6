package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/usecase"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func NewHealthHandler(r gin.IRoutes, healthUC usecase.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	r.GET("/health", handler.Health)
}

// Health godoc
// @Summary      Service health
// @Description  Probes storage and, when configured, Redis. Redis failures only degrade the status.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	checks, healthy := h.healthUC.Check(c.Request.Context())
	if !healthy {
		response.JSON(c, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Checks: checks})
		return
	}
	response.JSON(c, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}
