package v1

import (
	"net/http"

	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
}

func NewHealthHandler(r *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	r.GET("/health", handler.Check)
}

// Check godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.HealthStatus}
// @Failure      503  {object}  response.Response{data=domain.HealthStatus}
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status, err := h.healthUC.Check(c)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success:   false,
			Message:   "Service temporarily unavailable",
			Data:      status,
			RequestID: c.GetString(response.RequestIDKey),
		})
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
