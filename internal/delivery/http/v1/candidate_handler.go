package v1

import (
	"net/http"

	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

// RegisterResponse is returned after a successful application
type RegisterResponse struct {
	CandidateID string `json:"candidate_id"`
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, limit gin.HandlerFunc) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	candidates := r.Group("/candidates")
	{
		candidates.POST("", limit, handler.Register)
		candidates.GET("/:id/status", handler.GetStatus)
	}
}

// Register godoc
// @Summary      Submit an application
// @Description  Registers a candidate using a previously uploaded resume (file_id)
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RegisterCandidateRequest  true  "Application"
// @Success      201      {object}  response.Response{data=RegisterResponse}
// @Failure      400      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /candidates [post]
func (h *CandidateHandler) Register(c *gin.Context) {
	var req domain.RegisterCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequestWrap("Invalid request body", err))
		return
	}

	candidate, err := h.candidateUC.Register(c, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", RegisterResponse{CandidateID: candidate.ID})
}

// GetStatus godoc
// @Summary      Check application status
// @Description  Public status check with the full status history, oldest first
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID (UUID)"
// @Success      200  {object}  response.Response{data=domain.CandidateStatusView}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/status [get]
func (h *CandidateHandler) GetStatus(c *gin.Context) {
	id, ok := candidateID(c)
	if !ok {
		return
	}

	candidate, err := h.candidateUC.GetStatus(c, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application status", candidate.StatusView())
}

// candidateID reads the :id path param; non-UUID values are rejected with 400
func candidateID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.BadRequestWrap("Invalid candidate ID", err))
		return "", false
	}
	return id.String(), true
}
