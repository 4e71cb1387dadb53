package v1

import (
	"fmt"
	"net/http"
	"strings"

	"go-hr-backend/internal/delivery/http/middleware"
	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	candidateUC domain.CandidateUsecase
	statusUC    domain.StatusUsecase
}

func NewAdminHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, statusUC domain.StatusUsecase) {
	handler := &AdminHandler{candidateUC: candidateUC, statusUC: statusUC}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/candidates", handler.ListCandidates)
		admin.GET("/candidates/export", handler.ExportCandidates)
		admin.PATCH("/candidates/:id/status", handler.UpdateStatus)
		admin.GET("/candidates/:id/history", handler.GetHistory)
		admin.GET("/candidates/:id/resume", handler.DownloadResume)
	}
}

// ListCandidates godoc
// @Summary      List candidates
// @Description  Paginated candidate list with department/status filters and ordering
// @Tags         admin
// @Produce      json
// @Param        X-ADMIN         header    string  true   "Must be 1"
// @Param        department      query     string  false  "IT, HR or Finance"
// @Param        current_status  query     string  false  "Status filter"
// @Param        ordering        query     string  false  "created_at, full_name, years_of_experience; prefix - for descending"
// @Param        page            query     int     false  "Page number"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Candidate]}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/candidates [get]
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	var q domain.CandidateListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.BadRequestWrap("Invalid query parameters", err))
		return
	}

	page, err := h.candidateUC.List(c, q)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates", page)
}

// ExportCandidates godoc
// @Summary      Export candidates to Excel
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        X-ADMIN         header    string  true   "Must be 1"
// @Param        department      query     string  false  "IT, HR or Finance"
// @Param        current_status  query     string  false  "Status filter"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/candidates/export [get]
func (h *AdminHandler) ExportCandidates(c *gin.Context) {
	var q domain.CandidateListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.BadRequestWrap("Invalid query parameters", err))
		return
	}

	data, filename, err := h.candidateUC.Export(c, q)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", attachment(filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// UpdateStatus godoc
// @Summary      Change a candidate's status
// @Description  Appends a history entry and moves current_status. Any status may follow any other.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-ADMIN       header    string                      true   "Must be 1"
// @Param        X-ADMIN-USER  header    string                      false  "Recorded as admin_info"
// @Param        id            path      string                      true   "Candidate ID"
// @Param        request       body      domain.StatusUpdateRequest  true   "New status"
// @Success      200  {object}  response.Response{data=domain.CandidateStatusView}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req domain.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequestWrap("Invalid request body", err))
		return
	}

	actor := middleware.ActorFrom(c)
	candidate, err := h.statusUC.Transition(c, actor, c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	audit(c, security.EventStatusChanged, actor, map[string]any{
		"candidate_id": candidate.ID,
		"status":       candidate.CurrentStatus,
	})
	response.Success(c, http.StatusOK, "Status updated", candidate.StatusView())
}

// GetHistory godoc
// @Summary      Candidate status history
// @Tags         admin
// @Produce      json
// @Param        X-ADMIN  header    string  true  "Must be 1"
// @Param        id       path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=[]domain.StatusHistoryEntry}
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id}/history [get]
func (h *AdminHandler) GetHistory(c *gin.Context) {
	history, err := h.candidateUC.History(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status history", history)
}

// DownloadResume godoc
// @Summary      Download a candidate's resume
// @Description  Redirects to a presigned URL when object storage is used, otherwise streams the file
// @Tags         admin
// @Produce      octet-stream
// @Param        X-ADMIN  header    string  true  "Must be 1"
// @Param        id       path      string  true  "Candidate ID"
// @Success      200  {file}    binary
// @Success      302  {string}  string  "Redirect to presigned URL"
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id}/resume [get]
func (h *AdminHandler) DownloadResume(c *gin.Context) {
	dl, err := h.candidateUC.OpenResume(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	audit(c, security.EventResumeDownloaded, middleware.ActorFrom(c), map[string]any{"candidate_id": c.Param("id")})

	if dl.RedirectURL != "" {
		c.Redirect(http.StatusFound, dl.RedirectURL)
		return
	}
	defer dl.Body.Close()
	c.DataFromReader(http.StatusOK, -1, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": attachment(dl.Filename),
	})
}

func audit(c *gin.Context, event security.EventType, actor domain.Actor, details map[string]any) {
	security.DefaultLogger().Log(security.AuditEvent{
		Event:     event,
		Actor:     actor.AdminInfo(),
		IP:        c.ClientIP(),
		Method:    c.Request.Method,
		Path:      c.FullPath(),
		RequestID: c.GetString(response.RequestIDKey),
		Details:   details,
	})
}

var dispositionEscaper = strings.NewReplacer(`"`, "_", "\\", "_", "\r", "", "\n", "")

// attachment builds a Content-Disposition header with a quoted filename
func attachment(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, dispositionEscaper.Replace(filename))
}
