package v1

import (
	"errors"
	"net/http"

	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/apperror"
	"go-hr-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadUC domain.UploadUsecase
}

func NewUploadHandler(r *gin.RouterGroup, uploadUC domain.UploadUsecase, limit gin.HandlerFunc) {
	handler := &UploadHandler{uploadUC: uploadUC}

	upload := r.Group("/upload")
	{
		upload.POST("", limit, handler.Upload)
		upload.GET("/:file_id", handler.GetInfo)
	}
}

// Upload godoc
// @Summary Upload a resume
// @Description Stores a PDF or DOCX resume temporarily and returns a file_id for registration
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume (PDF or DOCX)"
// @Success 201 {object} response.Response{data=domain.UploadResult}
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.Validation("No file was submitted.", map[string]string{"file": "No file was submitted."}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.Error(apperror.BadRequestWrap("Could not read uploaded file", err))
		return
	}
	defer f.Close()

	result, err := h.uploadUC.Upload(c, domain.UploadFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest {
			security.DefaultLogger().Log(security.AuditEvent{
				Event:     security.EventUploadRejected,
				IP:        c.ClientIP(),
				Method:    c.Request.Method,
				Path:      c.FullPath(),
				RequestID: c.GetString(response.RequestIDKey),
				Details:   map[string]any{"filename": fh.Filename, "size": fh.Size, "reason": appErr.Message},
			})
		}
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "File uploaded successfully", result)
}

// GetInfo godoc
// @Summary Get upload info
// @Tags upload
// @Produce json
// @Param file_id path string true "File ID"
// @Success 200 {object} response.Response{data=domain.UploadInfo}
// @Failure 404 {object} response.Response
// @Router /upload/{file_id} [get]
func (h *UploadHandler) GetInfo(c *gin.Context) {
	info, err := h.uploadUC.GetInfo(c, c.Param("file_id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "File info", info)
}
