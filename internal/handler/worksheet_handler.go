package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planbook-app/planbook-api/internal/models"
	"github.com/planbook-app/planbook-api/internal/service"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
	"github.com/planbook-app/planbook-api/pkg/response"
)

// WorksheetHandler wires HTTP endpoints to the worksheet service.
type WorksheetHandler struct {
	service *service.WorksheetService
}

// NewWorksheetHandler creates a new handler.
func NewWorksheetHandler(svc *service.WorksheetService) *WorksheetHandler {
	return &WorksheetHandler{service: svc}
}

// Generate godoc
// @Summary Generate worksheets for a lesson
// @Description Builds the four differentiation tiers and queues PDF rendering
// @Tags Worksheets
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id}/worksheets [post]
func (h *WorksheetHandler) Generate(c *gin.Context) {
	worksheets, err := h.service.GenerateForLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, worksheets)
}

// ListByLesson godoc
// @Summary List a lesson's worksheets
// @Tags Worksheets
// @Produce json
// @Param id path string true "Lesson ID"
// @Param tier query string false "Filter to a single tier"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id}/worksheets [get]
func (h *WorksheetHandler) ListByLesson(c *gin.Context) {
	if tier := c.Query("tier"); tier != "" {
		worksheet, err := h.service.GetByLessonAndTier(c.Request.Context(), c.Param("id"), models.WorksheetTier(tier))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, []models.Worksheet{*worksheet}, nil)
		return
	}

	list, err := h.service.ListByLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Get godoc
// @Summary Get a worksheet with its questions
// @Tags Worksheets
// @Produce json
// @Param id path string true "Worksheet ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /worksheets/{id} [get]
func (h *WorksheetHandler) Get(c *gin.Context) {
	worksheet, questions, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"worksheet": worksheet, "questions": questions}, nil)
}

// SignedURL godoc
// @Summary Issue a worksheet download token
// @Description Returns a time-limited token for downloading the rendered PDF
// @Tags Worksheets
// @Produce json
// @Param id path string true "Worksheet ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /worksheets/{id}/download-url [get]
func (h *WorksheetHandler) SignedURL(c *gin.Context) {
	token, expiresAt, err := h.service.SignedDownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token, "expires_at": expiresAt}, nil)
}

// Download godoc
// @Summary Download a worksheet PDF
// @Description Streams the PDF for a valid download token; no auth required
// @Tags Worksheets
// @Produce application/pdf
// @Param token query string true "Download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /worksheets/download [get]
func (h *WorksheetHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	file, err := h.service.OpenByToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat worksheet file"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+info.Name()+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
