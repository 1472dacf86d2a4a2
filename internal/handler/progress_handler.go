package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planbook-app/planbook-api/internal/service"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
	"github.com/planbook-app/planbook-api/pkg/response"
)

// ProgressHandler wires HTTP endpoints to the progress and export services.
type ProgressHandler struct {
	service *service.ProgressService
	exports *service.ExportService
}

// NewProgressHandler creates a new handler.
func NewProgressHandler(svc *service.ProgressService, exports *service.ExportService) *ProgressHandler {
	return &ProgressHandler{service: svc, exports: exports}
}

// Get godoc
// @Summary Get progress for a pair
// @Description Returns the aggregated progress record for one student and learning experience
// @Tags Progress
// @Produce json
// @Param studentId path string true "Student ID"
// @Param leId path string true "Learning experience ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /progress/students/{studentId}/experiences/{leId} [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	progress, err := h.service.Get(c.Request.Context(), c.Param("studentId"), c.Param("leId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// ListByStudent godoc
// @Summary List a student's progress records
// @Tags Progress
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /progress/students/{studentId} [get]
func (h *ProgressHandler) ListByStudent(c *gin.Context) {
	list, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ListByLearningExperience godoc
// @Summary List class progress for a learning experience
// @Description Cached read of every student's progress against one learning experience
// @Tags Progress
// @Produce json
// @Param leId path string true "Learning experience ID"
// @Success 200 {object} response.Envelope
// @Router /progress/experiences/{leId} [get]
func (h *ProgressHandler) ListByLearningExperience(c *gin.Context) {
	list, err := h.service.ListByLearningExperience(c.Request.Context(), c.Param("leId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Recompute godoc
// @Summary Force a progress recompute
// @Description Re-aggregates the full evidence history for one pair
// @Tags Progress
// @Produce json
// @Param studentId path string true "Student ID"
// @Param leId path string true "Learning experience ID"
// @Success 200 {object} response.Envelope
// @Router /progress/students/{studentId}/experiences/{leId}/recompute [post]
func (h *ProgressHandler) Recompute(c *gin.Context) {
	progress, err := h.service.Recompute(c.Request.Context(), c.Param("studentId"), c.Param("leId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// ExportClass godoc
// @Summary Export class progress
// @Description Download class progress for a learning experience as CSV or PDF
// @Tags Progress
// @Produce octet-stream
// @Param leId path string true "Learning experience ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /progress/experiences/{leId}/export [get]
func (h *ProgressHandler) ExportClass(c *gin.Context) {
	result, err := h.exports.ClassProgress(c.Request.Context(), c.Param("leId"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}

// ExportStudent godoc
// @Summary Export a student's progress report
// @Tags Progress
// @Produce octet-stream
// @Param studentId path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /progress/students/{studentId}/export [get]
func (h *ProgressHandler) ExportStudent(c *gin.Context) {
	result, err := h.exports.StudentProgress(c.Request.Context(), c.Param("studentId"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	format := c.DefaultQuery("format", "csv")
	return service.ExportFormat(format)
}

func serveExport(c *gin.Context, result *service.ExportResult) {
	if result == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
