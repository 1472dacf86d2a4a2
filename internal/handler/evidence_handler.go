package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planbook-app/planbook-api/internal/service"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
	"github.com/planbook-app/planbook-api/pkg/response"
)

// EvidenceHandler wires HTTP endpoints to the evidence service.
type EvidenceHandler struct {
	service *service.EvidenceService
}

// NewEvidenceHandler creates a new handler.
func NewEvidenceHandler(svc *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{service: svc}
}

// Log godoc
// @Summary Log evidence
// @Description Record an observation and recompute the affected progress record
// @Tags Evidence
// @Accept json
// @Produce json
// @Param payload body service.LogEvidenceRequest true "Evidence payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /evidence [post]
func (h *EvidenceHandler) Log(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.LogEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evidence payload"))
		return
	}

	evidence, err := h.service.Log(c.Request.Context(), claims.TeacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, evidence)
}

// Get godoc
// @Summary Get evidence
// @Tags Evidence
// @Produce json
// @Param id path string true "Evidence ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evidence/{id} [get]
func (h *EvidenceHandler) Get(c *gin.Context) {
	evidence, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evidence, nil)
}

// Update godoc
// @Summary Update evidence
// @Description Partially edit an observation and recompute the affected progress record
// @Tags Evidence
// @Accept json
// @Produce json
// @Param id path string true "Evidence ID"
// @Param payload body service.UpdateEvidenceRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evidence/{id} [patch]
func (h *EvidenceHandler) Update(c *gin.Context) {
	var req service.UpdateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	evidence, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, evidence, nil)
}

// Delete godoc
// @Summary Delete evidence
// @Description Remove an observation and recompute the affected progress record
// @Tags Evidence
// @Produce json
// @Param id path string true "Evidence ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evidence/{id} [delete]
func (h *EvidenceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByStudent godoc
// @Summary List a student's evidence
// @Tags Evidence
// @Produce json
// @Param id path string true "Student ID"
// @Param learning_experience_id query string false "Filter to one learning experience"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/evidence [get]
func (h *EvidenceHandler) ListByStudent(c *gin.Context) {
	studentID := c.Param("id")
	if leID := c.Query("learning_experience_id"); leID != "" {
		list, err := h.service.ListByPair(c.Request.Context(), studentID, leID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, list, nil)
		return
	}

	list, err := h.service.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ListMine godoc
// @Summary List evidence logged by the current teacher
// @Tags Evidence
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /evidence [get]
func (h *EvidenceHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	list, err := h.service.ListByTeacher(c.Request.Context(), claims.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}
