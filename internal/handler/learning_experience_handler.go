package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planbook-app/planbook-api/internal/models"
	"github.com/planbook-app/planbook-api/internal/service"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
	"github.com/planbook-app/planbook-api/pkg/response"
)

// LearningExperienceHandler wires HTTP endpoints to the catalogue service.
type LearningExperienceHandler struct {
	service *service.LearningExperienceService
}

// NewLearningExperienceHandler creates a new handler.
func NewLearningExperienceHandler(svc *service.LearningExperienceService) *LearningExperienceHandler {
	return &LearningExperienceHandler{service: svc}
}

// Create godoc
// @Summary Create learning experience
// @Tags LearningExperiences
// @Accept json
// @Produce json
// @Param payload body service.CreateLearningExperienceRequest true "Learning experience payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /learning-experiences [post]
func (h *LearningExperienceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateLearningExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	le, err := h.service.Create(c.Request.Context(), claims.TeacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, le)
}

// Get godoc
// @Summary Get learning experience
// @Tags LearningExperiences
// @Produce json
// @Param id path string true "Learning experience ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /learning-experiences/{id} [get]
func (h *LearningExperienceHandler) Get(c *gin.Context) {
	le, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, le, nil)
}

// Criteria godoc
// @Summary Get success criteria
// @Description Ordered criteria list; a criterion's id is its list position
// @Tags LearningExperiences
// @Produce json
// @Param id path string true "Learning experience ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /learning-experiences/{id}/criteria [get]
func (h *LearningExperienceHandler) Criteria(c *gin.Context) {
	criteria, err := h.service.Criteria(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criteria, nil)
}

// List godoc
// @Summary List learning experiences
// @Tags LearningExperiences
// @Produce json
// @Param unit query int false "Unit number"
// @Param subject query string false "Subject"
// @Param active query bool false "Active only"
// @Success 200 {object} response.Envelope
// @Router /learning-experiences [get]
func (h *LearningExperienceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.LearningExperienceFilter{
		TeacherID: claims.TeacherID,
		Subject:   c.Query("subject"),
	}
	if unit, err := strconv.Atoi(c.Query("unit")); err == nil {
		filter.UnitNumber = unit
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filter.ActiveOnly = active
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Update godoc
// @Summary Update learning experience
// @Tags LearningExperiences
// @Accept json
// @Produce json
// @Param id path string true "Learning experience ID"
// @Param payload body service.UpdateLearningExperienceRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /learning-experiences/{id} [patch]
func (h *LearningExperienceHandler) Update(c *gin.Context) {
	var req service.UpdateLearningExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	le, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, le, nil)
}

// Deactivate godoc
// @Summary Deactivate learning experience
// @Tags LearningExperiences
// @Produce json
// @Param id path string true "Learning experience ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /learning-experiences/{id} [delete]
func (h *LearningExperienceHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
