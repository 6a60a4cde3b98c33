package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/validator"
)

// RegistrationHandler handles event registration and attendance requests.
type RegistrationHandler struct {
	BaseHandler
	registrationService services.RegistrationService
	validator           *validator.Validator
}

func NewRegistrationHandler(registrationService services.RegistrationService, validator *validator.Validator, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		BaseHandler:         NewBaseHandler(logger),
		registrationService: registrationService,
		validator:           validator,
	}
}

// Register godoc
// @Summary Register the authenticated user for an event
// @Tags registrations
// @Produce json
// @Param id path int true "Event ID"
// @Success 201 {object} services.RegistrationResponse
// @Security BearerAuth
// @Router /events/{id}/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	h.LogRequest(c, "Registering for event", "event_id", eventID)

	registration, err := h.registrationService.Register(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registration)
}

// ListByEvent godoc
// @Summary List registrations for an event
// @Description Visible to admins, coordinators in scope, and the assigned event head
// @Tags registrations
// @Produce json
// @Param id path int true "Event ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.RegistrationListResponse
// @Security BearerAuth
// @Router /events/{id}/registrations [get]
func (h *RegistrationHandler) ListByEvent(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	registrations, err := h.registrationService.ListByEvent(c.Request.Context(), userID, eventID, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

// ListMine godoc
// @Summary List the authenticated user's registrations with their events
// @Tags registrations
// @Produce json
// @Success 200 {array} services.MyRegistrationResponse
// @Security BearerAuth
// @Router /registrations/me [get]
func (h *RegistrationHandler) ListMine(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	registrations, err := h.registrationService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, registrations)
}

// MarkAttendance godoc
// @Summary Mark or clear attendance on a registration
// @Tags registrations
// @Accept json
// @Param id path int true "Registration ID"
// @Param request body validator.AttendanceRequest true "Attendance flag"
// @Success 200 {object} SuccessResponse
// @Security BearerAuth
// @Router /registrations/{id}/attendance [patch]
func (h *RegistrationHandler) MarkAttendance(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	registrationID := h.parseIDParam(c, "id")
	if registrationID == 0 {
		return
	}

	var req validator.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.registrationService.MarkAttendance(c.Request.Context(), userID, registrationID, req.Attended); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"registration_id": registrationID, "attended": req.Attended}})
}
