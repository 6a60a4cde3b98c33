package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/validator"
)

// WinnerHandler handles podium declaration and winner listings.
type WinnerHandler struct {
	BaseHandler
	winnerService services.WinnerService
	validator     *validator.Validator
}

func NewWinnerHandler(winnerService services.WinnerService, validator *validator.Validator, logger *slog.Logger) *WinnerHandler {
	return &WinnerHandler{
		BaseHandler:   NewBaseHandler(logger),
		winnerService: winnerService,
		validator:     validator,
	}
}

// DeclareWinners godoc
// @Summary Declare the full podium for an event
// @Description Accepts exactly three distinct attendees, one per position
// @Tags winners
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body services.DeclareWinnersRequest true "Podium entries"
// @Success 201 {array} models.Winner
// @Security BearerAuth
// @Router /events/{id}/winners [post]
func (h *WinnerHandler) DeclareWinners(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	var req services.DeclareWinnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Declaring winners", "event_id", eventID)

	winners, err := h.winnerService.Declare(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, winners)
}

// ListEventWinners godoc
// @Summary List the winners of an event in podium order
// @Tags winners
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {array} models.Winner
// @Router /events/{id}/winners [get]
func (h *WinnerHandler) ListEventWinners(c *gin.Context) {
	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	winners, err := h.winnerService.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, winners)
}

// ListRecentWinners godoc
// @Summary List recently declared winners across all events
// @Tags winners
// @Produce json
// @Param limit query int false "Maximum entries"
// @Param offset query int false "Offset"
// @Success 200 {object} services.WinnerListResponse
// @Router /winners [get]
func (h *WinnerHandler) ListRecentWinners(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	winners, err := h.winnerService.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, winners)
}
