package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/storage"
	"github.com/spk-college/techfest-service/internal/validator"
)

// EventHandler handles event CRUD, lifecycle, and banner upload requests.
type EventHandler struct {
	BaseHandler
	eventService services.EventService
	uploader     storage.Uploader
	validator    *validator.Validator
}

func NewEventHandler(eventService services.EventService, uploader storage.Uploader, validator *validator.Validator, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventService: eventService,
		uploader:     uploader,
		validator:    validator,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Tags events
// @Accept json
// @Produce json
// @Param request body services.CreateEventRequest true "Event payload"
// @Success 201 {object} services.EventResponse
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating event", "title", req.Title, "department", req.Department)

	event, err := h.eventService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get a single event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} services.EventResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// Anonymous browsing is allowed; the viewer id only enriches the
	// response with registration state.
	userID, _ := GetUserIDFromContext(c)

	event, err := h.eventService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListEvents godoc
// @Summary List events with filtering and pagination
// @Tags events
// @Produce json
// @Param department query string false "Department filter"
// @Param category query string false "Category filter"
// @Param is_live query bool false "Live filter"
// @Param search query string false "Title/description search"
// @Success 200 {object} services.EventListResponse
// @Router /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	var req services.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	userID, _ := GetUserIDFromContext(c)

	events, err := h.eventService.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body services.UpdateEventRequest true "Fields to update"
// @Success 200 {object} services.EventResponse
// @Security BearerAuth
// @Router /events/{id} [put]
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags events
// @Param id path int true "Event ID"
// @Success 204
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting event", "event_id", id)

	if err := h.eventService.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignEventHead godoc
// @Summary Assign an event head to an event
// @Tags events
// @Accept json
// @Param id path int true "Event ID"
// @Param request body services.AssignEventHeadRequest true "Event head assignment"
// @Success 200 {object} SuccessResponse
// @Security BearerAuth
// @Router /events/{id}/event-head [put]
func (h *EventHandler) AssignEventHead(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AssignEventHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.eventService.AssignEventHead(c.Request.Context(), userID, id, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"event_id": id, "event_head_id": req.EventHeadID}})
}

// SetLive godoc
// @Summary Toggle an event's live status
// @Description Flipping the flag also posts the matching announcement
// @Tags events
// @Accept json
// @Param id path int true "Event ID"
// @Param request body validator.SetLiveRequest true "Live flag"
// @Success 200 {object} SuccessResponse
// @Security BearerAuth
// @Router /events/{id}/live [patch]
func (h *EventHandler) SetLive(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.SetLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Setting event live status", "event_id", id, "is_live", req.IsLive)

	if err := h.eventService.SetLive(c.Request.Context(), userID, id, req.IsLive); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"event_id": id, "is_live": req.IsLive}})
}

// UploadBanner godoc
// @Summary Upload an event banner image
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Event ID"
// @Param file formData file true "Banner image (jpeg/png/gif/webp, max 5MB)"
// @Success 200 {object} SuccessResponse
// @Security BearerAuth
// @Router /events/{id}/banner [post]
func (h *EventHandler) UploadBanner(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Image storage is not configured",
		})
		return
	}

	url, ok := h.receiveImage(c, "event-banners")
	if !ok {
		return
	}

	if err := h.eventService.UpdateBanner(c.Request.Context(), userID, id, url); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"event_id": id, "banner": url}})
}

// receiveImage validates and uploads the multipart "file" field, writing the
// error response itself on failure.
func (h *EventHandler) receiveImage(c *gin.Context, folder string) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file field",
			Details: err.Error(),
		})
		return "", false
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateImage(fileHeader.Filename, contentType, fileHeader.Size); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid image",
			Details: err.Error(),
		})
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to read uploaded file",
		})
		return "", false
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), folder, fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Image upload failed",
			Details: err.Error(),
		})
		return "", false
	}

	return url, true
}
