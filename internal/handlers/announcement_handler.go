package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/events"
	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/validator"
)

// AnnouncementHandler handles announcement CRUD and the live SSE stream.
type AnnouncementHandler struct {
	BaseHandler
	announcementService services.AnnouncementService
	validator           *validator.Validator
}

func NewAnnouncementHandler(announcementService services.AnnouncementService, validator *validator.Validator, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		BaseHandler:         NewBaseHandler(logger),
		announcementService: announcementService,
		validator:           validator,
	}
}

// CreateAnnouncement godoc
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Param request body services.CreateAnnouncementRequest true "Announcement payload"
// @Success 201 {object} services.AnnouncementResponse
// @Security BearerAuth
// @Router /announcements [post]
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating announcement", "title", req.Title)

	announcement, err := h.announcementService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

// ListAnnouncements godoc
// @Summary List announcements, newest first
// @Tags announcements
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.AnnouncementListResponse
// @Router /announcements [get]
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	announcements, err := h.announcementService.List(c.Request.Context(), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, announcements)
}

// UpdateAnnouncement godoc
// @Summary Update an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Param id path int true "Announcement ID"
// @Param request body services.UpdateAnnouncementRequest true "Fields to update"
// @Success 200 {object} services.AnnouncementResponse
// @Security BearerAuth
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	announcement, err := h.announcementService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, announcement)
}

// DeleteAnnouncement godoc
// @Summary Delete an announcement
// @Tags announcements
// @Param id path int true "Announcement ID"
// @Success 204
// @Security BearerAuth
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// StreamAnnouncements godoc
// @Summary Stream announcements as server-sent events
// @Description Pushes announcement.created, event.live and event.ended messages as they happen
// @Tags announcements
// @Produce text/event-stream
// @Router /announcements/stream [get]
func (h *AnnouncementHandler) StreamAnnouncements(c *gin.Context) {
	messages, err := h.announcementService.Subscribe(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-messages:
			if !open {
				return false
			}

			var envelope events.Event
			if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
				// Malformed payloads are acked and dropped so one bad
				// message cannot wedge the stream.
				msg.Ack()
				return true
			}

			c.SSEvent(envelope.Type, envelope)
			msg.Ack()
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
