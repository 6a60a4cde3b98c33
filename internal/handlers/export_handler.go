package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/services"
)

// ExportHandler serves participant exports and certificate downloads.
type ExportHandler struct {
	BaseHandler
	exportService      services.ExportService
	certificateService services.CertificateService
}

func NewExportHandler(exportService services.ExportService, certificateService services.CertificateService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:        NewBaseHandler(logger),
		exportService:      exportService,
		certificateService: certificateService,
	}
}

// ExportParticipants godoc
// @Summary Download the participant list for an event
// @Description format=csv (default) or format=xlsx
// @Tags exports
// @Produce text/csv
// @Param id path int true "Event ID"
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /events/{id}/export [get]
func (h *ExportHandler) ExportParticipants(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	eventID := h.parseIDParam(c, "id")
	if eventID == 0 {
		return
	}

	format := c.DefaultQuery("format", "csv")

	h.LogRequest(c, "Exporting participants", "event_id", eventID, "format", format)

	var (
		result *services.ExportResult
		err    error
	)
	switch format {
	case "csv":
		result, err = h.exportService.ExportParticipantsCSV(c.Request.Context(), userID, eventID)
	case "xlsx":
		result, err = h.exportService.ExportParticipantsXLSX(c.Request.Context(), userID, eventID)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format, use csv or xlsx",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.serveDownload(c, result)
}

// ExportAllParticipants godoc
// @Summary Download every registration across the festival
// @Description format=csv (default) or format=xlsx
// @Tags exports
// @Produce text/csv
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /registrations/export [get]
func (h *ExportHandler) ExportAllParticipants(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "csv")

	h.LogRequest(c, "Exporting all registrations", "format", format)

	var (
		result *services.ExportResult
		err    error
	)
	switch format {
	case "csv":
		result, err = h.exportService.ExportAllParticipantsCSV(c.Request.Context(), userID)
	case "xlsx":
		result, err = h.exportService.ExportAllParticipantsXLSX(c.Request.Context(), userID)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format, use csv or xlsx",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.serveDownload(c, result)
}

// DownloadCertificate godoc
// @Summary Download a participation certificate
// @Description Available to the registration owner after attendance is marked
// @Tags exports
// @Produce application/pdf
// @Param id path int true "Registration ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /registrations/{id}/certificate [get]
func (h *ExportHandler) DownloadCertificate(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	registrationID := h.parseIDParam(c, "id")
	if registrationID == 0 {
		return
	}

	result, err := h.certificateService.Generate(c.Request.Context(), userID, registrationID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.serveDownload(c, result)
}

func (h *ExportHandler) serveDownload(c *gin.Context, result *services.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
