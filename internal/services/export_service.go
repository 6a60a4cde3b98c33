package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

var exportHeader = []string{
	"Name", "Email", "Event", "Registration Date", "Attended", "Event Date", "Event Time", "Location",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportParticipantsCSV renders one event's participant list as CSV.
func (s *exportService) ExportParticipantsCSV(ctx context.Context, userID string, eventID uint) (*ExportResult, error) {
	rows, err := s.collectEventRows(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	return s.renderCSV(rows, eventID)
}

// ExportParticipantsXLSX renders the same sheet as a workbook.
func (s *exportService) ExportParticipantsXLSX(ctx context.Context, userID string, eventID uint) (*ExportResult, error) {
	rows, err := s.collectEventRows(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	return s.renderXLSX(rows, eventID)
}

// ExportAllParticipantsCSV flattens every registration across the festival
// into one sheet. Admin only.
func (s *exportService) ExportAllParticipantsCSV(ctx context.Context, userID string) (*ExportResult, error) {
	rows, err := s.collectAllRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.renderCSV(rows, 0)
}

func (s *exportService) ExportAllParticipantsXLSX(ctx context.Context, userID string) (*ExportResult, error) {
	rows, err := s.collectAllRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.renderXLSX(rows, 0)
}

func (s *exportService) renderCSV(rows [][]string, eventID uint) (*ExportResult, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info("Participants exported", "event_id", eventID, "format", "csv", "rows", len(rows))
	return &ExportResult{
		Filename:    exportFilename("csv"),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func (s *exportService) renderXLSX(rows [][]string, eventID uint) (*ExportResult, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Participants"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Participants exported", "event_id", eventID, "format", "xlsx", "rows", len(rows))
	return &ExportResult{
		Filename:    exportFilename("xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

// collectEventRows authorizes the export and flattens one event's
// registrations into sheet rows.
func (s *exportService) collectEventRows(ctx context.Context, userID string, eventID uint) ([][]string, error) {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Events().GetByID(ctx, eventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if !canViewRegistrations(user, event) {
		return nil, NewPermissionError(userID, "export participants of", "event")
	}

	regs, err := listAllRegistrations(ctx, s.repo, repositories.RegistrationFilter{EventID: &eventID})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, exportRow(reg, event))
	}
	return rows, nil
}

// collectAllRows is the festival-wide flat file: every registration joined
// with its event. Admin only.
func (s *exportService) collectAllRows(ctx context.Context, userID string) ([][]string, error) {
	user, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, NewPermissionError(userID, "export", "all registrations")
	}

	regs, err := listAllRegistrations(ctx, s.repo, repositories.RegistrationFilter{})
	if err != nil {
		return nil, err
	}

	eventIDs := make([]uint, 0, len(regs))
	seen := make(map[uint]bool, len(regs))
	for _, reg := range regs {
		if !seen[reg.EventID] {
			seen[reg.EventID] = true
			eventIDs = append(eventIDs, reg.EventID)
		}
	}

	eventList, err := s.repo.Events().GetByIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	eventByID := make(map[uint]*models.Event, len(eventList))
	for _, event := range eventList {
		eventByID[event.ID] = event
	}

	rows := make([][]string, 0, len(regs))
	for _, reg := range regs {
		event, ok := eventByID[reg.EventID]
		if !ok {
			// The event was deleted after the fact; the denormalized title
			// is all that remains.
			rows = append(rows, []string{
				reg.UserName, reg.UserEmail, reg.EventTitle,
				reg.RegisteredAt.Format("2006-01-02 15:04"),
				attendedLabel(reg.Attended), "", "", "",
			})
			continue
		}
		rows = append(rows, exportRow(reg, event))
	}
	return rows, nil
}

func exportRow(reg *models.Registration, event *models.Event) []string {
	return []string{
		reg.UserName,
		reg.UserEmail,
		event.Title,
		reg.RegisteredAt.Format("2006-01-02 15:04"),
		attendedLabel(reg.Attended),
		event.EventDate.Format("2006-01-02"),
		event.EventTime,
		event.Location,
	}
}

func attendedLabel(attended bool) string {
	if attended {
		return "Yes"
	}
	return "No"
}

func exportFilename(ext string) string {
	return fmt.Sprintf("techfest-participants-%s.%s", time.Now().Format("2006-01-02"), ext)
}
