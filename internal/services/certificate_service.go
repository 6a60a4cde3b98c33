package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

// pdfEpoch pins the PDF creation timestamp so regenerating a certificate
// yields identical bytes for identical inputs.
var pdfEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type certificateService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewCertificateService(repo repositories.Repository, logger *slog.Logger) CertificateService {
	return &certificateService{
		repo:   repo,
		logger: logger,
	}
}

// Generate issues (or re-issues) a participation certificate for one of the
// caller's own registrations. The verification id is minted once and stored
// on the registration; later downloads reproduce the same document.
func (s *certificateService) Generate(ctx context.Context, userID string, registrationID uint) (*ExportResult, error) {
	registration, err := s.repo.Registrations().GetByID(ctx, registrationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if registration.UserID != userID {
		user, err := getUser(ctx, s.repo, userID)
		if err != nil {
			return nil, err
		}
		if user.Role != models.RoleAdmin {
			return nil, NewPermissionError(userID, "download certificate of", "registration")
		}
	}

	if !registration.Attended {
		return nil, ErrNotAttended
	}

	event, err := s.repo.Events().GetByID(ctx, registration.EventID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	verificationID := ""
	if registration.CertificateID != nil {
		verificationID = *registration.CertificateID
	} else {
		verificationID = uuid.NewString()
		err = s.repo.Registrations().Update(ctx, registrationID, map[string]interface{}{
			"certificate_id": verificationID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store certificate id: %w", err)
		}
	}

	cert := &models.Certificate{
		UserName:       registration.UserName,
		EventTitle:     event.Title,
		EventDate:      event.EventDate,
		VerificationID: verificationID,
	}

	pdf, err := RenderCertificate(cert)
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	s.logger.Info("Certificate generated",
		"registration_id", registrationID,
		"verification_id", verificationID)

	return &ExportResult{
		Filename:    certificateFilename(cert),
		ContentType: "application/pdf",
		Data:        pdf,
	}, nil
}

// RenderCertificate draws the participation certificate: landscape A4, dark
// background, double border, centered composition. Output is deterministic
// for a given Certificate value.
func RenderCertificate(cert *models.Certificate) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(pdfEpoch)
	pdf.AddPage()

	const pageW, pageH = 297.0, 210.0

	// Background
	pdf.SetFillColor(17, 24, 39)
	pdf.Rect(0, 0, pageW, pageH, "F")

	// Outer border in blue, inner in purple
	pdf.SetDrawColor(59, 130, 246)
	pdf.SetLineWidth(1.2)
	pdf.Rect(8, 8, pageW-16, pageH-16, "D")

	pdf.SetDrawColor(147, 51, 234)
	pdf.SetLineWidth(0.4)
	pdf.Rect(12, 12, pageW-24, pageH-24, "D")

	center := func(y float64, text string) {
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, 10, text, "", 0, "C", false, 0, "")
	}

	pdf.SetTextColor(147, 197, 253)
	pdf.SetFont("Helvetica", "B", 14)
	center(24, "SPK COLLEGE")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 40)
	center(44, "CERTIFICATE")

	pdf.SetTextColor(196, 181, 253)
	pdf.SetFont("Helvetica", "", 16)
	center(60, "OF PARTICIPATION")

	pdf.SetTextColor(209, 213, 219)
	pdf.SetFont("Helvetica", "", 12)
	center(82, "This certificate is proudly presented to")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 32)
	center(96, cert.UserName)

	pdf.SetTextColor(209, 213, 219)
	pdf.SetFont("Helvetica", "", 12)
	center(112, "for participating in")

	pdf.SetTextColor(147, 197, 253)
	pdf.SetFont("Helvetica", "B", 20)
	center(122, cert.EventTitle)

	pdf.SetTextColor(209, 213, 219)
	pdf.SetFont("Helvetica", "", 12)
	center(136, fmt.Sprintf("held on %s", cert.EventDate.Format("January 2, 2006")))

	// Signature lines
	pdf.SetDrawColor(156, 163, 175)
	pdf.SetLineWidth(0.3)
	pdf.Line(50, 172, 110, 172)
	pdf.Line(187, 172, 247, 172)

	pdf.SetTextColor(156, 163, 175)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(50, 174)
	pdf.CellFormat(60, 6, "Event Coordinator", "", 0, "C", false, 0, "")
	pdf.SetXY(187, 174)
	pdf.CellFormat(60, 6, "Director, SPK College", "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	center(192, fmt.Sprintf("Verification ID: %s", cert.VerificationID))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func certificateFilename(cert *models.Certificate) string {
	name := strings.ReplaceAll(cert.UserName, " ", "_")
	event := strings.ReplaceAll(cert.EventTitle, " ", "_")
	return fmt.Sprintf("%s_%s_Certificate.pdf", name, event)
}
