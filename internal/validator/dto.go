package validator

import (
	"time"

	"github.com/spk-college/techfest-service/internal/models"
)

// SignUpRequest creates a directory account plus the local profile.
type SignUpRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
}

// SignInRequest completes the OAuth code flow.
type SignInRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

// EventCreateRequest represents the request structure for creating events
type EventCreateRequest struct {
	Title           string    `json:"title" validate:"required,min=1,max=200"`
	Description     string    `json:"description" validate:"required,max=5000"`
	Banner          *string   `json:"banner" validate:"omitempty,url,max=500"`
	Rules           []string  `json:"rules" validate:"omitempty,max=20,dive,max=500"`
	Eligibility     string    `json:"eligibility" validate:"omitempty,max=1000"`
	MaxParticipants int       `json:"max_participants" validate:"required,min=1,max=10000"`
	EventDate       time.Time `json:"event_date" validate:"required,future_date"`
	EventTime       string    `json:"event_time" validate:"omitempty,max=20"`
	Location        string    `json:"location" validate:"omitempty,max=200"`
	Category        string    `json:"category" validate:"omitempty,max=100"`
	Department      string    `json:"department" validate:"required,department"`
}

// EventUpdateRequest represents the request structure for updating events
type EventUpdateRequest struct {
	Title           *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	Banner          *string    `json:"banner" validate:"omitempty,url,max=500"`
	Rules           []string   `json:"rules" validate:"omitempty,max=20,dive,max=500"`
	Eligibility     *string    `json:"eligibility" validate:"omitempty,max=1000"`
	MaxParticipants *int       `json:"max_participants" validate:"omitempty,min=1,max=10000"`
	EventDate       *time.Time `json:"event_date" validate:"omitempty"`
	EventTime       *string    `json:"event_time" validate:"omitempty,max=20"`
	Location        *string    `json:"location" validate:"omitempty,max=200"`
	Category        *string    `json:"category" validate:"omitempty,max=100"`
	Department      *string    `json:"department" validate:"omitempty,department"`
}

// AssignEventHeadRequest assigns an event head to an event.
type AssignEventHeadRequest struct {
	EventHeadID string `json:"event_head_id" validate:"required"`
}

// SetLiveRequest toggles the live flag on an event.
type SetLiveRequest struct {
	IsLive bool `json:"is_live"`
}

// AnnouncementCreateRequest represents the request structure for creating announcements
type AnnouncementCreateRequest struct {
	Title    string                      `json:"title" validate:"required,min=1,max=200"`
	Content  string                      `json:"content" validate:"required,max=5000"`
	Priority models.AnnouncementPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// AnnouncementUpdateRequest represents the request structure for updating announcements
type AnnouncementUpdateRequest struct {
	Title    *string                      `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string                      `json:"content" validate:"omitempty,max=5000"`
	Priority *models.AnnouncementPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// WinnerEntry is one podium position in a declaration.
type WinnerEntry struct {
	UserID   string `json:"user_id" validate:"required"`
	Position int    `json:"position" validate:"required,min=1,max=3"`
}

// DeclareWinnersRequest declares the full podium for an event in one call.
type DeclareWinnersRequest struct {
	Winners []WinnerEntry `json:"winners" validate:"required,len=3,dive"`
}

// AttendanceRequest marks a registration's attendance.
type AttendanceRequest struct {
	Attended bool `json:"attended"`
}

// UserUpdateRequest mutates the local profile. Role and department changes
// are admin-only and enforced in the service layer.
type UserUpdateRequest struct {
	DisplayName *string          `json:"display_name" validate:"omitempty,min=2,max=100"`
	Role        *models.UserRole `json:"role" validate:"omitempty,user_role"`
	Department  *string          `json:"department" validate:"omitempty,department"`
	PhotoURL    *string          `json:"photo_url" validate:"omitempty,url,max=500"`
}
