package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type SignUpRequest = validator.SignUpRequest
type SignInRequest = validator.SignInRequest
type CreateEventRequest = validator.EventCreateRequest
type UpdateEventRequest = validator.EventUpdateRequest
type AssignEventHeadRequest = validator.AssignEventHeadRequest
type CreateAnnouncementRequest = validator.AnnouncementCreateRequest
type UpdateAnnouncementRequest = validator.AnnouncementUpdateRequest
type DeclareWinnersRequest = validator.DeclareWinnersRequest
type WinnerEntry = validator.WinnerEntry
type UpdateUserRequest = validator.UserUpdateRequest

type UserResponse struct {
	*models.User
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type SignInResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	User         *UserResponse `json:"user"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type EventResponse struct {
	*models.Event
	SlotsLeft    bool `json:"-"`
	IsFull       bool `json:"is_full"`
	IsRegistered bool `json:"is_registered"`
	CanEdit      bool `json:"can_edit"`
	CanDelete    bool `json:"can_delete"`
}

type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

type ListEventsRequest struct {
	Department *string `form:"department"`
	Category   *string `form:"category"`
	IsLive     *bool   `form:"is_live"`
	Search     *string `form:"search"`
	Page       int     `form:"page"`
	Size       int     `form:"size"`
	SortBy     string  `form:"sort_by"`
	SortOrder  string  `form:"sort_order"`
}

type RegistrationResponse struct {
	*models.Registration
}

type RegistrationListResponse struct {
	Registrations []*RegistrationResponse `json:"registrations"`
	Total         int64                   `json:"total"`
	Page          int                     `json:"page"`
	Size          int                     `json:"size"`
}

// MyRegistrationResponse pairs a registration with its event for the
// participant's "my events" view.
type MyRegistrationResponse struct {
	Registration *models.Registration `json:"registration"`
	Event        *models.Event        `json:"event,omitempty"`
}

type AnnouncementResponse struct {
	*models.Announcement
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type AnnouncementListResponse struct {
	Announcements []*AnnouncementResponse `json:"announcements"`
	Total         int64                   `json:"total"`
	Page          int                     `json:"page"`
	Size          int                     `json:"size"`
}

type WinnerListResponse struct {
	Winners []*models.Winner `json:"winners"`
	Total   int64            `json:"total"`
}

// DashboardResponse wraps the role-specific stats payload.
type DashboardResponse struct {
	Role  models.UserRole `json:"role"`
	Stats interface{}     `json:"stats"`
}

// ExportResult is a generated download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest) (*UserResponse, error)
	SignIn(ctx context.Context, req *SignInRequest) (*SignInResponse, error)
	GetProfile(ctx context.Context, userID string) (*UserResponse, error)
	Logout(ctx context.Context, userID string) error
}

type UserService interface {
	GetByID(ctx context.Context, requesterID, id string) (*UserResponse, error)
	List(ctx context.Context, requesterID string, filter repositories.UserFilter) (*UserListResponse, error)
	Update(ctx context.Context, requesterID, id string, req *UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, requesterID, id string) error
	ListEventHeads(ctx context.Context, requesterID string) ([]*models.User, error)
}

type EventService interface {
	Create(ctx context.Context, userID string, req *CreateEventRequest) (*EventResponse, error)
	GetByID(ctx context.Context, userID string, id uint) (*EventResponse, error)
	List(ctx context.Context, userID string, req *ListEventsRequest) (*EventListResponse, error)
	Update(ctx context.Context, userID string, id uint, req *UpdateEventRequest) (*EventResponse, error)
	Delete(ctx context.Context, userID string, id uint) error
	AssignEventHead(ctx context.Context, userID string, id uint, req *AssignEventHeadRequest) error
	SetLive(ctx context.Context, userID string, id uint, isLive bool) error
	UpdateBanner(ctx context.Context, userID string, id uint, bannerURL string) error
}

type RegistrationService interface {
	Register(ctx context.Context, userID string, eventID uint) (*RegistrationResponse, error)
	ListByEvent(ctx context.Context, userID string, eventID uint, page, size int) (*RegistrationListResponse, error)
	ListMine(ctx context.Context, userID string) ([]*MyRegistrationResponse, error)
	MarkAttendance(ctx context.Context, userID string, registrationID uint, attended bool) error
}

type AnnouncementService interface {
	Create(ctx context.Context, userID string, req *CreateAnnouncementRequest) (*AnnouncementResponse, error)
	List(ctx context.Context, page, size int) (*AnnouncementListResponse, error)
	Update(ctx context.Context, userID string, id uint, req *UpdateAnnouncementRequest) (*AnnouncementResponse, error)
	Delete(ctx context.Context, userID string, id uint) error
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

type WinnerService interface {
	Declare(ctx context.Context, userID string, eventID uint, req *DeclareWinnersRequest) ([]*models.Winner, error)
	ListByEvent(ctx context.Context, eventID uint) ([]*models.Winner, error)
	ListRecent(ctx context.Context, limit, offset int) (*WinnerListResponse, error)
}

type DashboardService interface {
	GetStats(ctx context.Context, userID string) (*DashboardResponse, error)
}

type ExportService interface {
	ExportParticipantsCSV(ctx context.Context, userID string, eventID uint) (*ExportResult, error)
	ExportParticipantsXLSX(ctx context.Context, userID string, eventID uint) (*ExportResult, error)
	ExportAllParticipantsCSV(ctx context.Context, userID string) (*ExportResult, error)
	ExportAllParticipantsXLSX(ctx context.Context, userID string) (*ExportResult, error)
}

type CertificateService interface {
	Generate(ctx context.Context, userID string, registrationID uint) (*ExportResult, error)
}

// ServiceManager provides access to all services
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Event() EventService
	Registration() RegistrationService
	Announcement() AnnouncementService
	Winner() WinnerService
	Dashboard() DashboardService
	Export() ExportService
	Certificate() CertificateService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
