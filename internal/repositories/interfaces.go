package repositories

import (
	"context"

	"github.com/spk-college/techfest-service/internal/models"
)

// UserRepository stores the local profile mirror of identity-provider
// accounts. Role and department live here, not in the provider.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// EvictCache drops the cached profile copy without touching the row.
	EvictCache(ctx context.Context, id string) error
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]*models.Event, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error

	// ClaimSlot atomically increments current_participants while it is still
	// below max_participants. Returns ErrCapacityExhausted when the event is
	// full and ErrNotFound when the event does not exist.
	ClaimSlot(ctx context.Context, id uint) error
}

type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	GetByID(ctx context.Context, id uint) (*models.Registration, error)
	GetByEventAndUser(ctx context.Context, eventID uint, userID string) (*models.Registration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]*models.Registration, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	CountAttended(ctx context.Context, eventID uint) (int64, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id uint) (*models.Announcement, error)
	List(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type WinnerRepository interface {
	// CreateBatch inserts all winners in one statement; the unique index on
	// (event_id, position) rejects a second declaration as ErrDuplicate.
	CreateBatch(ctx context.Context, winners []*models.Winner) error
	ListByEvent(ctx context.Context, eventID uint) ([]*models.Winner, error)
	List(ctx context.Context, filter WinnerFilter) ([]*models.Winner, int64, error)
	ExistsForEvent(ctx context.Context, eventID uint) (bool, error)
	DeleteByEvent(ctx context.Context, eventID uint) error
}

// DashboardRepository aggregates counters for the role-specific dashboards.
type DashboardRepository interface {
	GetAdminStats(ctx context.Context) (*AdminStats, error)
	GetCoordinatorStats(ctx context.Context, department string) (*CoordinatorStats, error)
	GetEventHeadStats(ctx context.Context, userID string) (*EventHeadStats, error)
	GetParticipantStats(ctx context.Context, userID string) (*ParticipantStats, error)
}

// IdentityRepository is the identity-provider directory. Account lifecycle
// (sign-up, deletion) goes through here; profile data the service owns goes
// through UserRepository.
type IdentityRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AddUser(ctx context.Context, name, displayName, email, password string) (string, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	DeleteUser(ctx context.Context, id string) error
}

// Filter structs use pointer fields so the zero value means "no filter".

type UserFilter struct {
	Role       *models.UserRole
	Department *string
	Search     *string

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type EventFilter struct {
	Department  *string
	Departments []string
	Category    *string
	IsLive      *bool
	EventHeadID *string
	CreatedBy   *string
	Search      *string

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type RegistrationFilter struct {
	EventID  *uint
	UserID   *string
	Attended *bool

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type AnnouncementFilter struct {
	Priority *models.AnnouncementPriority
	AuthorID *string

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

type WinnerFilter struct {
	EventID *uint

	Limit  int
	Offset int
}

type AdminStats struct {
	TotalEvents        int64 `json:"total_events"`
	LiveEvents         int64 `json:"live_events"`
	TotalUsers         int64 `json:"total_users"`
	TotalRegistrations int64 `json:"total_registrations"`
	TotalAnnouncements int64 `json:"total_announcements"`
	EventsWithWinners  int64 `json:"events_with_winners"`
}

type CoordinatorStats struct {
	Department         string `json:"department"`
	DepartmentEvents   int64  `json:"department_events"`
	LiveEvents         int64  `json:"live_events"`
	TotalRegistrations int64  `json:"total_registrations"`
	AssignedEventHeads int64  `json:"assigned_event_heads"`
}

type EventHeadStats struct {
	AssignedEvents     int64 `json:"assigned_events"`
	TotalRegistrations int64 `json:"total_registrations"`
	AttendedCount      int64 `json:"attended_count"`
}

type ParticipantStats struct {
	RegisteredEvents   int64 `json:"registered_events"`
	AttendedEvents     int64 `json:"attended_events"`
	CertificatesIssued int64 `json:"certificates_issued"`
	Podiums            int64 `json:"podiums"`
}
