package repositories

import "context"

// Repository aggregates all entity repositories behind one handle. The
// postgres implementation backs the entity stores with GORM and the identity
// directory with Casdoor.
//
// WithTransaction runs fn with a Repository whose entity stores share one
// database transaction; returning an error rolls everything back.
type Repository interface {
	Users() UserRepository
	Events() EventRepository
	Registrations() RegistrationRepository
	Announcements() AnnouncementRepository
	Winners() WinnerRepository
	Dashboard() DashboardRepository
	Identity() IdentityRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
