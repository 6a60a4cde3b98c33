package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
)

// fakeRepository is an in-memory Repository used by the service tests. It
// mirrors the constraint behavior of the real store: the conditional slot
// claim, the unique registration per (event, user), and the unique winner
// position per event.
type fakeRepository struct {
	mu sync.Mutex

	users         map[string]*models.User
	events        map[uint]*models.Event
	registrations map[uint]*models.Registration
	announcements map[uint]*models.Announcement
	winners       []*models.Winner

	nextEventID        uint
	nextRegistrationID uint
	nextAnnouncementID uint
	nextWinnerID       uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:         make(map[string]*models.User),
		events:        make(map[uint]*models.Event),
		registrations: make(map[uint]*models.Registration),
		announcements: make(map[uint]*models.Announcement),
	}
}

func (f *fakeRepository) addUser(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return user
}

func (f *fakeRepository) addEvent(event *models.Event) *models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextEventID++
	event.ID = f.nextEventID
	f.events[event.ID] = event
	return event
}

func (f *fakeRepository) addRegistration(reg *models.Registration) *models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRegistrationID++
	reg.ID = f.nextRegistrationID
	f.registrations[reg.ID] = reg
	return reg
}

func (f *fakeRepository) Users() repositories.UserRepository {
	return &fakeUserRepo{f}
}

func (f *fakeRepository) Events() repositories.EventRepository {
	return &fakeEventRepo{f}
}

func (f *fakeRepository) Registrations() repositories.RegistrationRepository {
	return &fakeRegistrationRepo{f}
}

func (f *fakeRepository) Announcements() repositories.AnnouncementRepository {
	return &fakeAnnouncementRepo{f}
}

func (f *fakeRepository) Winners() repositories.WinnerRepository {
	return &fakeWinnerRepo{f}
}

func (f *fakeRepository) Dashboard() repositories.DashboardRepository {
	return &fakeDashboardRepo{f}
}

func (f *fakeRepository) Identity() repositories.IdentityRepository {
	return &fakeIdentityRepo{f}
}

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ----- users -----

type fakeUserRepo struct{ store *fakeRepository }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.users[user.ID]; exists {
		return repositories.ErrDuplicate
	}
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.store.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.User
	for _, user := range r.store.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && (user.Department == nil || *user.Department != *filter.Department) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "display_name":
			user.DisplayName = value.(string)
		case "role":
			user.Role = value.(models.UserRole)
		case "department":
			d := value.(string)
			user.Department = &d
		case "photo_url":
			p := value.(string)
			user.PhotoURL = &p
		}
	}
	return nil
}

func (r *fakeUserRepo) EvictCache(ctx context.Context, id string) error { return nil }

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}

// ----- events -----

type fakeEventRepo struct{ store *fakeRepository }

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextEventID++
	event.ID = r.store.nextEventID
	event.CreatedAt = time.Now()
	r.store.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event, ok := r.store.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) GetByIDs(ctx context.Context, ids []uint) ([]*models.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Event, 0, len(ids))
	for _, id := range ids {
		if event, ok := r.store.events[id]; ok {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) List(ctx context.Context, filter repositories.EventFilter) ([]*models.Event, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Event
	for _, event := range r.store.events {
		if filter.Department != nil && event.Department != *filter.Department {
			continue
		}
		if len(filter.Departments) > 0 && !containsString(filter.Departments, event.Department) {
			continue
		}
		if filter.Category != nil && event.Category != *filter.Category {
			continue
		}
		if filter.IsLive != nil && event.IsLive != *filter.IsLive {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(event.Title), strings.ToLower(*filter.Search)) {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeEventRepo) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event, ok := r.store.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "title":
			event.Title = value.(string)
		case "description":
			event.Description = value.(string)
		case "banner":
			b := value.(string)
			event.Banner = &b
		case "max_participants":
			event.MaxParticipants = value.(int)
		case "is_live":
			event.IsLive = value.(bool)
		case "event_head_id":
			h := value.(string)
			event.EventHeadID = &h
		case "event_head_name":
			n := value.(string)
			event.EventHeadName = &n
		case "department":
			event.Department = value.(string)
		case "location":
			event.Location = value.(string)
		}
	}
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.events, id)
	return nil
}

func (r *fakeEventRepo) ClaimSlot(ctx context.Context, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event, ok := r.store.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if event.CurrentParticipants >= event.MaxParticipants {
		return repositories.ErrCapacityExhausted
	}
	event.CurrentParticipants++
	return nil
}

// ----- registrations -----

type fakeRegistrationRepo struct{ store *fakeRepository }

func (r *fakeRegistrationRepo) Create(ctx context.Context, registration *models.Registration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.registrations {
		if existing.EventID == registration.EventID && existing.UserID == registration.UserID {
			return repositories.ErrDuplicate
		}
	}
	r.store.nextRegistrationID++
	registration.ID = r.store.nextRegistrationID
	r.store.registrations[registration.ID] = registration
	return nil
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id uint) (*models.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reg, ok := r.store.registrations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return reg, nil
}

func (r *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID uint, userID string) (*models.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, reg := range r.store.registrations {
		if reg.EventID == eventID && reg.UserID == userID {
			return reg, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeRegistrationRepo) List(ctx context.Context, filter repositories.RegistrationFilter) ([]*models.Registration, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Registration
	for _, reg := range r.store.registrations {
		if filter.EventID != nil && reg.EventID != *filter.EventID {
			continue
		}
		if filter.UserID != nil && reg.UserID != *filter.UserID {
			continue
		}
		if filter.Attended != nil && reg.Attended != *filter.Attended {
			continue
		}
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	total := int64(len(out))
	if filter.Limit > 0 {
		if filter.Offset >= len(out) {
			return nil, total, nil
		}
		out = out[filter.Offset:]
		if len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
	}
	return out, total, nil
}

func (r *fakeRegistrationRepo) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reg, ok := r.store.registrations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "attended":
			reg.Attended = value.(bool)
		case "event_title":
			reg.EventTitle = value.(string)
		case "certificate_id":
			c := value.(string)
			reg.CertificateID = &c
		}
	}
	return nil
}

func (r *fakeRegistrationRepo) CountAttended(ctx context.Context, eventID uint) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, reg := range r.store.registrations {
		if reg.EventID == eventID && reg.Attended {
			count++
		}
	}
	return count, nil
}

// ----- announcements -----

type fakeAnnouncementRepo struct{ store *fakeRepository }

func (r *fakeAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextAnnouncementID++
	announcement.ID = r.store.nextAnnouncementID
	announcement.CreatedAt = time.Now()
	r.store.announcements[announcement.ID] = announcement
	return nil
}

func (r *fakeAnnouncementRepo) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.announcements[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return a, nil
}

func (r *fakeAnnouncementRepo) List(ctx context.Context, filter repositories.AnnouncementFilter) ([]*models.Announcement, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Announcement
	for _, a := range r.store.announcements {
		if filter.Priority != nil && a.Priority != *filter.Priority {
			continue
		}
		if filter.AuthorID != nil && a.AuthorID != *filter.AuthorID {
			continue
		}
		out = append(out, a)
	}
	// Newest first, matching the real listing order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeAnnouncementRepo) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.announcements[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "title":
			a.Title = value.(string)
		case "content":
			a.Content = value.(string)
		case "priority":
			a.Priority = value.(models.AnnouncementPriority)
		}
	}
	return nil
}

func (r *fakeAnnouncementRepo) Delete(ctx context.Context, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.announcements[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.announcements, id)
	return nil
}

// ----- winners -----

type fakeWinnerRepo struct{ store *fakeRepository }

func (r *fakeWinnerRepo) CreateBatch(ctx context.Context, winners []*models.Winner) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range winners {
		for _, existing := range r.store.winners {
			if existing.EventID == w.EventID && existing.Position == w.Position {
				return repositories.ErrDuplicate
			}
		}
	}
	for _, w := range winners {
		r.store.nextWinnerID++
		w.ID = r.store.nextWinnerID
		r.store.winners = append(r.store.winners, w)
	}
	return nil
}

func (r *fakeWinnerRepo) ListByEvent(ctx context.Context, eventID uint) ([]*models.Winner, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Winner
	for _, w := range r.store.winners {
		if w.EventID == eventID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeWinnerRepo) List(ctx context.Context, filter repositories.WinnerFilter) ([]*models.Winner, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Winner
	for _, w := range r.store.winners {
		if filter.EventID != nil && w.EventID != *filter.EventID {
			continue
		}
		out = append(out, w)
	}
	return out, int64(len(out)), nil
}

func (r *fakeWinnerRepo) ExistsForEvent(ctx context.Context, eventID uint) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, w := range r.store.winners {
		if w.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWinnerRepo) DeleteByEvent(ctx context.Context, eventID uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.winners[:0]
	for _, w := range r.store.winners {
		if w.EventID != eventID {
			kept = append(kept, w)
		}
	}
	r.store.winners = kept
	return nil
}

// ----- dashboard -----

type fakeDashboardRepo struct{ store *fakeRepository }

func (r *fakeDashboardRepo) GetAdminStats(ctx context.Context) (*repositories.AdminStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return &repositories.AdminStats{
		TotalEvents:        int64(len(r.store.events)),
		TotalUsers:         int64(len(r.store.users)),
		TotalRegistrations: int64(len(r.store.registrations)),
		TotalAnnouncements: int64(len(r.store.announcements)),
	}, nil
}

func (r *fakeDashboardRepo) GetCoordinatorStats(ctx context.Context, department string) (*repositories.CoordinatorStats, error) {
	return &repositories.CoordinatorStats{Department: department}, nil
}

func (r *fakeDashboardRepo) GetEventHeadStats(ctx context.Context, userID string) (*repositories.EventHeadStats, error) {
	return &repositories.EventHeadStats{}, nil
}

func (r *fakeDashboardRepo) GetParticipantStats(ctx context.Context, userID string) (*repositories.ParticipantStats, error) {
	return &repositories.ParticipantStats{}, nil
}

// ----- identity -----

type fakeIdentityRepo struct{ store *fakeRepository }

func (r *fakeIdentityRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return (&fakeUserRepo{r.store}).GetByID(ctx, id)
}

func (r *fakeIdentityRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return (&fakeUserRepo{r.store}).GetByEmail(ctx, email)
}

func (r *fakeIdentityRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeIdentityRepo) AddUser(ctx context.Context, name, displayName, email, password string) (string, error) {
	return "directory-" + name, nil
}

func (r *fakeIdentityRepo) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	return nil
}

func (r *fakeIdentityRepo) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
