package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/validate"
)

// ChangeListener is called after a successful write.
type ChangeListener func(ctx context.Context)

type Service struct {
	repo Repository
	now  func() time.Time
	loc  *time.Location

	mu        sync.RWMutex
	listeners []ChangeListener
}

type Option func(*Service)

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the clinic time zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, loc: time.Local}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnChange registers l to run after every create, status update and delete.
func (s *Service) OnChange(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Service) notify(ctx context.Context) {
	s.mu.RLock()
	ls := s.listeners
	s.mu.RUnlock()
	for _, l := range ls {
		l(ctx)
	}
}

// Today is the current date in the clinic time zone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// ListAppointments returns matching appointments ordered by date and time.
// Doctor and date values that match nothing yield an empty list.
func (s *Service) ListAppointments(ctx context.Context, f Filter) ([]Appointment, error) {
	q := Query{DoctorName: f.DoctorName, Date: f.Date}

	if f.Status != "" {
		st, err := ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q.Status = st
	}

	if f.Tab != "" {
		ref := f.ReferenceDate
		if ref == "" {
			ref = s.Today()
		} else if !validate.IsDate(ref) {
			return nil, apperr.Validation("ref must be a date in YYYY-MM-DD format")
		}
		switch Tab(f.Tab) {
		case TabToday:
			if q.Date != "" && q.Date != ref {
				return []Appointment{}, nil
			}
			q.Date = ref
		case TabUpcoming:
			q.After = ref
		case TabPast:
			q.Before = ref
		default:
			return nil, apperr.Validation("invalid tab %q: must be one of today, upcoming, past", f.Tab)
		}
	}

	// A malformed date cannot match any stored row.
	if q.Date != "" && !validate.IsDate(q.Date) {
		return []Appointment{}, nil
	}
	return s.repo.List(ctx, q)
}

// CreateAppointment validates in, assigns an id and defaults, and stores it.
func (s *Service) CreateAppointment(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	a := &Appointment{
		ID:          uuid.NewString(),
		PatientName: in.PatientName,
		DoctorName:  in.DoctorName,
		Date:        in.Date,
		Time:        in.Time,
		Duration:    in.Duration,
		Status:      in.Status,
		Mode:        in.Mode,
		Reason:      in.Reason,
	}
	if a.Duration == 0 {
		a.Duration = DefaultDuration
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.Mode == "" {
		a.Mode = ModeInPerson
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.notify(ctx)
	return a, nil
}

// UpdateStatus sets the status of one appointment. Setting the current
// status again is a no-op that still returns the record.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	id, err = canonicalID(id)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.notify(ctx)
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	id, err := canonicalID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *Service) ListDistinctPatientNames(ctx context.Context) ([]string, error) {
	return s.repo.PatientNames(ctx)
}

func (s *Service) ListDoctors(ctx context.Context) ([]string, error) {
	return s.repo.Doctors(ctx)
}

func (s *Service) ListAppointmentDates(ctx context.Context, doctorName string) ([]string, error) {
	return s.repo.Dates(ctx, doctorName)
}

// Queue returns the day's appointments in time order, each numbered by its
// position in its doctor's queue. An empty date means today.
func (s *Service) Queue(ctx context.Context, date string) ([]QueueEntry, error) {
	if date == "" {
		date = s.Today()
	} else if !validate.IsDate(date) {
		return nil, apperr.Validation("date must be a date in YYYY-MM-DD format")
	}
	appts, err := s.repo.List(ctx, Query{Date: date})
	if err != nil {
		return nil, err
	}
	next := make(map[string]int)
	out := make([]QueueEntry, 0, len(appts))
	for _, a := range appts {
		next[a.DoctorName]++
		out = append(out, QueueEntry{Appointment: a, QueueNumber: next[a.DoctorName]})
	}
	return out, nil
}

// canonicalID rejects ids that cannot name a stored appointment and returns
// the lowercase hyphenated form ids are stored in.
func canonicalID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", apperr.NotFound("appointment %s not found", id)
	}
	return u.String(), nil
}
