package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/internal/platform/validate"
)

// Source is the subset of the appointment store that reports read.
type Source interface {
	CountByStatus(ctx context.Context, date string) (map[appointment.Status]int, error)
	CountByDate(ctx context.Context, start, end string) ([]appointment.DateCount, error)
	CancelledByDoctor(ctx context.Context) (map[string]int, error)
	CountByDoctor(ctx context.Context) (map[string]int, error)
}

// Cancellations is the cancellation total with a per-doctor breakdown.
type Cancellations struct {
	Cancelled int            `json:"cancelled"`
	ByDoctor  map[string]int `json:"byDoctor"`
}

type Service struct {
	src    Source
	cache  cache.Cache
	window int
	logger zerolog.Logger
}

type Option func(*Service)

// WithCache serves repeated reads from c until the next Invalidate.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithWeeklyWindow bounds the weekly report to days dates starting at the
// start date. Zero leaves it unbounded.
func WithWeeklyWindow(days int) Option {
	return func(s *Service) { s.window = days }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(src Source, opts ...Option) *Service {
	s := &Service{src: src, cache: cache.Noop{}, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Invalidate drops cached results. It has the appointment.ChangeListener shape.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("report cache invalidate failed")
	}
}

// cached loads key from the cache or computes and stores it. Cache failures
// fall through to the store. A result computed across an Invalidate is
// returned but not stored.
func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	var v T
	gen, ok, getErr := s.cache.Get(ctx, key, &v)
	if getErr != nil {
		s.logger.Warn().Err(getErr).Str("key", key).Msg("report cache read failed")
	}
	if ok {
		return v, nil
	}
	v, err := compute()
	if err != nil || getErr != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, gen, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
	return v, nil
}

// DailyStatusCounts maps status to count for one date. Statuses with no
// appointments are omitted.
func (s *Service) DailyStatusCounts(ctx context.Context, date string) (map[appointment.Status]int, error) {
	if date == "" {
		return nil, apperr.Validation("date is required")
	}
	if !validate.IsDate(date) {
		return nil, apperr.Validation("date must be a date in YYYY-MM-DD format")
	}
	return cached(ctx, s, "daily:"+date, func() (map[appointment.Status]int, error) {
		return s.src.CountByStatus(ctx, date)
	})
}

// WeeklyDateCounts maps date to count for dates from startDate on. endDate,
// when set, is an inclusive upper bound and overrides the configured window.
func (s *Service) WeeklyDateCounts(ctx context.Context, startDate, endDate string) (map[string]int, error) {
	if startDate == "" {
		return nil, apperr.Validation("startDate is required")
	}
	start, err := time.Parse(appointment.DateLayout, startDate)
	if err != nil {
		return nil, apperr.Validation("startDate must be a date in YYYY-MM-DD format")
	}
	if endDate != "" {
		if !validate.IsDate(endDate) {
			return nil, apperr.Validation("endDate must be a date in YYYY-MM-DD format")
		}
		if endDate < startDate {
			return nil, apperr.Validation("endDate must not be before startDate")
		}
	} else if s.window > 0 {
		endDate = start.AddDate(0, 0, s.window-1).Format(appointment.DateLayout)
	}

	return cached(ctx, s, "weekly:"+startDate+":"+endDate, func() (map[string]int, error) {
		rows, err := s.src.CountByDate(ctx, startDate, endDate)
		if err != nil {
			return nil, err
		}
		out := make(map[string]int, len(rows))
		for _, r := range rows {
			out[r.Date] = r.Count
		}
		return out, nil
	})
}

func (s *Service) CancellationCount(ctx context.Context) (*Cancellations, error) {
	return cached(ctx, s, "cancellations", func() (*Cancellations, error) {
		byDoctor, err := s.src.CancelledByDoctor(ctx)
		if err != nil {
			return nil, err
		}
		out := &Cancellations{ByDoctor: byDoctor}
		for _, n := range byDoctor {
			out.Cancelled += n
		}
		return out, nil
	})
}

func (s *Service) DoctorWorkload(ctx context.Context) (map[string]int, error) {
	return cached(ctx, s, "workload", func() (map[string]int, error) {
		return s.src.CountByDoctor(ctx)
	})
}
