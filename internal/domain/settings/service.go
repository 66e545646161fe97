package settings

import (
	"context"
	"errors"
	"time"
	// Timezone names are validated even on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the clinic settings, storing the defaults on first use.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	cur, err := s.repo.Get(ctx)
	if err == nil {
		return cur, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	d := Defaults()
	if err := s.repo.CreateIfAbsent(ctx, &d); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx)
}

// Update validates in and replaces the stored settings with it.
func (s *Service) Update(ctx context.Context, in Settings) (*Settings, error) {
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	if in.BusinessStart >= in.BusinessEnd {
		return nil, apperr.Validation("businessStart must be before businessEnd")
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return nil, apperr.Validation("unknown timezone %q", in.Timezone)
	}
	if err := s.repo.Save(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}
