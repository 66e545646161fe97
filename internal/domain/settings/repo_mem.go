package settings

import (
	"context"
	"sync"
	"time"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type MemoryRepo struct {
	mu  sync.RWMutex
	row *Settings
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Get(context.Context) (*Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.row == nil {
		return nil, apperr.NotFound("settings not initialized")
	}
	s := *r.row
	return &s, nil
}

func (r *MemoryRepo) CreateIfAbsent(_ context.Context, s *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row == nil {
		row := *s
		row.UpdatedAt = time.Now().UTC()
		r.row = &row
	}
	return nil
}

func (r *MemoryRepo) Save(_ context.Context, s *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.UpdatedAt = time.Now().UTC()
	row := *s
	r.row = &row
	return nil
}
