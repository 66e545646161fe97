package settings

import "context"

// Repository stores the settings row. Get returns an apperr not-found error
// until a row exists.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	// CreateIfAbsent inserts s unless a row already exists.
	CreateIfAbsent(ctx context.Context, s *Settings) error
	// Save replaces the row, creating it if needed.
	Save(ctx context.Context, s *Settings) error
}
