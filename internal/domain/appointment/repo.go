package appointment

import "context"

// Repository is the appointment store. Lookups of unknown ids return an
// apperr not-found error; driver failures are wrapped with apperr.Store.
type Repository interface {
	// List returns matching rows ordered by date, time, then insertion order.
	List(ctx context.Context, q Query) ([]Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	Create(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error)
	Delete(ctx context.Context, id string) error

	PatientNames(ctx context.Context) ([]string, error)
	Doctors(ctx context.Context) ([]string, error)
	// Dates lists distinct appointment dates ascending, optionally for one doctor.
	Dates(ctx context.Context, doctorName string) ([]string, error)

	CountByStatus(ctx context.Context, date string) (map[Status]int, error)
	// CountByDate groups rows with start <= date (and date <= end when end is
	// set) by date, ascending.
	CountByDate(ctx context.Context, start, end string) ([]DateCount, error)
	// CancelledByDoctor counts cancelled rows per doctor.
	CancelledByDoctor(ctx context.Context) (map[string]int, error)
	CountByDoctor(ctx context.Context) (map[string]int, error)

	// PatientSummaries returns one entry per distinct patient name, ordered by name.
	PatientSummaries(ctx context.Context) ([]PatientSummary, error)
	// ListByPatient returns a patient's rows, most recent first.
	ListByPatient(ctx context.Context, name string) ([]Appointment, error)

	Ping(ctx context.Context) error
}
