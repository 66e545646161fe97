// Package patient derives patients from appointment rows. There is no
// patient table: a patient is a distinct patientName.
package patient

import (
	"context"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/platform/apperr"
)

// Source is the subset of the appointment store the projection reads.
type Source interface {
	PatientSummaries(ctx context.Context) ([]appointment.PatientSummary, error)
	ListByPatient(ctx context.Context, name string) ([]appointment.Appointment, error)
}

type Patient struct {
	Name          string `json:"name"`
	VisitCount    int    `json:"visitCount"`
	LastVisitDate string `json:"lastVisitDate"`
}

type Detail struct {
	Name         string                    `json:"name"`
	TotalVisits  int                       `json:"totalVisits"`
	Appointments []appointment.Appointment `json:"appointments"`
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// ListPatients returns one entry per patient name, ordered by name.
func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := s.src.PatientSummaries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Patient, 0, len(rows))
	for _, r := range rows {
		out = append(out, Patient{Name: r.Name, VisitCount: r.VisitCount, LastVisitDate: r.LastVisitDate})
	}
	return out, nil
}

// GetPatientDetail returns every appointment for an exact, case-sensitive
// name match, most recent first.
func (s *Service) GetPatientDetail(ctx context.Context, name string) (*Detail, error) {
	if name == "" {
		return nil, apperr.Validation("patient name is required")
	}
	appts, err := s.src.ListByPatient(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, apperr.NotFound("patient %q not found", name)
	}
	return &Detail{Name: name, TotalVisits: len(appts), Appointments: appts}, nil
}
