package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinic/clinic/internal/platform/apperr"
)

// MemoryRepo keeps appointments in insertion order behind a RWMutex.
type MemoryRepo struct {
	mu    sync.RWMutex
	rows  []*Appointment
	index map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{index: make(map[string]int)}
}

func (r *MemoryRepo) List(_ context.Context, q Query) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Appointment, 0)
	for _, a := range r.rows {
		if matches(a, q) {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	a := *r.rows[i]
	return &a, nil
}

func (r *MemoryRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.index[a.ID]; dup {
		return apperr.Validation("appointment %s already exists", a.ID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	row := *a
	r.index[a.ID] = len(r.rows)
	r.rows = append(r.rows, &row)
	return nil
}

func (r *MemoryRepo) UpdateStatus(_ context.Context, id string, status Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	r.rows[i].Status = status
	a := *r.rows[i]
	return &a, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return apperr.NotFound("appointment %s not found", id)
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.rows); j++ {
		r.index[r.rows[j].ID] = j
	}
	return nil
}

func (r *MemoryRepo) PatientNames(_ context.Context) ([]string, error) {
	return r.distinct(func(a *Appointment) string { return a.PatientName }), nil
}

func (r *MemoryRepo) Doctors(_ context.Context) ([]string, error) {
	return r.distinct(func(a *Appointment) string { return a.DoctorName }), nil
}

func (r *MemoryRepo) Dates(_ context.Context, doctorName string) ([]string, error) {
	return r.distinct(func(a *Appointment) string {
		if doctorName != "" && a.DoctorName != doctorName {
			return ""
		}
		return a.Date
	}), nil
}

// distinct collects the sorted set of non-empty keys.
func (r *MemoryRepo) distinct(key func(*Appointment) string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, a := range r.rows {
		k := key(a)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *MemoryRepo) CountByStatus(_ context.Context, date string) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Status]int)
	for _, a := range r.rows {
		if a.Date == date {
			out[a.Status]++
		}
	}
	return out, nil
}

func (r *MemoryRepo) CountByDate(_ context.Context, start, end string) ([]DateCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range r.rows {
		if a.Date < start || (end != "" && a.Date > end) {
			continue
		}
		counts[a.Date]++
	}
	out := make([]DateCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DateCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *MemoryRepo) CancelledByDoctor(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, a := range r.rows {
		if a.Status == StatusCancelled {
			out[a.DoctorName]++
		}
	}
	return out, nil
}

func (r *MemoryRepo) CountByDoctor(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, a := range r.rows {
		out[a.DoctorName]++
	}
	return out, nil
}

func (r *MemoryRepo) PatientSummaries(_ context.Context) ([]PatientSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := make(map[string]*PatientSummary)
	for _, a := range r.rows {
		p, ok := byName[a.PatientName]
		if !ok {
			p = &PatientSummary{Name: a.PatientName}
			byName[a.PatientName] = p
		}
		p.VisitCount++
		if a.Date > p.LastVisitDate {
			p.LastVisitDate = a.Date
		}
	}
	out := make([]PatientSummary, 0, len(byName))
	for _, p := range byName {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) ListByPatient(_ context.Context, name string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Appointment, 0)
	for _, a := range r.rows {
		if a.PatientName == name {
			out = append(out, *a)
		}
	}
	// Reverse insertion order first so equal (date, time) keeps newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }
