package appointment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/clinic/clinic/internal/platform/apperr"
)

var fixedNow = time.Date(2025, 12, 20, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo, WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
	return svc, repo
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) *Appointment {
	t.Helper()
	a, err := svc.CreateAppointment(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateAppointment(%+v): %v", in, err)
	}
	return a
}

func rahul() CreateInput {
	return CreateInput{
		PatientName: "Rahul Mehta",
		DoctorName:  "Dr. Sharma",
		Date:        "2025-12-20",
		Time:        "10:30",
		Duration:    30,
		Status:      StatusScheduled,
		Mode:        ModeInPerson,
		Reason:      "Routine checkup",
	}
}

func TestService_RahulMehtaScenario(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	a := mustCreate(t, svc, rahul())
	if a.ID == "" {
		t.Fatal("expected generated id")
	}
	if a.PatientName != "Rahul Mehta" || a.DoctorName != "Dr. Sharma" || a.Date != "2025-12-20" ||
		a.Time != "10:30" || a.Duration != 30 || a.Status != StatusScheduled ||
		a.Mode != ModeInPerson || a.Reason != "Routine checkup" {
		t.Errorf("fields not echoed: %+v", a)
	}

	if _, err := svc.UpdateStatus(ctx, a.ID, "Confirmed"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	list, err := svc.ListAppointments(ctx, Filter{Date: "2025-12-20"})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(list) != 1 || list[0].Status != StatusConfirmed {
		t.Fatalf("expected one Confirmed record, got %+v", list)
	}

	counts, err := repo.CountByStatus(ctx, "2025-12-20")
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if len(counts) != 1 || counts[StatusConfirmed] != 1 {
		t.Errorf("expected {Confirmed: 1}, got %v", counts)
	}
}

func TestService_CreateAssignsUniqueIDs(t *testing.T) {
	svc, _ := newTestService()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		a := mustCreate(t, svc, rahul())
		if seen[a.ID] {
			t.Fatalf("duplicate id %s", a.ID)
		}
		seen[a.ID] = true
	}
	list, _ := svc.ListAppointments(context.Background(), Filter{})
	if len(list) != 20 {
		t.Errorf("expected 20 records, got %d", len(list))
	}
}

func TestService_CreateDefaults(t *testing.T) {
	svc, _ := newTestService()
	a := mustCreate(t, svc, CreateInput{PatientName: "Anita Singh", DoctorName: "Dr. Rao", Date: "2025-12-21", Time: "09:00"})
	if a.Duration != DefaultDuration {
		t.Errorf("expected default duration %d, got %d", DefaultDuration, a.Duration)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected Scheduled, got %s", a.Status)
	}
	if a.Mode != ModeInPerson {
		t.Errorf("expected In-Person, got %s", a.Mode)
	}
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{"missing patient", func(in *CreateInput) { in.PatientName = "" }},
		{"missing doctor", func(in *CreateInput) { in.DoctorName = "" }},
		{"missing date", func(in *CreateInput) { in.Date = "" }},
		{"malformed date", func(in *CreateInput) { in.Date = "20-12-2025" }},
		{"impossible date", func(in *CreateInput) { in.Date = "2025-02-30" }},
		{"missing time", func(in *CreateInput) { in.Time = "" }},
		{"malformed time", func(in *CreateInput) { in.Time = "10.30" }},
		{"blank patient", func(in *CreateInput) { in.PatientName = "   " }},
		{"blank doctor", func(in *CreateInput) { in.DoctorName = "\t " }},
		{"negative duration", func(in *CreateInput) { in.Duration = -15 }},
		{"duration over a day", func(in *CreateInput) { in.Duration = 1441 }},
		{"unknown status", func(in *CreateInput) { in.Status = "Completed" }},
		{"unknown mode", func(in *CreateInput) { in.Mode = "Carrier Pigeon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			in := rahul()
			tt.mutate(&in)
			_, err := svc.CreateAppointment(context.Background(), in)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if list, _ := repo.List(context.Background(), Query{}); len(list) != 0 {
				t.Errorf("expected nothing stored, got %d rows", len(list))
			}
		})
	}
}

func TestService_UpdateStatusIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	a := mustCreate(t, svc, rahul())

	for i := 0; i < 2; i++ {
		got, err := svc.UpdateStatus(ctx, a.ID, "Cancelled")
		if err != nil {
			t.Fatalf("UpdateStatus #%d: %v", i+1, err)
		}
		if got.Status != StatusCancelled {
			t.Errorf("expected Cancelled, got %s", got.Status)
		}
	}
	list, _ := svc.ListAppointments(ctx, Filter{})
	if len(list) != 1 {
		t.Errorf("expected one record, got %d", len(list))
	}
}

func TestService_UpdateStatusAnyToAny(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	a := mustCreate(t, svc, rahul())
	for _, from := range Statuses {
		for _, to := range Statuses {
			if _, err := svc.UpdateStatus(ctx, a.ID, string(from)); err != nil {
				t.Fatalf("set %s: %v", from, err)
			}
			got, err := svc.UpdateStatus(ctx, a.ID, string(to))
			if err != nil || got.Status != to {
				t.Fatalf("%s -> %s: got %v, %v", from, to, got, err)
			}
		}
	}
}

func TestService_UpdateStatusErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	a := mustCreate(t, svc, rahul())

	if _, err := svc.UpdateStatus(ctx, "nonexistent", "Confirmed"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for malformed id, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "8d0c1b1e-1111-4f5a-9f00-000000000000", "Confirmed"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, "confirmed"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for lowercase status, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, "Completed"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for Completed, got %v", err)
	}
}

func TestService_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	mustCreate(t, svc, CreateInput{PatientName: "C", DoctorName: "Dr. Sharma", Date: "2025-12-21", Time: "09:00"})
	mustCreate(t, svc, CreateInput{PatientName: "B", DoctorName: "Dr. Rao", Date: "2025-12-20", Time: "14:00"})
	mustCreate(t, svc, CreateInput{PatientName: "A", DoctorName: "Dr. Sharma", Date: "2025-12-20", Time: "08:30"})
	mustCreate(t, svc, CreateInput{PatientName: "D", DoctorName: "Dr. Sharma", Date: "2025-12-20", Time: "08:30"})

	all, err := svc.ListAppointments(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, a := range all {
		got = append(got, a.PatientName)
	}
	want := []string{"A", "D", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	byDate, _ := svc.ListAppointments(ctx, Filter{Date: "2025-12-20"})
	if len(byDate) != 3 {
		t.Errorf("expected 3 on 2025-12-20, got %d", len(byDate))
	}
	for _, a := range byDate {
		if a.Date != "2025-12-20" {
			t.Errorf("unexpected date %s", a.Date)
		}
	}
	if !sort.SliceIsSorted(byDate, func(i, j int) bool { return byDate[i].Time < byDate[j].Time }) {
		t.Error("expected ascending time order")
	}

	both, _ := svc.ListAppointments(ctx, Filter{Date: "2025-12-20", DoctorName: "Dr. Sharma"})
	if len(both) != 2 {
		t.Errorf("expected 2 for Dr. Sharma on 2025-12-20, got %d", len(both))
	}

	for _, f := range []Filter{{DoctorName: "Dr. Nobody"}, {Date: "1999-01-01"}, {Date: "not-a-date"}} {
		list, err := svc.ListAppointments(ctx, f)
		if err != nil {
			t.Errorf("filter %+v: unexpected error %v", f, err)
		}
		if len(list) != 0 {
			t.Errorf("filter %+v: expected empty, got %d", f, len(list))
		}
	}
}

func TestService_ListByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	a := mustCreate(t, svc, rahul())
	mustCreate(t, svc, rahul())
	if _, err := svc.UpdateStatus(ctx, a.ID, "Cancelled"); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListAppointments(ctx, Filter{Status: "Cancelled"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("expected only the cancelled record, got %+v", list)
	}
	if _, err := svc.ListAppointments(ctx, Filter{Status: "Done"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_ListTabs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	mustCreate(t, svc, CreateInput{PatientName: "Past", DoctorName: "Dr. Sharma", Date: "2025-12-19", Time: "09:00"})
	mustCreate(t, svc, CreateInput{PatientName: "Today", DoctorName: "Dr. Sharma", Date: "2025-12-20", Time: "09:00"})
	mustCreate(t, svc, CreateInput{PatientName: "Future", DoctorName: "Dr. Sharma", Date: "2025-12-22", Time: "09:00"})

	tests := []struct {
		tab, ref string
		want     string
	}{
		{"today", "", "Today"},
		{"upcoming", "", "Future"},
		{"past", "", "Past"},
		{"today", "2025-12-22", "Future"},
	}
	for _, tt := range tests {
		list, err := svc.ListAppointments(ctx, Filter{Tab: tt.tab, ReferenceDate: tt.ref})
		if err != nil {
			t.Fatalf("tab %s: %v", tt.tab, err)
		}
		if len(list) != 1 || list[0].PatientName != tt.want {
			t.Errorf("tab %s ref %q: expected %s, got %+v", tt.tab, tt.ref, tt.want, list)
		}
	}

	if _, err := svc.ListAppointments(ctx, Filter{Tab: "tomorrow"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for unknown tab, got %v", err)
	}
	if _, err := svc.ListAppointments(ctx, Filter{Tab: "today", ReferenceDate: "12/20"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for bad ref, got %v", err)
	}
}

func TestService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	a := mustCreate(t, svc, rahul())

	got, err := svc.GetAppointment(ctx, a.ID)
	if err != nil || got.ID != a.ID {
		t.Fatalf("GetAppointment: %v, %v", got, err)
	}
	if err := svc.DeleteAppointment(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if _, err := svc.GetAppointment(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := svc.DeleteAppointment(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestService_DistinctLists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	mustCreate(t, svc, CreateInput{PatientName: "Zara Khan", DoctorName: "Dr. Sharma", Date: "2025-12-22", Time: "09:00"})
	mustCreate(t, svc, CreateInput{PatientName: "Anita Singh", DoctorName: "Dr. Rao", Date: "2025-12-20", Time: "09:00"})
	mustCreate(t, svc, CreateInput{PatientName: "Anita Singh", DoctorName: "Dr. Sharma", Date: "2025-12-20", Time: "11:00"})

	names, _ := svc.ListDistinctPatientNames(ctx)
	if len(names) != 2 || names[0] != "Anita Singh" || names[1] != "Zara Khan" {
		t.Errorf("unexpected names %v", names)
	}
	doctors, _ := svc.ListDoctors(ctx)
	if len(doctors) != 2 || doctors[0] != "Dr. Rao" {
		t.Errorf("unexpected doctors %v", doctors)
	}
	dates, _ := svc.ListAppointmentDates(ctx, "")
	if len(dates) != 2 || dates[0] != "2025-12-20" || dates[1] != "2025-12-22" {
		t.Errorf("unexpected dates %v", dates)
	}
	rao, _ := svc.ListAppointmentDates(ctx, "Dr. Rao")
	if len(rao) != 1 || rao[0] != "2025-12-20" {
		t.Errorf("unexpected Dr. Rao dates %v", rao)
	}
}

func TestService_Queue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	mustCreate(t, svc, CreateInput{PatientName: "P1", DoctorName: "Dr. Sharma", Date: "2025-12-20", Time: "11:00"})
	mustCreate(t, svc, CreateInput{PatientName: "P2", DoctorName: "Dr. Rao", Date: "2025-12-20", Time: "09:00"})
	mustCreate(t, svc, CreateInput{PatientName: "P3", DoctorName: "Dr. Sharma", Date: "2025-12-20", Time: "09:30"})
	mustCreate(t, svc, CreateInput{PatientName: "P4", DoctorName: "Dr. Sharma", Date: "2025-12-21", Time: "09:30"})

	q, err := svc.Queue(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"P2": 1, "P3": 1, "P1": 2}
	if len(q) != 3 {
		t.Fatalf("expected 3 entries for today, got %d", len(q))
	}
	for _, e := range q {
		if want[e.PatientName] != e.QueueNumber {
			t.Errorf("%s: expected queue number %d, got %d", e.PatientName, want[e.PatientName], e.QueueNumber)
		}
	}
	if q[0].PatientName != "P2" {
		t.Errorf("expected time order, got first %s", q[0].PatientName)
	}

	if _, err := svc.Queue(ctx, "20-12-2025"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_OnChange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	calls := 0
	svc.OnChange(func(context.Context) { calls++ })

	a := mustCreate(t, svc, rahul())
	_, _ = svc.UpdateStatus(ctx, a.ID, "Confirmed")
	_ = svc.DeleteAppointment(ctx, a.ID)
	_, _ = svc.UpdateStatus(ctx, a.ID, "Confirmed")
	_, _ = svc.CreateAppointment(ctx, CreateInput{})

	if calls != 3 {
		t.Errorf("expected 3 change notifications, got %d", calls)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	n, err := Seed(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(demoAppointments) {
		t.Errorf("expected %d inserted, got %d", len(demoAppointments), n)
	}
	n, err = Seed(ctx, repo)
	if err != nil || n != 0 {
		t.Errorf("expected second seed to insert nothing, got %d, %v", n, err)
	}
}
