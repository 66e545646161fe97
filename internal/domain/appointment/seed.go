package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apperr"
)

var seedNamespace = uuid.MustParse("6f1c1d52-3a5e-4b8e-9d4f-2c7a0b9e8d11")

// demoAppointments is a small week of clinic activity used for demos.
var demoAppointments = []struct {
	key string
	in  CreateInput
}{
	{"apt-001", CreateInput{PatientName: "Sarah Johnson", DoctorName: "Dr. Emily Chen", Date: "2024-12-13", Time: "09:00", Duration: 30, Status: StatusConfirmed, Mode: ModeInPerson, Reason: "Annual checkup"}},
	{"apt-002", CreateInput{PatientName: "Michael Brown", DoctorName: "Dr. James Wilson", Date: "2024-12-13", Time: "10:30", Duration: 45, Status: StatusScheduled, Mode: ModeVideo, Reason: "Follow-up consultation"}},
	{"apt-003", CreateInput{PatientName: "Emma Davis", DoctorName: "Dr. Emily Chen", Date: "2024-12-13", Time: "14:00", Duration: 30, Status: StatusUpcoming, Mode: ModeInPerson, Reason: "Vaccination"}},
	{"apt-004", CreateInput{PatientName: "Robert Martinez", DoctorName: "Dr. Sarah Kim", Date: "2024-12-14", Time: "09:30", Duration: 60, Status: StatusScheduled, Mode: ModeInPerson, Reason: "Physical therapy session"}},
	{"apt-005", CreateInput{PatientName: "Lisa Anderson", DoctorName: "Dr. James Wilson", Date: "2024-12-14", Time: "11:00", Duration: 30, Status: StatusUpcoming, Mode: ModePhone, Reason: "Prescription renewal"}},
	{"apt-006", CreateInput{PatientName: "David Thompson", DoctorName: "Dr. Emily Chen", Date: "2024-12-12", Time: "15:00", Duration: 45, Status: StatusConfirmed, Mode: ModeVideo, Reason: "Mental health check-in"}},
	{"apt-007", CreateInput{PatientName: "Jennifer White", DoctorName: "Dr. Sarah Kim", Date: "2024-12-11", Time: "10:00", Duration: 30, Status: StatusCancelled, Mode: ModeInPerson, Reason: "Dermatology consultation"}},
	{"apt-008", CreateInput{PatientName: "Christopher Lee", DoctorName: "Dr. James Wilson", Date: "2024-12-15", Time: "13:30", Duration: 45, Status: StatusScheduled, Mode: ModeInPerson, Reason: "Cardiology checkup"}},
	{"apt-009", CreateInput{PatientName: "Amanda Garcia", DoctorName: "Dr. Emily Chen", Date: "2024-12-16", Time: "09:00", Duration: 30, Status: StatusUpcoming, Mode: ModeVideo, Reason: "Lab results review"}},
	{"apt-010", CreateInput{PatientName: "Kevin Robinson", DoctorName: "Dr. Sarah Kim", Date: "2024-12-10", Time: "16:00", Duration: 60, Status: StatusConfirmed, Mode: ModeInPerson, Reason: "Surgery follow-up"}},
	{"apt-011", CreateInput{PatientName: "Michelle Taylor", DoctorName: "Dr. James Wilson", Date: "2024-12-13", Time: "16:30", Duration: 30, Status: StatusScheduled, Mode: ModePhone, Reason: "Test results discussion"}},
	{"apt-012", CreateInput{PatientName: "Daniel Harris", DoctorName: "Dr. Emily Chen", Date: "2024-12-17", Time: "11:30", Duration: 45, Status: StatusUpcoming, Mode: ModeInPerson, Reason: "Orthopedic evaluation"}},
	{"apt-013", CreateInput{PatientName: "Patricia Moore", DoctorName: "Dr. Sarah Kim", Date: "2024-12-13", Time: "08:00", Duration: 30, Status: StatusConfirmed, Mode: ModeInPerson, Reason: "Routine blood work"}},
	{"apt-014", CreateInput{PatientName: "William Clark", DoctorName: "Dr. Emily Chen", Date: "2024-12-14", Time: "14:30", Duration: 45, Status: StatusScheduled, Mode: ModeVideo, Reason: "Diabetes management"}},
	{"apt-015", CreateInput{PatientName: "Nancy Lewis", DoctorName: "Dr. James Wilson", Date: "2024-12-15", Time: "10:00", Duration: 30, Status: StatusUpcoming, Mode: ModeInPerson, Reason: "Allergy consultation"}},
	{"apt-016", CreateInput{PatientName: "Thomas Walker", DoctorName: "Dr. Sarah Kim", Date: "2024-12-16", Time: "15:30", Duration: 60, Status: StatusScheduled, Mode: ModeInPerson, Reason: "Physical examination"}},
	{"apt-017", CreateInput{PatientName: "Elizabeth Hall", DoctorName: "Dr. Emily Chen", Date: "2024-12-17", Time: "09:30", Duration: 30, Status: StatusUpcoming, Mode: ModePhone, Reason: "Medication review"}},
	{"apt-018", CreateInput{PatientName: "James Young", DoctorName: "Dr. James Wilson", Date: "2024-12-10", Time: "11:00", Duration: 45, Status: StatusConfirmed, Mode: ModeVideo, Reason: "Gastroenterology follow-up"}},
	{"apt-019", CreateInput{PatientName: "Barbara King", DoctorName: "Dr. Sarah Kim", Date: "2024-12-11", Time: "14:00", Duration: 30, Status: StatusCancelled, Mode: ModeInPerson, Reason: "ENT consultation"}},
	{"apt-020", CreateInput{PatientName: "Richard Wright", DoctorName: "Dr. Emily Chen", Date: "2024-12-18", Time: "10:30", Duration: 45, Status: StatusScheduled, Mode: ModeInPerson, Reason: "Neurology assessment"}},
}

// Seed inserts the demo appointments. Ids are derived from a fixed key per
// row, so running it again skips rows that already exist.
func Seed(ctx context.Context, repo Repository) (int, error) {
	inserted := 0
	for _, d := range demoAppointments {
		id := uuid.NewSHA1(seedNamespace, []byte(d.key)).String()
		_, err := repo.Get(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return inserted, err
		}
		a := &Appointment{
			ID:          id,
			PatientName: d.in.PatientName,
			DoctorName:  d.in.DoctorName,
			Date:        d.in.Date,
			Time:        d.in.Time,
			Duration:    d.in.Duration,
			Status:      d.in.Status,
			Mode:        d.in.Mode,
			Reason:      d.in.Reason,
		}
		if err := repo.Create(ctx, a); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
