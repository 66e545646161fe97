package appointment

import (
	"time"

	"github.com/clinic/clinic/internal/platform/apperr"
)

// Status is the lifecycle tag of an appointment. The values are independent
// flags: any status may be replaced by any other.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusConfirmed Status = "Confirmed"
	StatusUpcoming  Status = "Upcoming"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists the canonical set in display order.
var Statuses = []Status{StatusScheduled, StatusConfirmed, StatusUpcoming, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusUpcoming, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts only canonical, case-sensitive status names.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", apperr.Validation("invalid status %q: must be one of Scheduled, Confirmed, Upcoming, Cancelled", v)
	}
	return s, nil
}

// Mode is the delivery channel of the encounter.
type Mode string

const (
	ModeInPerson Mode = "In-Person"
	ModeVideo    Mode = "Video"
	ModePhone    Mode = "Phone"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeInPerson, ModeVideo, ModePhone:
		return true
	}
	return false
}

// DefaultDuration is used when a create request omits duration.
const DefaultDuration = 30

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	DoctorName  string    `json:"doctorName"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Duration    int       `json:"duration"`
	Status      Status    `json:"status"`
	Mode        Mode      `json:"mode"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateInput is an appointment without server-assigned fields.
type CreateInput struct {
	PatientName string `json:"patientName" validate:"required,notblank"`
	DoctorName  string `json:"doctorName" validate:"required,notblank"`
	Date        string `json:"date" validate:"required,isodate"`
	Time        string `json:"time" validate:"required,hhmm"`
	Duration    int    `json:"duration" validate:"gte=0,lte=1440"`
	Status      Status `json:"status" validate:"omitempty,oneof=Scheduled Confirmed Upcoming Cancelled"`
	Mode        Mode   `json:"mode" validate:"omitempty,oneof=In-Person Video Phone"`
	Reason      string `json:"reason"`
}

// Tab selects appointments relative to a reference date.
type Tab string

const (
	TabToday    Tab = "today"
	TabUpcoming Tab = "upcoming"
	TabPast     Tab = "past"
)

// Filter narrows ListAppointments. Empty fields do not filter.
type Filter struct {
	DoctorName    string
	Date          string
	Status        string
	Tab           string
	ReferenceDate string
}

// Query is the store-level form of a Filter. After and Before are exclusive
// date bounds.
type Query struct {
	DoctorName string
	Date       string
	Status     Status
	After      string
	Before     string
}

// QueueEntry is an appointment with its 1-based position in its doctor's
// queue for the day.
type QueueEntry struct {
	Appointment
	QueueNumber int `json:"queueNumber"`
}

// DateCount is the number of appointments on one date.
type DateCount struct {
	Date  string
	Count int
}

// PatientSummary aggregates the appointments of one patient name.
type PatientSummary struct {
	Name          string
	VisitCount    int
	LastVisitDate string
}

func matches(a *Appointment, q Query) bool {
	if q.DoctorName != "" && a.DoctorName != q.DoctorName {
		return false
	}
	if q.Date != "" && a.Date != q.Date {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.After != "" && a.Date <= q.After {
		return false
	}
	if q.Before != "" && a.Date >= q.Before {
		return false
	}
	return true
}
