package appointment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clinic/clinic/internal/platform/apperr"
)

// appointmentRecord is the MySQL row. Date and time are stored as their
// canonical text forms, which also sort correctly as strings. Names use a
// binary collation so matching and ordering are case-sensitive.
type appointmentRecord struct {
	ID          string    `gorm:"primaryKey;type:char(36)"`
	Seq         uint64    `gorm:"autoIncrement;uniqueIndex"`
	PatientName string    `gorm:"type:varchar(255) COLLATE utf8mb4_bin;not null;index"`
	DoctorName  string    `gorm:"type:varchar(255) COLLATE utf8mb4_bin;not null;index"`
	ApptDate    string    `gorm:"column:appt_date;type:char(10);not null;index:idx_appt_date_time,priority:1"`
	ApptTime    string    `gorm:"column:appt_time;type:char(5);not null;index:idx_appt_date_time,priority:2"`
	Duration    int       `gorm:"not null"`
	Status      string    `gorm:"size:16;not null;default:Scheduled"`
	Mode        string    `gorm:"size:16;not null;default:In-Person"`
	Reason      string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (appointmentRecord) TableName() string { return "appointments" }

func (rec *appointmentRecord) toModel() Appointment {
	return Appointment{
		ID:          rec.ID,
		PatientName: rec.PatientName,
		DoctorName:  rec.DoctorName,
		Date:        rec.ApptDate,
		Time:        rec.ApptTime,
		Duration:    rec.Duration,
		Status:      Status(rec.Status),
		Mode:        Mode(rec.Mode),
		Reason:      rec.Reason,
		CreatedAt:   rec.CreatedAt,
	}
}

type repoGorm struct {
	db *gorm.DB
}

// NewRepoGorm returns a Repository backed by GORM. It is used with the MySQL
// dialector.
func NewRepoGorm(db *gorm.DB) Repository { return &repoGorm{db: db} }

// AutoMigrateGorm creates or updates the appointments table.
func AutoMigrateGorm(db *gorm.DB) error {
	return db.AutoMigrate(&appointmentRecord{})
}

func (r *repoGorm) model(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&appointmentRecord{})
}

func toModels(recs []appointmentRecord) []Appointment {
	out := make([]Appointment, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out
}

func (r *repoGorm) List(ctx context.Context, q Query) ([]Appointment, error) {
	tx := r.model(ctx)
	if q.DoctorName != "" {
		tx = tx.Where("doctor_name = ?", q.DoctorName)
	}
	if q.Date != "" {
		tx = tx.Where("appt_date = ?", q.Date)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", string(q.Status))
	}
	if q.After != "" {
		tx = tx.Where("appt_date > ?", q.After)
	}
	if q.Before != "" {
		tx = tx.Where("appt_date < ?", q.Before)
	}
	var recs []appointmentRecord
	if err := tx.Order("appt_date, appt_time, seq").Find(&recs).Error; err != nil {
		return nil, apperr.Store("list appointments", err)
	}
	return toModels(recs), nil
}

func (r *repoGorm) Get(ctx context.Context, id string) (*Appointment, error) {
	var rec appointmentRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	if err != nil {
		return nil, apperr.Store("get appointment", err)
	}
	a := rec.toModel()
	return &a, nil
}

func (r *repoGorm) Create(ctx context.Context, a *Appointment) error {
	rec := appointmentRecord{
		ID:          a.ID,
		PatientName: a.PatientName,
		DoctorName:  a.DoctorName,
		ApptDate:    a.Date,
		ApptTime:    a.Time,
		Duration:    a.Duration,
		Status:      string(a.Status),
		Mode:        string(a.Mode),
		Reason:      a.Reason,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return apperr.Store("insert appointment", err)
	}
	a.CreatedAt = rec.CreatedAt
	return nil
}

func (r *repoGorm) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	var out *Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec appointmentRecord
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&rec).Update("status", string(status)).Error; err != nil {
			return err
		}
		a := rec.toModel()
		out = &a
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	if err != nil {
		return nil, apperr.Store("update appointment status", err)
	}
	return out, nil
}

func (r *repoGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&appointmentRecord{})
	if res.Error != nil {
		return apperr.Store("delete appointment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("appointment %s not found", id)
	}
	return nil
}

func (r *repoGorm) PatientNames(ctx context.Context) ([]string, error) {
	var out []string
	err := r.model(ctx).Distinct("patient_name").Order("patient_name").Pluck("patient_name", &out).Error
	return nonNil(out), apperr.Store("list patient names", err)
}

func (r *repoGorm) Doctors(ctx context.Context) ([]string, error) {
	var out []string
	err := r.model(ctx).Distinct("doctor_name").Order("doctor_name").Pluck("doctor_name", &out).Error
	return nonNil(out), apperr.Store("list doctors", err)
}

func (r *repoGorm) Dates(ctx context.Context, doctorName string) ([]string, error) {
	tx := r.model(ctx)
	if doctorName != "" {
		tx = tx.Where("doctor_name = ?", doctorName)
	}
	var out []string
	err := tx.Distinct("appt_date").Order("appt_date").Pluck("appt_date", &out).Error
	return nonNil(out), apperr.Store("list appointment dates", err)
}

type keyCount struct {
	K string
	N int
}

func (r *repoGorm) groupCount(tx *gorm.DB, op, column string) (map[string]int, error) {
	var rows []keyCount
	err := tx.Select(column + " AS k, COUNT(*) AS n").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	out := make(map[string]int, len(rows))
	for _, kc := range rows {
		out[kc.K] = kc.N
	}
	return out, nil
}

func (r *repoGorm) CountByStatus(ctx context.Context, date string) (map[Status]int, error) {
	m, err := r.groupCount(r.model(ctx).Where("appt_date = ?", date), "count by status", "status")
	if err != nil {
		return nil, err
	}
	out := make(map[Status]int, len(m))
	for k, n := range m {
		out[Status(k)] = n
	}
	return out, nil
}

func (r *repoGorm) CountByDate(ctx context.Context, start, end string) ([]DateCount, error) {
	tx := r.model(ctx).Where("appt_date >= ?", start)
	if end != "" {
		tx = tx.Where("appt_date <= ?", end)
	}
	var rows []keyCount
	err := tx.Select("appt_date AS k, COUNT(*) AS n").Group("appt_date").Order("appt_date").Scan(&rows).Error
	if err != nil {
		return nil, apperr.Store("count by date", err)
	}
	out := make([]DateCount, 0, len(rows))
	for _, kc := range rows {
		out = append(out, DateCount{Date: kc.K, Count: kc.N})
	}
	return out, nil
}

func (r *repoGorm) CancelledByDoctor(ctx context.Context) (map[string]int, error) {
	return r.groupCount(r.model(ctx).Where("status = ?", string(StatusCancelled)), "count cancellations", "doctor_name")
}

func (r *repoGorm) CountByDoctor(ctx context.Context) (map[string]int, error) {
	return r.groupCount(r.model(ctx), "count by doctor", "doctor_name")
}

func (r *repoGorm) PatientSummaries(ctx context.Context) ([]PatientSummary, error) {
	var rows []struct {
		Name          string
		VisitCount    int
		LastVisitDate string
	}
	err := r.model(ctx).
		Select("patient_name AS name, COUNT(*) AS visit_count, MAX(appt_date) AS last_visit_date").
		Group("patient_name").Order("patient_name").Scan(&rows).Error
	if err != nil {
		return nil, apperr.Store("summarize patients", err)
	}
	out := make([]PatientSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, PatientSummary{Name: row.Name, VisitCount: row.VisitCount, LastVisitDate: row.LastVisitDate})
	}
	return out, nil
}

func (r *repoGorm) ListByPatient(ctx context.Context, name string) ([]Appointment, error) {
	var recs []appointmentRecord
	err := r.model(ctx).Where("patient_name = ?", name).
		Order("appt_date DESC, appt_time DESC, seq DESC").Find(&recs).Error
	if err != nil {
		return nil, apperr.Store("list patient appointments", err)
	}
	return toModels(recs), nil
}

func (r *repoGorm) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperr.Store("ping", err)
	}
	return apperr.Store("ping", sqlDB.PingContext(ctx))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
