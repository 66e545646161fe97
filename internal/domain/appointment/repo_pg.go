package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Repository backed by PostgreSQL.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

// Dates and times travel as text so that the wire format is fixed by SQL
// rather than by driver type mapping.
const apptCols = `id::text, patient_name, doctor_name,
	to_char(appt_date, 'YYYY-MM-DD'), to_char(appt_time, 'HH24:MI'),
	duration, status, mode, COALESCE(reason, ''), created_at`

const apptOrder = ` ORDER BY appt_date, appt_time, seq`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.Date, &a.Time,
		&a.Duration, &a.Status, &a.Mode, &a.Reason, &a.CreatedAt)
	return &a, err
}

func collect(rows pgx.Rows, op string) ([]Appointment, error) {
	defer rows.Close()
	out := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, apperr.Store(op, err)
		}
		out = append(out, *a)
	}
	return out, apperr.Store(op, rows.Err())
}

func (r *repoPG) List(ctx context.Context, q Query) ([]Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointments WHERE 1=1`
	var args []interface{}
	idx := 1

	if q.DoctorName != "" {
		query += fmt.Sprintf(` AND doctor_name = $%d`, idx)
		args = append(args, q.DoctorName)
		idx++
	}
	if q.Date != "" {
		query += fmt.Sprintf(` AND appt_date = $%d::text::date`, idx)
		args = append(args, q.Date)
		idx++
	}
	if q.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, string(q.Status))
		idx++
	}
	if q.After != "" {
		query += fmt.Sprintf(` AND appt_date > $%d::text::date`, idx)
		args = append(args, q.After)
		idx++
	}
	if q.Before != "" {
		query += fmt.Sprintf(` AND appt_date < $%d::text::date`, idx)
		args = append(args, q.Before)
	}

	rows, err := r.pool.Query(ctx, query+apptOrder, args...)
	if err != nil {
		return nil, apperr.Store("list appointments", err)
	}
	return collect(rows, "list appointments")
}

func (r *repoPG) Get(ctx context.Context, id string) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1::text::uuid`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	if err != nil {
		return nil, apperr.Store("get appointment", err)
	}
	return a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_name, doctor_name, appt_date, appt_time,
			duration, status, mode, reason)
		VALUES ($1::text::uuid, $2, $3, $4::text::date, $5::text::time, $6, $7, $8, $9)
		RETURNING created_at`,
		a.ID, a.PatientName, a.DoctorName, a.Date, a.Time,
		a.Duration, string(a.Status), string(a.Mode), a.Reason).Scan(&a.CreatedAt)
	return apperr.Store("insert appointment", err)
}

func (r *repoPG) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1::text::uuid
		RETURNING `+apptCols, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	if err != nil {
		return nil, apperr.Store("update appointment status", err)
	}
	return a, nil
}

func (r *repoPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1::text::uuid`, id)
	if err != nil {
		return apperr.Store("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment %s not found", id)
	}
	return nil
}

func (r *repoPG) strings(ctx context.Context, op, query string, args ...interface{}) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, apperr.Store(op, err)
		}
		out = append(out, s)
	}
	return out, apperr.Store(op, rows.Err())
}

func (r *repoPG) PatientNames(ctx context.Context) ([]string, error) {
	return r.strings(ctx, "list patient names",
		`SELECT DISTINCT patient_name FROM appointments ORDER BY patient_name COLLATE "C"`)
}

func (r *repoPG) Doctors(ctx context.Context) ([]string, error) {
	return r.strings(ctx, "list doctors",
		`SELECT DISTINCT doctor_name FROM appointments ORDER BY doctor_name COLLATE "C"`)
}

func (r *repoPG) Dates(ctx context.Context, doctorName string) ([]string, error) {
	if doctorName == "" {
		return r.strings(ctx, "list appointment dates",
			`SELECT DISTINCT to_char(appt_date, 'YYYY-MM-DD') AS d FROM appointments ORDER BY d`)
	}
	return r.strings(ctx, "list appointment dates",
		`SELECT DISTINCT to_char(appt_date, 'YYYY-MM-DD') AS d FROM appointments
		WHERE doctor_name = $1 ORDER BY d`, doctorName)
}

// counts scans (key, count) rows into a map.
func (r *repoPG) counts(ctx context.Context, op, query string, args ...interface{}) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, apperr.Store(op, err)
		}
		out[k] = n
	}
	return out, apperr.Store(op, rows.Err())
}

func (r *repoPG) CountByStatus(ctx context.Context, date string) (map[Status]int, error) {
	m, err := r.counts(ctx, "count by status",
		`SELECT status, COUNT(*) FROM appointments WHERE appt_date = $1::text::date GROUP BY status`, date)
	if err != nil {
		return nil, err
	}
	out := make(map[Status]int, len(m))
	for k, n := range m {
		out[Status(k)] = n
	}
	return out, nil
}

func (r *repoPG) CountByDate(ctx context.Context, start, end string) ([]DateCount, error) {
	query := `SELECT to_char(appt_date, 'YYYY-MM-DD'), COUNT(*) FROM appointments
		WHERE appt_date >= $1::text::date`
	args := []interface{}{start}
	if end != "" {
		query += ` AND appt_date <= $2::text::date`
		args = append(args, end)
	}
	query += ` GROUP BY appt_date ORDER BY appt_date`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("count by date", err)
	}
	defer rows.Close()
	out := make([]DateCount, 0)
	for rows.Next() {
		var dc DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, apperr.Store("count by date", err)
		}
		out = append(out, dc)
	}
	return out, apperr.Store("count by date", rows.Err())
}

func (r *repoPG) CancelledByDoctor(ctx context.Context) (map[string]int, error) {
	return r.counts(ctx, "count cancellations",
		`SELECT doctor_name, COUNT(*) FROM appointments WHERE status = $1 GROUP BY doctor_name`,
		string(StatusCancelled))
}

func (r *repoPG) CountByDoctor(ctx context.Context) (map[string]int, error) {
	return r.counts(ctx, "count by doctor",
		`SELECT doctor_name, COUNT(*) FROM appointments GROUP BY doctor_name`)
}

func (r *repoPG) PatientSummaries(ctx context.Context) ([]PatientSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT patient_name, COUNT(*), to_char(MAX(appt_date), 'YYYY-MM-DD')
		FROM appointments GROUP BY patient_name ORDER BY patient_name COLLATE "C"`)
	if err != nil {
		return nil, apperr.Store("summarize patients", err)
	}
	defer rows.Close()
	out := make([]PatientSummary, 0)
	for rows.Next() {
		var p PatientSummary
		if err := rows.Scan(&p.Name, &p.VisitCount, &p.LastVisitDate); err != nil {
			return nil, apperr.Store("summarize patients", err)
		}
		out = append(out, p)
	}
	return out, apperr.Store("summarize patients", rows.Err())
}

func (r *repoPG) ListByPatient(ctx context.Context, name string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE patient_name = $1 ORDER BY appt_date DESC, appt_time DESC, seq DESC`, name)
	if err != nil {
		return nil, apperr.Store("list patient appointments", err)
	}
	return collect(rows, "list patient appointments")
}

func (r *repoPG) Ping(ctx context.Context) error {
	return apperr.Store("ping", r.pool.Ping(ctx))
}
