package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const settingsCols = `clinic_name, timezone, email_notifications, sms_reminders,
	push_notifications, business_start, business_end, appointment_duration,
	two_factor_auth, session_timeout, poll_interval_seconds, updated_at`

func (r *repoPG) Get(ctx context.Context) (*Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT `+settingsCols+` FROM app_settings WHERE id = 1`).Scan(
		&s.ClinicName, &s.Timezone, &s.EmailNotifications, &s.SMSReminders,
		&s.PushNotifications, &s.BusinessStart, &s.BusinessEnd, &s.AppointmentDuration,
		&s.TwoFactorAuth, &s.SessionTimeout, &s.PollIntervalSeconds, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("settings not initialized")
	}
	if err != nil {
		return nil, apperr.Store("get settings", err)
	}
	return &s, nil
}

const insertSettings = `INSERT INTO app_settings (id, clinic_name, timezone, email_notifications,
	sms_reminders, push_notifications, business_start, business_end, appointment_duration,
	two_factor_auth, session_timeout, poll_interval_seconds, updated_at)
	VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())`

func args(s *Settings) []interface{} {
	return []interface{}{s.ClinicName, s.Timezone, s.EmailNotifications, s.SMSReminders,
		s.PushNotifications, s.BusinessStart, s.BusinessEnd, s.AppointmentDuration,
		s.TwoFactorAuth, s.SessionTimeout, s.PollIntervalSeconds}
}

func (r *repoPG) CreateIfAbsent(ctx context.Context, s *Settings) error {
	_, err := r.pool.Exec(ctx, insertSettings+` ON CONFLICT (id) DO NOTHING`, args(s)...)
	return apperr.Store("init settings", err)
}

func (r *repoPG) Save(ctx context.Context, s *Settings) error {
	err := r.pool.QueryRow(ctx, insertSettings+`
		ON CONFLICT (id) DO UPDATE SET
			clinic_name = EXCLUDED.clinic_name,
			timezone = EXCLUDED.timezone,
			email_notifications = EXCLUDED.email_notifications,
			sms_reminders = EXCLUDED.sms_reminders,
			push_notifications = EXCLUDED.push_notifications,
			business_start = EXCLUDED.business_start,
			business_end = EXCLUDED.business_end,
			appointment_duration = EXCLUDED.appointment_duration,
			two_factor_auth = EXCLUDED.two_factor_auth,
			session_timeout = EXCLUDED.session_timeout,
			poll_interval_seconds = EXCLUDED.poll_interval_seconds,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`, args(s)...).Scan(&s.UpdatedAt)
	return apperr.Store("save settings", err)
}
