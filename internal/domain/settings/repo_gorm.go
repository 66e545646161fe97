package settings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type settingsRecord struct {
	ID                  int    `gorm:"primaryKey;autoIncrement:false"`
	ClinicName          string `gorm:"size:200;not null"`
	Timezone            string `gorm:"size:64;not null"`
	EmailNotifications  bool   `gorm:"not null"`
	SMSReminders        bool   `gorm:"column:sms_reminders;not null"`
	PushNotifications   bool   `gorm:"not null"`
	BusinessStart       string `gorm:"type:char(5);not null"`
	BusinessEnd         string `gorm:"type:char(5);not null"`
	AppointmentDuration int    `gorm:"not null"`
	TwoFactorAuth       bool   `gorm:"not null"`
	SessionTimeout      bool   `gorm:"not null"`
	PollIntervalSeconds int    `gorm:"not null"`
	UpdatedAt           time.Time
}

func (settingsRecord) TableName() string { return "app_settings" }

func fromSettings(s *Settings) settingsRecord {
	return settingsRecord{
		ID:                  1,
		ClinicName:          s.ClinicName,
		Timezone:            s.Timezone,
		EmailNotifications:  s.EmailNotifications,
		SMSReminders:        s.SMSReminders,
		PushNotifications:   s.PushNotifications,
		BusinessStart:       s.BusinessStart,
		BusinessEnd:         s.BusinessEnd,
		AppointmentDuration: s.AppointmentDuration,
		TwoFactorAuth:       s.TwoFactorAuth,
		SessionTimeout:      s.SessionTimeout,
		PollIntervalSeconds: s.PollIntervalSeconds,
	}
}

func (rec *settingsRecord) toSettings() *Settings {
	return &Settings{
		ClinicName:          rec.ClinicName,
		Timezone:            rec.Timezone,
		EmailNotifications:  rec.EmailNotifications,
		SMSReminders:        rec.SMSReminders,
		PushNotifications:   rec.PushNotifications,
		BusinessStart:       rec.BusinessStart,
		BusinessEnd:         rec.BusinessEnd,
		AppointmentDuration: rec.AppointmentDuration,
		TwoFactorAuth:       rec.TwoFactorAuth,
		SessionTimeout:      rec.SessionTimeout,
		PollIntervalSeconds: rec.PollIntervalSeconds,
		UpdatedAt:           rec.UpdatedAt,
	}
}

type repoGorm struct{ db *gorm.DB }

func NewRepoGorm(db *gorm.DB) Repository { return &repoGorm{db: db} }

// AutoMigrateGorm creates or updates the settings table.
func AutoMigrateGorm(db *gorm.DB) error {
	return db.AutoMigrate(&settingsRecord{})
}

func (r *repoGorm) Get(ctx context.Context) (*Settings, error) {
	var rec settingsRecord
	err := r.db.WithContext(ctx).First(&rec, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("settings not initialized")
	}
	if err != nil {
		return nil, apperr.Store("get settings", err)
	}
	return rec.toSettings(), nil
}

func (r *repoGorm) CreateIfAbsent(ctx context.Context, s *Settings) error {
	rec := fromSettings(s)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
	return apperr.Store("init settings", err)
}

func (r *repoGorm) Save(ctx context.Context, s *Settings) error {
	rec := fromSettings(s)
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return apperr.Store("save settings", err)
	}
	s.UpdatedAt = rec.UpdatedAt
	return nil
}
