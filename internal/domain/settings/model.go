package settings

import "time"

// Settings is the single clinic configuration row.
type Settings struct {
	ClinicName          string    `json:"clinicName" validate:"required,notblank,max=200"`
	Timezone            string    `json:"timezone" validate:"required"`
	EmailNotifications  bool      `json:"emailNotifications"`
	SMSReminders        bool      `json:"smsReminders"`
	PushNotifications   bool      `json:"pushNotifications"`
	BusinessStart       string    `json:"businessStart" validate:"required,hhmm"`
	BusinessEnd         string    `json:"businessEnd" validate:"required,hhmm"`
	AppointmentDuration int       `json:"appointmentDuration" validate:"gt=0,lte=480"`
	TwoFactorAuth       bool      `json:"twoFactorAuth"`
	SessionTimeout      bool      `json:"sessionTimeout"`
	PollIntervalSeconds int       `json:"pollIntervalSeconds" validate:"gte=1,lte=3600"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Defaults is the configuration a fresh clinic starts with.
func Defaults() Settings {
	return Settings{
		ClinicName:          "Healthcare Clinic",
		Timezone:            "America/New_York",
		EmailNotifications:  true,
		SMSReminders:        true,
		PushNotifications:   false,
		BusinessStart:       "08:00",
		BusinessEnd:         "18:00",
		AppointmentDuration: 30,
		TwoFactorAuth:       false,
		SessionTimeout:      true,
		PollIntervalSeconds: 5,
	}
}
