package model

import "time"

// AppSetting is a key/value configuration row editable by admins.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Known setting keys.
const (
	SettingOrgName          = "org_name"
	SettingLogoURL          = "logo_url"
	SettingRegistrationOpen = "registration_open"
)

// PublicSettingKeys may be served without authentication.
var PublicSettingKeys = []string{SettingOrgName, SettingLogoURL, SettingRegistrationOpen}

// UpdateSettingsRequest replaces a subset of settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1"`
}
