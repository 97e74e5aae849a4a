package service

import (
	"strings"
	"testing"

	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateSettings(t *testing.T) {
	assert.Nil(t, ValidateSettings(map[string]string{
		model.SettingOrgName:          "Acme Training",
		model.SettingLogoURL:          "",
		model.SettingRegistrationOpen: "false",
	}))

	fields := ValidateSettings(map[string]string{
		model.SettingOrgName:          "",
		model.SettingLogoURL:          strings.Repeat("x", 501),
		model.SettingRegistrationOpen: "maybe",
		"theme":                       "dark",
	})
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "theme")
	assert.Contains(t, fields[model.SettingRegistrationOpen], "true or false")
}
