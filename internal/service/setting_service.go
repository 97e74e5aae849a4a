package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
)

const publicSettingsTTL = time.Minute

type SettingService struct {
	settingRepo *repository.SettingRepository
	activity    *ActivityService
	rdb         *redis.Client
	log         zerolog.Logger
}

func NewSettingService(settingRepo *repository.SettingRepository, activity *ActivityService, rdb *redis.Client, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		activity:    activity,
		rdb:         rdb,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsList, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string, len(settingsList))
	for _, setting := range settingsList {
		settingsMap[setting.Key] = setting.Value
	}
	return settingsMap, nil
}

// GetPublicSettings returns the settings anonymous clients may read, cached in Redis.
func (s *SettingService) GetPublicSettings(ctx context.Context) (map[string]string, error) {
	key := config.CacheKey.PublicSettingsKey()
	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var values map[string]string
		if json.Unmarshal(cached, &values) == nil {
			return values, nil
		}
	}

	values, err := s.settingRepo.GetMany(ctx, model.PublicSettingKeys)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(values); err == nil {
		s.rdb.Set(ctx, key, raw, publicSettingsTTL)
	}
	return values, nil
}

// RegistrationOpen reports whether self-registration is allowed. A missing
// or unparsable value counts as open.
func (s *SettingService) RegistrationOpen(ctx context.Context) (bool, error) {
	values, err := s.GetPublicSettings(ctx)
	if err != nil {
		return false, err
	}
	raw, ok := values[model.SettingRegistrationOpen]
	if !ok {
		return true, nil
	}
	open, err := strconv.ParseBool(raw)
	if err != nil {
		return true, nil
	}
	return open, nil
}

// ValidateSettings rejects unknown keys and malformed boolean values.
func ValidateSettings(values map[string]string) map[string]string {
	fields := map[string]string{}
	for k, v := range values {
		switch k {
		case model.SettingOrgName:
			if v == "" || len(v) > 100 {
				fields[k] = k + " must be between 1 and 100 characters"
			}
		case model.SettingLogoURL:
			if len(v) > 500 {
				fields[k] = k + " must be at most 500 characters"
			}
		case model.SettingRegistrationOpen:
			if _, err := strconv.ParseBool(v); err != nil {
				fields[k] = k + " must be true or false"
			}
		default:
			fields[k] = k + " is not a known setting"
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (s *SettingService) UpdateSettings(ctx context.Context, actor Actor, settingsMap map[string]string) error {
	if fields := ValidateSettings(settingsMap); fields != nil {
		return ErrUnknownSetting
	}
	if err := s.settingRepo.UpsertMany(ctx, settingsMap); err != nil {
		s.log.Error().Err(err).Msg("failed to update settings")
		return err
	}
	s.rdb.Del(ctx, config.CacheKey.PublicSettingsKey())

	details := make(map[string]interface{}, len(settingsMap))
	for k, v := range settingsMap {
		details[k] = v
	}
	s.activity.Record(ctx, &actor.ID, ActionSettingsUpdated, "settings", nil, details)
	return nil
}
