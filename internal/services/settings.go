package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusbot/internal/domain"
)

type settingsService struct {
	repo domain.SettingsRepository
}

// NewSettingsService creates a SettingsService backed by the given repository.
func NewSettingsService(repo domain.SettingsRepository) domain.SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context, guildID string) (*domain.GuildSettings, error) {
	settings, err := s.repo.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, storageErr("load settings", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, guildID string, update *domain.GuildSettingsUpdate) (*domain.GuildSettings, error) {
	if update.EmailDomain != nil {
		d := strings.TrimSpace(strings.ToLower(*update.EmailDomain))
		if d == "" || strings.ContainsAny(d, "@ ") {
			return nil, fmt.Errorf("invalid email domain %q", *update.EmailDomain)
		}
		update.EmailDomain = &d
	}
	if update.Prefix != nil && strings.TrimSpace(*update.Prefix) == "" {
		return nil, fmt.Errorf("prefix cannot be empty")
	}
	settings, err := s.repo.Update(ctx, guildID, update)
	if err != nil {
		if errors.Is(err, domain.ErrGuildNotFound) {
			return nil, err
		}
		return nil, storageErr("update settings", err)
	}
	return settings, nil
}
