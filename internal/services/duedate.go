package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"campusbot/internal/domain"
)

type dueDateService struct {
	repo     domain.DueDateRepository
	settings domain.SettingsRepository
	now      func() time.Time
}

// NewDueDateService creates a DueDateService gated by the guild's due-dates
// feature flag. Type, category, and course are validated against the guild's
// configured lists.
func NewDueDateService(repo domain.DueDateRepository, settings domain.SettingsRepository) domain.DueDateService {
	return &dueDateService{repo: repo, settings: settings, now: time.Now}
}

func (s *dueDateService) validate(ctx context.Context, d *domain.DueDate) error {
	settings, err := s.settings.GetOrCreate(ctx, d.GuildID)
	if err != nil {
		return storageErr("load settings", err)
	}
	if !settings.DueDatesEnabled {
		return domain.ErrDueDatesDisabled
	}
	if d.Title == "" {
		return fmt.Errorf("due date title cannot be empty")
	}
	if !slices.Contains(settings.DueDateTypes, d.Type) ||
		!slices.Contains(settings.DueDateCategories, d.Category) ||
		(d.Course != "" && !slices.Contains(settings.Courses, d.Course)) {
		return domain.ErrInvalidDueDate
	}
	return nil
}

func (s *dueDateService) Add(ctx context.Context, d *domain.DueDate) (*domain.DueDate, error) {
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	d.ID = uuid.NewString()
	d.CreatedAt = s.now()
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, storageErr("store due date", err)
	}
	return d, nil
}

func (s *dueDateService) ListByCategoryAndCourse(ctx context.Context, guildID, category, course string) ([]*domain.DueDate, error) {
	settings, err := s.settings.GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, storageErr("load settings", err)
	}
	if !settings.DueDatesEnabled {
		return nil, domain.ErrDueDatesDisabled
	}
	// Listing is a natural point to drop deadlines that have passed.
	if _, err := s.repo.DeleteOld(ctx, guildID, s.now()); err != nil {
		return nil, storageErr("prune old due dates", err)
	}
	dueDates, err := s.repo.ListByCategoryAndCourse(ctx, guildID, category, course)
	if err != nil {
		return nil, storageErr("list due dates", err)
	}
	return dueDates, nil
}

func (s *dueDateService) Update(ctx context.Context, d *domain.DueDate) (*domain.DueDate, error) {
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		if errors.Is(err, domain.ErrDueDateNotFound) {
			return nil, err
		}
		return nil, storageErr("update due date", err)
	}
	return d, nil
}

func (s *dueDateService) Remove(ctx context.Context, guildID, id string) error {
	if err := s.repo.Delete(ctx, guildID, id); err != nil {
		if errors.Is(err, domain.ErrDueDateNotFound) {
			return err
		}
		return storageErr("delete due date", err)
	}
	return nil
}
