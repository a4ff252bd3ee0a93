package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusbot/internal/domain"
)

type quoteService struct {
	repo     domain.QuoteRepository
	settings domain.SettingsRepository
	now      func() time.Time
}

// NewQuoteService creates a QuoteService gated by the guild's quotes feature flag.
func NewQuoteService(repo domain.QuoteRepository, settings domain.SettingsRepository) domain.QuoteService {
	return &quoteService{repo: repo, settings: settings, now: time.Now}
}

func (s *quoteService) quotesEnabled(ctx context.Context, guildID string) error {
	settings, err := s.settings.GetOrCreate(ctx, guildID)
	if err != nil {
		return storageErr("load settings", err)
	}
	if !settings.QuotesEnabled {
		return domain.ErrQuotesDisabled
	}
	return nil
}

func (s *quoteService) Add(ctx context.Context, guildID, text string, author domain.UserArg, saidAt time.Time) (*domain.Quote, error) {
	if err := s.quotesEnabled(ctx, guildID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("quote text cannot be empty")
	}
	if saidAt.IsZero() {
		saidAt = s.now()
	}
	q := &domain.Quote{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Text:      text,
		SaidAt:    saidAt,
		CreatedAt: s.now(),
	}
	switch author.Kind {
	case domain.UserArgMention:
		q.AuthorID = author.UserID
	case domain.UserArgRawText:
		q.AuthorName = author.Text
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, storageErr("store quote", err)
	}
	return q, nil
}

func (s *quoteService) Random(ctx context.Context, guildID string, author domain.UserArg) (*domain.Quote, error) {
	if err := s.quotesEnabled(ctx, guildID); err != nil {
		return nil, err
	}
	q, err := s.repo.GetRandom(ctx, guildID, author)
	if err != nil {
		if errors.Is(err, domain.ErrQuoteNotFound) {
			return nil, err
		}
		return nil, storageErr("get random quote", err)
	}
	return q, nil
}

func (s *quoteService) List(ctx context.Context, guildID string, params domain.PaginationParams) ([]*domain.Quote, int, error) {
	if err := s.quotesEnabled(ctx, guildID); err != nil {
		return nil, 0, err
	}
	quotes, total, err := s.repo.List(ctx, guildID, params)
	if err != nil {
		return nil, 0, storageErr("list quotes", err)
	}
	return quotes, total, nil
}

func (s *quoteService) Remove(ctx context.Context, guildID, id string) error {
	if err := s.quotesEnabled(ctx, guildID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, guildID, id); err != nil {
		if errors.Is(err, domain.ErrQuoteNotFound) {
			return err
		}
		return storageErr("delete quote", err)
	}
	return nil
}
