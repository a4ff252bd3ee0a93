package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for quote operations.
var (
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrQuotesDisabled = errors.New("quotes are not enabled for this guild")
)

// Quote is a saved guild quote. Author is either a resolved user mention or
// free text, captured as a UserArg at the boundary.
// swagger:model Quote
type Quote struct {
	ID         string    `json:"id"`
	GuildID    string    `json:"guild_id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"author_id,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	SaidAt     time.Time `json:"said_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// QuoteRepository defines the interface for quote storage.
type QuoteRepository interface {
	Create(ctx context.Context, q *Quote) error
	// GetRandom returns a uniformly random quote in the guild, optionally
	// filtered to one author (pass a zero UserArg for no filter).
	GetRandom(ctx context.Context, guildID string, author UserArg) (*Quote, error)
	List(ctx context.Context, guildID string, params PaginationParams) ([]*Quote, int, error)
	Delete(ctx context.Context, guildID, id string) error
}

// QuoteService defines the business logic for quotes.
type QuoteService interface {
	Add(ctx context.Context, guildID, text string, author UserArg, saidAt time.Time) (*Quote, error)
	Random(ctx context.Context, guildID string, author UserArg) (*Quote, error)
	List(ctx context.Context, guildID string, params PaginationParams) ([]*Quote, int, error)
	Remove(ctx context.Context, guildID, id string) error
}
