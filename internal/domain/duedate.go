package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for due-date operations.
var (
	ErrDueDateNotFound  = errors.New("due date not found")
	ErrDueDatesDisabled = errors.New("due dates are not enabled for this guild")
	ErrInvalidDueDate   = errors.New("due date type, category, or course not configured for this guild")
)

// DueDate is a tracked deadline in a guild. DateOnly marks deadlines whose
// time of day is not meaningful; they are kept for a day past their date.
// swagger:model DueDate
type DueDate struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	Title     string    `json:"title"`
	DueAt     time.Time `json:"due_at"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Course    string    `json:"course"`
	DateOnly  bool      `json:"date_only"`
	CreatedAt time.Time `json:"created_at"`
}

// DueDateRepository defines the interface for due-date storage.
type DueDateRepository interface {
	Create(ctx context.Context, d *DueDate) error
	ListByCategoryAndCourse(ctx context.Context, guildID, category, course string) ([]*DueDate, error)
	Update(ctx context.Context, d *DueDate) error
	Delete(ctx context.Context, guildID, id string) error
	// DeleteOld removes past due dates: timed ones due before now, date-only
	// ones due more than a day before now.
	DeleteOld(ctx context.Context, guildID string, now time.Time) (int64, error)
}

// DueDateService defines the business logic for due dates.
type DueDateService interface {
	Add(ctx context.Context, d *DueDate) (*DueDate, error)
	ListByCategoryAndCourse(ctx context.Context, guildID, category, course string) ([]*DueDate, error)
	Update(ctx context.Context, d *DueDate) (*DueDate, error)
	Remove(ctx context.Context, guildID, id string) error
}
