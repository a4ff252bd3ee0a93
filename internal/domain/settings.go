package domain

import (
	"context"
	"errors"
)

// ErrGuildNotFound is returned when settings for a guild do not exist and
// cannot be created.
var ErrGuildNotFound = errors.New("guild settings not found")

// GuildSettings holds per-guild configuration. Keyed by the chat platform's
// guild ID; created lazily with defaults on first access.
// swagger:model GuildSettings
type GuildSettings struct {
	GuildID  string `json:"guild_id"`
	Prefix   string `json:"prefix"`
	Timezone string `json:"timezone"`

	PinsEnabled bool   `json:"pins_enabled"`
	PinEmoji    string `json:"pin_emoji"`

	QuotesEnabled          bool `json:"quotes_enabled"`
	QuoteApprovalsRequired int  `json:"quote_approvals_required"`

	VerificationEnabled bool   `json:"verification_enabled"`
	EmailDomain         string `json:"email_domain"`
	VerifiedRole        string `json:"verified_role"`

	DueDatesEnabled   bool     `json:"due_dates_enabled"`
	DueDateTypes      []string `json:"due_date_types"`
	DueDateCategories []string `json:"due_date_categories"`
	Courses           []string `json:"courses"`
}

// DefaultGuildSettings returns the settings record written on first access
// for a guild that has none.
func DefaultGuildSettings(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID:  guildID,
		Prefix:   "$",
		Timezone: "America/Toronto",

		PinsEnabled: true,
		PinEmoji:    "\U0001F4CC",

		QuotesEnabled:          true,
		QuoteApprovalsRequired: 4,

		VerificationEnabled: false,
		EmailDomain:         "example.edu",
		VerifiedRole:        "Verified",

		DueDatesEnabled:   true,
		DueDateTypes:      []string{"Assignment", "Test", "Quiz", "Exam", "Project", "Other"},
		DueDateCategories: []string{"General"},
		Courses:           []string{},
	}
}

// GuildSettingsUpdate carries a partial settings update. Nil fields are left
// unchanged.
type GuildSettingsUpdate struct {
	Prefix   *string `json:"prefix"`
	Timezone *string `json:"timezone"`

	PinsEnabled *bool   `json:"pins_enabled"`
	PinEmoji    *string `json:"pin_emoji"`

	QuotesEnabled          *bool `json:"quotes_enabled"`
	QuoteApprovalsRequired *int  `json:"quote_approvals_required"`

	VerificationEnabled *bool   `json:"verification_enabled"`
	EmailDomain         *string `json:"email_domain"`
	VerifiedRole        *string `json:"verified_role"`

	DueDatesEnabled   *bool     `json:"due_dates_enabled"`
	DueDateTypes      *[]string `json:"due_date_types"`
	DueDateCategories *[]string `json:"due_date_categories"`
	Courses           *[]string `json:"courses"`
}

// SettingsRepository defines the interface for guild settings storage.
type SettingsRepository interface {
	// GetOrCreate returns the settings for the guild, inserting the default
	// record first if none exists. Concurrent first accesses for the same
	// guild must converge on a single stored record.
	GetOrCreate(ctx context.Context, guildID string) (*GuildSettings, error)
	Update(ctx context.Context, guildID string, update *GuildSettingsUpdate) (*GuildSettings, error)
}

// SettingsService defines the business logic for guild settings.
type SettingsService interface {
	Get(ctx context.Context, guildID string) (*GuildSettings, error)
	Update(ctx context.Context, guildID string, update *GuildSettingsUpdate) (*GuildSettings, error)
}
