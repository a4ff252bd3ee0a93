package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"campusbot/internal/domain"
)

type settingsRepository struct {
	DB *sql.DB
}

// NewSettingsRepository returns a domain.SettingsRepository implemented with Postgres.
func NewSettingsRepository(db *sql.DB) domain.SettingsRepository {
	return &settingsRepository{DB: db}
}

const settingsColumns = `
	guild_id, prefix, timezone,
	pins_enabled, pin_emoji,
	quotes_enabled, quote_approvals_required,
	verification_enabled, email_domain, verified_role,
	due_dates_enabled, due_date_types, due_date_categories, courses
`

func scanSettings(row *sql.Row) (*domain.GuildSettings, error) {
	s := &domain.GuildSettings{}
	err := row.Scan(
		&s.GuildID, &s.Prefix, &s.Timezone,
		&s.PinsEnabled, &s.PinEmoji,
		&s.QuotesEnabled, &s.QuoteApprovalsRequired,
		&s.VerificationEnabled, &s.EmailDomain, &s.VerifiedRole,
		&s.DueDatesEnabled, pq.Array(&s.DueDateTypes), pq.Array(&s.DueDateCategories), pq.Array(&s.Courses),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *settingsRepository) GetOrCreate(ctx context.Context, guildID string) (*domain.GuildSettings, error) {
	// Insert-if-absent then read back. ON CONFLICT DO NOTHING makes
	// concurrent first accesses converge on a single stored record.
	defaults := domain.DefaultGuildSettings(guildID)
	insert := `
		INSERT INTO guild_settings (` + settingsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (guild_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, insert,
		defaults.GuildID, defaults.Prefix, defaults.Timezone,
		defaults.PinsEnabled, defaults.PinEmoji,
		defaults.QuotesEnabled, defaults.QuoteApprovalsRequired,
		defaults.VerificationEnabled, defaults.EmailDomain, defaults.VerifiedRole,
		defaults.DueDatesEnabled, pq.Array(defaults.DueDateTypes), pq.Array(defaults.DueDateCategories), pq.Array(defaults.Courses),
	)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + settingsColumns + ` FROM guild_settings WHERE guild_id = $1`
	return scanSettings(r.DB.QueryRowContext(ctx, query, guildID))
}

func (r *settingsRepository) Update(ctx context.Context, guildID string, u *domain.GuildSettingsUpdate) (*domain.GuildSettings, error) {
	query := `
		UPDATE guild_settings SET
			prefix = COALESCE($2, prefix),
			timezone = COALESCE($3, timezone),
			pins_enabled = COALESCE($4, pins_enabled),
			pin_emoji = COALESCE($5, pin_emoji),
			quotes_enabled = COALESCE($6, quotes_enabled),
			quote_approvals_required = COALESCE($7, quote_approvals_required),
			verification_enabled = COALESCE($8, verification_enabled),
			email_domain = COALESCE($9, email_domain),
			verified_role = COALESCE($10, verified_role),
			due_dates_enabled = COALESCE($11, due_dates_enabled),
			due_date_types = COALESCE($12, due_date_types),
			due_date_categories = COALESCE($13, due_date_categories),
			courses = COALESCE($14, courses)
		WHERE guild_id = $1
		RETURNING ` + settingsColumns + `
	`
	row := r.DB.QueryRowContext(ctx, query,
		guildID, u.Prefix, u.Timezone,
		u.PinsEnabled, u.PinEmoji,
		u.QuotesEnabled, u.QuoteApprovalsRequired,
		u.VerificationEnabled, u.EmailDomain, u.VerifiedRole,
		u.DueDatesEnabled, nullableArray(u.DueDateTypes), nullableArray(u.DueDateCategories), nullableArray(u.Courses),
	)
	s, err := scanSettings(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrGuildNotFound
	}
	return s, err
}

// nullableArray converts an optional string slice to a driver value: NULL
// when unset, a text[] otherwise.
func nullableArray(v *[]string) any {
	if v == nil {
		return nil
	}
	return pq.Array(*v)
}
