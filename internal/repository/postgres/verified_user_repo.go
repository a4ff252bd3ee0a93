package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"campusbot/internal/domain"
)

type verifiedUserRepository struct {
	DB *sql.DB
}

// NewVerifiedUserRepository returns a domain.VerifiedUserRepository implemented with Postgres.
func NewVerifiedUserRepository(db *sql.DB) domain.VerifiedUserRepository {
	return &verifiedUserRepository{DB: db}
}

func (r *verifiedUserRepository) IsVerifiedInGuild(ctx context.Context, userID, guildID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM verified_users WHERE user_id = $1 AND guild_id = $2
		)
	`
	err := r.DB.QueryRowContext(ctx, query, userID, guildID).Scan(&exists)
	return exists, err
}

func (r *verifiedUserRepository) AnyEmailHashForUser(ctx context.Context, userID, excludeGuildID string) (string, error) {
	var hash string
	query := `
		SELECT email_hash FROM verified_users
		WHERE user_id = $1 AND guild_id <> $2
		LIMIT 1
	`
	err := r.DB.QueryRowContext(ctx, query, userID, excludeGuildID).Scan(&hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}

func (r *verifiedUserRepository) EmailHashClaimedInGuild(ctx context.Context, emailHash, guildID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM verified_users WHERE email_hash = $1 AND guild_id = $2
		)
	`
	err := r.DB.QueryRowContext(ctx, query, emailHash, guildID).Scan(&exists)
	return exists, err
}

func (r *verifiedUserRepository) Create(ctx context.Context, v *domain.VerifiedUser) error {
	query := `
		INSERT INTO verified_users (user_id, guild_id, email_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err := r.DB.ExecContext(ctx, query, v.UserID, v.GuildID, v.EmailHash, v.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyVerified
		}
		return err
	}
	return nil
}

// Promote inserts the verified record and removes the pending record it came
// from in one transaction, so there is no window where both or neither exist.
func (r *verifiedUserRepository) Promote(ctx context.Context, p *domain.PendingVerification) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO verified_users (user_id, guild_id, email_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insert, p.UserID, p.GuildID, p.EmailHash, time.Now()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyVerified
		}
		return err
	}

	del := `DELETE FROM pending_verifications WHERE user_id = $1 AND guild_id = $2`
	res, err := tx.ExecContext(ctx, del, p.UserID, p.GuildID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Pending record vanished between lookup and promote (e.g. swept or
		// confirmed concurrently); roll everything back.
		return domain.ErrNoSuchPendingRequest
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit promotion: %w", err)
	}
	return nil
}

func (r *verifiedUserRepository) Delete(ctx context.Context, userID, guildID string) error {
	query := `DELETE FROM verified_users WHERE user_id = $1 AND guild_id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, guildID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotVerified
	}
	return nil
}
