package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campusbot/internal/domain"
)

type pendingVerificationRepository struct {
	DB *sql.DB
}

// NewPendingVerificationRepository returns a domain.PendingVerificationRepository
// implemented with Postgres.
func NewPendingVerificationRepository(db *sql.DB) domain.PendingVerificationRepository {
	return &pendingVerificationRepository{DB: db}
}

func (r *pendingVerificationRepository) Create(ctx context.Context, p *domain.PendingVerification) error {
	query := `
		INSERT INTO pending_verifications (user_id, guild_id, email_hash, token, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, p.UserID, p.GuildID, p.EmailHash, p.Token, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *pendingVerificationRepository) FindByEmailHash(ctx context.Context, emailHash string) (*domain.PendingVerification, error) {
	query := `
		SELECT user_id, guild_id, email_hash, token, created_at
		FROM pending_verifications
		WHERE email_hash = $1
	`
	p := &domain.PendingVerification{}
	err := r.DB.QueryRowContext(ctx, query, emailHash).Scan(&p.UserID, &p.GuildID, &p.EmailHash, &p.Token, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *pendingVerificationRepository) FindByUserAndToken(ctx context.Context, userID, token string) (*domain.PendingVerification, error) {
	// token is a bytea-exact text comparison; no LIKE, no case folding.
	query := `
		SELECT user_id, guild_id, email_hash, token, created_at
		FROM pending_verifications
		WHERE user_id = $1 AND token = $2
		LIMIT 1
	`
	p := &domain.PendingVerification{}
	err := r.DB.QueryRowContext(ctx, query, userID, token).Scan(&p.UserID, &p.GuildID, &p.EmailHash, &p.Token, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *pendingVerificationRepository) Delete(ctx context.Context, userID, guildID string) error {
	query := `DELETE FROM pending_verifications WHERE user_id = $1 AND guild_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, guildID)
	return err
}

func (r *pendingVerificationRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM pending_verifications WHERE created_at < $1`
	res, err := r.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
