package postgres

import (
	"context"
	"database/sql"

	"campusbot/internal/domain"
)

type quoteRepository struct {
	DB *sql.DB
}

// NewQuoteRepository returns a domain.QuoteRepository implemented with Postgres.
func NewQuoteRepository(db *sql.DB) domain.QuoteRepository {
	return &quoteRepository{DB: db}
}

func (r *quoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	query := `
		INSERT INTO quotes (id, guild_id, text, author_id, author_name, said_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, q.ID, q.GuildID, q.Text, q.AuthorID, q.AuthorName, q.SaidAt, q.CreatedAt)
	return err
}

func (r *quoteRepository) GetRandom(ctx context.Context, guildID string, author domain.UserArg) (*domain.Quote, error) {
	query := `
		SELECT id, guild_id, text, author_id, author_name, said_at, created_at
		FROM quotes
		WHERE guild_id = $1
	`
	args := []any{guildID}
	switch author.Kind {
	case domain.UserArgMention:
		query += ` AND author_id = $2`
		args = append(args, author.UserID)
	case domain.UserArgRawText:
		if author.Text != "" {
			query += ` AND author_name = $2`
			args = append(args, author.Text)
		}
	}
	query += ` ORDER BY random() LIMIT 1`

	q := &domain.Quote{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&q.ID, &q.GuildID, &q.Text, &q.AuthorID, &q.AuthorName, &q.SaidAt, &q.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *quoteRepository) List(ctx context.Context, guildID string, params domain.PaginationParams) ([]*domain.Quote, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM quotes WHERE guild_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, guildID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, guild_id, text, author_id, author_name, said_at, created_at
		FROM quotes
		WHERE guild_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, guildID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		q := &domain.Quote{}
		if err := rows.Scan(&q.ID, &q.GuildID, &q.Text, &q.AuthorID, &q.AuthorName, &q.SaidAt, &q.CreatedAt); err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, q)
	}
	return quotes, total, rows.Err()
}

func (r *quoteRepository) Delete(ctx context.Context, guildID, id string) error {
	query := `DELETE FROM quotes WHERE guild_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, guildID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}
