package postgres

import (
	"context"
	"database/sql"
	"time"

	"campusbot/internal/domain"
)

type dueDateRepository struct {
	DB *sql.DB
}

// NewDueDateRepository returns a domain.DueDateRepository implemented with Postgres.
func NewDueDateRepository(db *sql.DB) domain.DueDateRepository {
	return &dueDateRepository{DB: db}
}

func (r *dueDateRepository) Create(ctx context.Context, d *domain.DueDate) error {
	query := `
		INSERT INTO due_dates (id, guild_id, title, due_at, type, category, course, date_only, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query, d.ID, d.GuildID, d.Title, d.DueAt, d.Type, d.Category, d.Course, d.DateOnly, d.CreatedAt)
	return err
}

func (r *dueDateRepository) ListByCategoryAndCourse(ctx context.Context, guildID, category, course string) ([]*domain.DueDate, error) {
	query := `
		SELECT id, guild_id, title, due_at, type, category, course, date_only, created_at
		FROM due_dates
		WHERE guild_id = $1 AND category = $2 AND course = $3
		ORDER BY due_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, guildID, category, course)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dueDates []*domain.DueDate
	for rows.Next() {
		d := &domain.DueDate{}
		if err := rows.Scan(&d.ID, &d.GuildID, &d.Title, &d.DueAt, &d.Type, &d.Category, &d.Course, &d.DateOnly, &d.CreatedAt); err != nil {
			return nil, err
		}
		dueDates = append(dueDates, d)
	}
	return dueDates, rows.Err()
}

func (r *dueDateRepository) Update(ctx context.Context, d *domain.DueDate) error {
	query := `
		UPDATE due_dates
		SET title = $3, due_at = $4, type = $5, category = $6, course = $7, date_only = $8
		WHERE guild_id = $1 AND id = $2
	`
	res, err := r.DB.ExecContext(ctx, query, d.GuildID, d.ID, d.Title, d.DueAt, d.Type, d.Category, d.Course, d.DateOnly)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDueDateNotFound
	}
	return nil
}

func (r *dueDateRepository) Delete(ctx context.Context, guildID, id string) error {
	query := `DELETE FROM due_dates WHERE guild_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, guildID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrDueDateNotFound
	}
	return nil
}

func (r *dueDateRepository) DeleteOld(ctx context.Context, guildID string, now time.Time) (int64, error) {
	// Timed deadlines are dropped once passed; date-only ones get a day of
	// grace since their time component is midnight.
	query := `
		DELETE FROM due_dates
		WHERE guild_id = $1
		  AND ((date_only = false AND due_at <= $2) OR (date_only = true AND due_at <= $3))
	`
	res, err := r.DB.ExecContext(ctx, query, guildID, now, now.AddDate(0, 0, -1))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
