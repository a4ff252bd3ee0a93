package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"campusbot/internal/domain"
)

func TestVerifiedUserRepository_IsVerifiedInGuild(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    bool
		wantErr bool
	}{
		{
			name: "verified",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "guild-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "not verified",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "guild-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewVerifiedUserRepository(db)
			got, err := repo.IsVerifiedInGuild(ctx, "user-1", "guild-1")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerifiedUserRepository_AnyEmailHashForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hash from another guild", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT email_hash FROM verified_users`).
			WithArgs("user-1", "guild-2").
			WillReturnRows(sqlmock.NewRows([]string{"email_hash"}).AddRow("abc123"))

		repo := NewVerifiedUserRepository(db)
		hash, err := repo.AnyEmailHashForUser(ctx, "user-1", "guild-2")
		require.NoError(t, err)
		require.Equal(t, "abc123", hash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none returns empty string", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT email_hash FROM verified_users`).
			WithArgs("user-1", "guild-2").
			WillReturnRows(sqlmock.NewRows([]string{"email_hash"}))

		repo := NewVerifiedUserRepository(db)
		hash, err := repo.AnyEmailHashForUser(ctx, "user-1", "guild-2")
		require.NoError(t, err)
		require.Empty(t, hash)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVerifiedUserRepository_Promote(t *testing.T) {
	ctx := context.Background()
	pending := &domain.PendingVerification{
		UserID:    "user-1",
		GuildID:   "guild-1",
		EmailHash: "abc123",
		Token:     "deadbeefdeadbeefdead",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success commits insert and delete",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO verified_users`).
					WithArgs("user-1", "guild-1", "abc123", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM pending_verifications`).
					WithArgs("user-1", "guild-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "already verified rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO verified_users`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: true,
			errIs:   domain.ErrAlreadyVerified,
		},
		{
			name: "pending vanished rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO verified_users`).
					WithArgs("user-1", "guild-1", "abc123", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM pending_verifications`).
					WithArgs("user-1", "guild-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: true,
			errIs:   domain.ErrNoSuchPendingRequest,
		},
		{
			name: "delete error rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO verified_users`).
					WithArgs("user-1", "guild-1", "abc123", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM pending_verifications`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewVerifiedUserRepository(db)
			err = repo.Promote(ctx, pending)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerifiedUserRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("unverify removes record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM verified_users`).
			WithArgs("user-1", "guild-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewVerifiedUserRepository(db)
		require.NoError(t, repo.Delete(ctx, "user-1", "guild-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not verified returns ErrNotVerified", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM verified_users`).
			WithArgs("user-1", "guild-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewVerifiedUserRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "user-1", "guild-1"), domain.ErrNotVerified)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
