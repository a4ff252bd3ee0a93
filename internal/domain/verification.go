package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the verification workflow and registries. Workflow
// methods return exactly one of these (or a storage error wrapping
// ErrStorageUnavailable); none of them is fatal to the caller.
var (
	ErrVerificationDisabled  = errors.New("verification is not enabled for this guild")
	ErrAlreadyVerified       = errors.New("user is already verified in this guild")
	ErrInvalidEmailFormat    = errors.New("email address is invalid or not in the guild's domain")
	ErrEmailAlreadyClaimed   = errors.New("email already belongs to a verified member of this guild")
	ErrEmailPendingElsewhere = errors.New("email already has a pending verification")
	ErrNoSuchPendingRequest  = errors.New("no pending verification matches that token")
	ErrNotVerified           = errors.New("user is not verified in this guild")
	ErrDuplicateEmail        = errors.New("email hash already registered")
	ErrEmailSendFailed       = errors.New("confirmation email could not be sent")

	// ErrStorageUnavailable wraps backing-store connectivity failures so
	// callers can distinguish them from workflow outcomes.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// RequestResult is the success variant returned by a verification request.
type RequestResult string

const (
	// ResultPendingCreated means a pending record was stored and the
	// confirmation email dispatched.
	ResultPendingCreated RequestResult = "pending_created"
	// ResultAutoVerified means the user was verified immediately from an
	// existing verification in another guild; no pending record was created.
	ResultAutoVerified RequestResult = "auto_verified"
)

// PendingVerification is an in-flight verification attempt. At most one
// exists per (user, guild), and its email hash is unique system-wide.
type PendingVerification struct {
	UserID    string    `json:"user_id"`
	GuildID   string    `json:"guild_id"`
	EmailHash string    `json:"-"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// VerifiedUser is a confirmed verification for a (user, guild) pair.
type VerifiedUser struct {
	UserID    string    `json:"user_id"`
	GuildID   string    `json:"guild_id"`
	EmailHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingVerificationRepository defines the interface for pending
// verification storage.
type PendingVerificationRepository interface {
	// Create stores a new pending record. Returns ErrDuplicateEmail if the
	// email hash or the (user, guild) pair is already present.
	Create(ctx context.Context, p *PendingVerification) error
	// FindByEmailHash returns the pending record holding the hash, or nil if
	// none exists.
	FindByEmailHash(ctx context.Context, emailHash string) (*PendingVerification, error)
	// FindByUserAndToken returns the user's pending record whose stored token
	// equals token exactly (case-sensitive), or nil if none matches.
	FindByUserAndToken(ctx context.Context, userID, token string) (*PendingVerification, error)
	Delete(ctx context.Context, userID, guildID string) error
	// DeleteExpired removes pending records created before cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// VerifiedUserRepository defines the interface for confirmed verification
// storage.
type VerifiedUserRepository interface {
	IsVerifiedInGuild(ctx context.Context, userID, guildID string) (bool, error)
	// AnyEmailHashForUser returns an email hash the user verified with in any
	// guild other than excludeGuildID, or "" if there is none.
	AnyEmailHashForUser(ctx context.Context, userID, excludeGuildID string) (string, error)
	// EmailHashClaimedInGuild reports whether any user holds the hash in the
	// guild.
	EmailHashClaimedInGuild(ctx context.Context, emailHash, guildID string) (bool, error)
	Create(ctx context.Context, v *VerifiedUser) error
	// Promote inserts the verified record and deletes the pending record it
	// came from in a single transaction.
	Promote(ctx context.Context, p *PendingVerification) error
	Delete(ctx context.Context, userID, guildID string) error
}

// VerificationService orchestrates the verification workflow. It is the only
// writer to the pending and verified registries.
type VerificationService interface {
	Request(ctx context.Context, userID, guildID, rawEmail string) (RequestResult, error)
	Confirm(ctx context.Context, userID, guildID, token string) error
	Unverify(ctx context.Context, userID, guildID string) error
	IsVerified(ctx context.Context, userID, guildID string) (bool, error)
}
