package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"campusbot/internal/domain"
)

// tokenBytes gives 20 hex characters, 80 bits of entropy.
const tokenBytes = 10

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type verificationService struct {
	settings     domain.SettingsRepository
	pendingRepo  domain.PendingVerificationRepository
	verifiedRepo domain.VerifiedUserRepository
	emailService domain.EmailService
	roleGranter  domain.RoleGranter
	guildNames   GuildNameResolver
	logger       *slog.Logger
	now          func() time.Time
}

// GuildNameResolver resolves a guild ID to its display name for the
// confirmation email. May return "" when the name is unknown.
type GuildNameResolver func(ctx context.Context, guildID string) string

// NewVerificationService creates a VerificationService with the given stores
// and collaborators. The service is the sole writer to both registries.
func NewVerificationService(
	settings domain.SettingsRepository,
	pendingRepo domain.PendingVerificationRepository,
	verifiedRepo domain.VerifiedUserRepository,
	emailService domain.EmailService,
	roleGranter domain.RoleGranter,
	guildNames GuildNameResolver,
	logger *slog.Logger,
) domain.VerificationService {
	if guildNames == nil {
		guildNames = func(ctx context.Context, guildID string) string { return guildID }
	}
	return &verificationService{
		settings:     settings,
		pendingRepo:  pendingRepo,
		verifiedRepo: verifiedRepo,
		emailService: emailService,
		roleGranter:  roleGranter,
		guildNames:   guildNames,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *verificationService) Request(ctx context.Context, userID, guildID, rawEmail string) (domain.RequestResult, error) {
	settings, err := s.settings.GetOrCreate(ctx, guildID)
	if err != nil {
		return "", storageErr("load settings", err)
	}
	if !settings.VerificationEnabled {
		return "", domain.ErrVerificationDisabled
	}

	verified, err := s.verifiedRepo.IsVerifiedInGuild(ctx, userID, guildID)
	if err != nil {
		return "", storageErr("check membership", err)
	}
	if verified {
		return "", domain.ErrAlreadyVerified
	}

	// Auto-verify: a verification in any other guild carries over. The stored
	// hash is reused as-is; it is not re-checked against this guild's email
	// domain since the plaintext is gone.
	existingHash, err := s.verifiedRepo.AnyEmailHashForUser(ctx, userID, guildID)
	if err != nil {
		return "", storageErr("look up prior verification", err)
	}
	if existingHash != "" {
		v := &domain.VerifiedUser{UserID: userID, GuildID: guildID, EmailHash: existingHash, CreatedAt: s.now()}
		if err := s.verifiedRepo.Create(ctx, v); err != nil {
			if errors.Is(err, domain.ErrAlreadyVerified) {
				return "", err
			}
			return "", storageErr("store auto-verification", err)
		}
		s.grantRole(ctx, userID, guildID, settings.VerifiedRole)
		return domain.ResultAutoVerified, nil
	}

	email := strings.TrimSpace(strings.ToLower(rawEmail))
	if !emailRegexp.MatchString(email) || !strings.HasSuffix(email, settings.EmailDomain) {
		return "", domain.ErrInvalidEmailFormat
	}
	emailHash := HashEmail(email)

	claimed, err := s.verifiedRepo.EmailHashClaimedInGuild(ctx, emailHash, guildID)
	if err != nil {
		return "", storageErr("check email claim", err)
	}
	if claimed {
		return "", domain.ErrEmailAlreadyClaimed
	}

	existing, err := s.pendingRepo.FindByEmailHash(ctx, emailHash)
	if err != nil {
		return "", storageErr("check pending email", err)
	}
	if existing != nil {
		return "", domain.ErrEmailPendingElsewhere
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	pending := &domain.PendingVerification{
		UserID:    userID,
		GuildID:   guildID,
		EmailHash: emailHash,
		Token:     token,
		CreatedAt: s.now(),
	}
	if err := s.pendingRepo.Create(ctx, pending); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// Lost the race between the pre-check and the unique index.
			return "", domain.ErrEmailPendingElsewhere
		}
		return "", storageErr("store pending verification", err)
	}

	data := &domain.ConfirmationEmailData{
		Email:     email,
		UserID:    userID,
		GuildName: s.guildNames(ctx, guildID),
		Prefix:    settings.Prefix,
		Token:     token,
	}
	if err := s.emailService.SendConfirmation(ctx, data); err != nil {
		// All-or-nothing with the registry write: compensate and report.
		if delErr := s.pendingRepo.Delete(ctx, userID, guildID); delErr != nil {
			s.logger.Error("failed to clean up pending verification after send failure",
				"user_id", userID, "guild_id", guildID, "error", delErr)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrEmailSendFailed, err)
	}
	return domain.ResultPendingCreated, nil
}

func (s *verificationService) Confirm(ctx context.Context, userID, guildID, token string) error {
	pending, err := s.pendingRepo.FindByUserAndToken(ctx, userID, strings.TrimSpace(token))
	if err != nil {
		return storageErr("look up pending verification", err)
	}
	if pending == nil || pending.GuildID != guildID {
		return domain.ErrNoSuchPendingRequest
	}

	if err := s.verifiedRepo.Promote(ctx, pending); err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) || errors.Is(err, domain.ErrNoSuchPendingRequest) {
			return err
		}
		return storageErr("promote verification", err)
	}

	settings, err := s.settings.GetOrCreate(ctx, guildID)
	if err != nil {
		// Verified state is the source of truth; the role can be reconciled
		// later.
		s.logger.Error("confirmed but could not load settings for role grant",
			"user_id", userID, "guild_id", guildID, "error", err)
		return nil
	}
	s.grantRole(ctx, userID, guildID, settings.VerifiedRole)
	return nil
}

func (s *verificationService) Unverify(ctx context.Context, userID, guildID string) error {
	err := s.verifiedRepo.Delete(ctx, userID, guildID)
	if err != nil {
		if errors.Is(err, domain.ErrNotVerified) {
			return err
		}
		return storageErr("delete verification", err)
	}
	return nil
}

func (s *verificationService) IsVerified(ctx context.Context, userID, guildID string) (bool, error) {
	verified, err := s.verifiedRepo.IsVerifiedInGuild(ctx, userID, guildID)
	if err != nil {
		return false, storageErr("check membership", err)
	}
	return verified, nil
}

// grantRole fires the best-effort role grant. Failure is logged, never
// propagated: the registry record, not role membership, is authoritative.
func (s *verificationService) grantRole(ctx context.Context, userID, guildID, roleName string) {
	if s.roleGranter == nil || roleName == "" {
		return
	}
	if err := s.roleGranter.GrantRole(ctx, userID, guildID, roleName); err != nil {
		s.logger.Warn("role grant failed",
			"user_id", userID, "guild_id", guildID, "role", roleName, "error", err)
	}
}

// HashEmail returns the deterministic one-way hash stored in place of an
// email address: SHA-256 of the trimmed, lowercased address, hex-encoded.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(email))))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}
