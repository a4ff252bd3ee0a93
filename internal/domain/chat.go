package domain

import (
	"context"
	"strings"
)

// RoleGranter grants a named role to a guild member on the chat platform.
// Best-effort and idempotent: granting a role the member already holds is a
// no-op, and a failure after verification is never rolled back.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID, guildID, roleName string) error
}

// UserArgKind discriminates how a user argument arrived from the chat
// boundary.
type UserArgKind string

const (
	// UserArgMention is a platform mention already resolved to a user ID.
	UserArgMention UserArgKind = "mention"
	// UserArgRawText is unresolved free text (e.g. an email address).
	UserArgRawText UserArgKind = "raw_text"
)

// UserArg is a tagged union for command arguments that may be either a user
// mention or raw text. It is resolved once at the delivery boundary and
// passed into services as a plain value.
type UserArg struct {
	Kind   UserArgKind `json:"kind"`
	UserID string      `json:"user_id,omitempty"`
	Text   string      `json:"text,omitempty"`
}

// ParseUserArg resolves a raw argument string. Platform mentions in the
// <@id> or <@!id> form become Mention args; anything else is RawText.
func ParseUserArg(raw string) UserArg {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<@") && strings.HasSuffix(raw, ">") {
		id := strings.TrimSuffix(strings.TrimPrefix(raw, "<@"), ">")
		id = strings.TrimPrefix(id, "!")
		if id != "" {
			return UserArg{Kind: UserArgMention, UserID: id}
		}
	}
	return UserArg{Kind: UserArgRawText, Text: raw}
}
