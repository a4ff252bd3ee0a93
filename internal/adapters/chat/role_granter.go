package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"campusbot/internal/domain"
)

type gatewayRoleGranter struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGatewayRoleGranter returns a RoleGranter that calls the chat gateway's
// role endpoint. The gateway applies the grant idempotently: granting a role
// the member already holds succeeds without effect.
func NewGatewayRoleGranter(client *http.Client, baseURL, token string) domain.RoleGranter {
	if client == nil {
		client = http.DefaultClient
	}
	return &gatewayRoleGranter{client: client, baseURL: baseURL, token: token}
}

type grantRoleRequest struct {
	RoleName string `json:"role_name"`
}

func (g *gatewayRoleGranter) GrantRole(ctx context.Context, userID, guildID, roleName string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s/roles", g.baseURL, guildID, userID)
	body, err := json.Marshal(grantRoleRequest{RoleName: roleName})
	if err != nil {
		return fmt.Errorf("failed to encode role grant: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call chat gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat gateway returned status: %d", resp.StatusCode)
	}
	return nil
}

type noopRoleGranter struct {
	logger *slog.Logger
}

// NewNoopRoleGranter returns a RoleGranter that only logs. Used when no
// gateway is configured.
func NewNoopRoleGranter(logger *slog.Logger) domain.RoleGranter {
	return &noopRoleGranter{logger: logger}
}

func (n *noopRoleGranter) GrantRole(ctx context.Context, userID, guildID, roleName string) error {
	n.logger.Info("role would be granted (noop)", "user_id", userID, "guild_id", guildID, "role", roleName)
	return nil
}
