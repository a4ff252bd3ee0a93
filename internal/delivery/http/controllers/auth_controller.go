package controllers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusbot/internal/delivery/http/helpers"
	"campusbot/internal/domain"
)

const serviceTokenExpiry = 12 * time.Hour

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	Service string `json:"service"`
	Secret  string `json:"secret"`
}

// Validate implements Validator.
func (t TokenRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(t.Service) == "" {
		errs = append(errs, "service is required")
	}
	if t.Secret == "" {
		errs = append(errs, "secret is required")
	}
	return errs
}

// TokenResponse is the response body for an issued service token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthController issues bearer tokens to trusted services that present the
// shared secret.
type AuthController struct {
	Logger *slog.Logger
	Issuer domain.TokenIssuer
	Secret string
}

// NewAuthController creates an AuthController with the given logger, issuer
// and shared service secret.
func NewAuthController(logger *slog.Logger, issuer domain.TokenIssuer, secret string) *AuthController {
	return &AuthController{
		Logger: logger,
		Issuer: issuer,
		Secret: secret,
	}
}

// Token godoc
// @Summary Issue a service token
// @Description Exchanges the shared service secret for a short-lived bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body TokenRequest true "Service name and shared secret"
// @Success 200 {object} helpers.APIResponse "data contains the token and its expiry"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/token [post]
func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(c.Secret)) != 1 {
		c.Logger.Warn("token request with invalid secret", "service", req.Service)
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, domain.ErrInvalidServiceSecret.Error())
		return
	}

	issued := time.Now()
	token, err := c.Issuer.Issue(req.Service, serviceTokenExpiry)
	if err != nil {
		c.Logger.Error("token issue failed", "service", req.Service, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: issued.Add(serviceTokenExpiry),
	})
}
