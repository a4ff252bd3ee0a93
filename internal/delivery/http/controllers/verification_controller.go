package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"campusbot/internal/delivery/http/helpers"
	"campusbot/internal/domain"
)

// RequestVerificationRequest is the request body for POST /guilds/{guildID}/verification/requests
type RequestVerificationRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Validate implements Validator.
func (v RequestVerificationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.UserID) == "" {
		errs = append(errs, "user_id is required")
	}
	// Email may be empty: a user already verified elsewhere auto-verifies
	// without re-supplying an address.
	return errs
}

// RequestVerificationResponse is the response body for a verification request.
type RequestVerificationResponse struct {
	Status domain.RequestResult `json:"status"`
}

// ConfirmVerificationRequest is the request body for POST /guilds/{guildID}/verification/confirmations
type ConfirmVerificationRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Validate implements Validator.
func (v ConfirmVerificationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.UserID) == "" {
		errs = append(errs, "user_id is required")
	}
	if strings.TrimSpace(v.Token) == "" {
		errs = append(errs, "token is required")
	}
	return errs
}

// ConfirmVerificationResponse is the response body for a confirmed verification.
type ConfirmVerificationResponse struct {
	Status string `json:"status"`
}

// VerificationStatusResponse is the response body for a membership check.
type VerificationStatusResponse struct {
	UserID   string `json:"user_id"`
	GuildID  string `json:"guild_id"`
	Verified bool   `json:"verified"`
}

// VerificationController handles the verification workflow endpoints.
type VerificationController struct {
	Logger  *slog.Logger
	Service domain.VerificationService
}

// NewVerificationController creates a VerificationController with the given logger and service.
func NewVerificationController(logger *slog.Logger, svc domain.VerificationService) *VerificationController {
	return &VerificationController{
		Logger:  logger,
		Service: svc,
	}
}

// Request godoc
// @Summary Request email verification
// @Description Start verification for a user in a guild. Returns status "pending_created" (confirmation email sent) or "auto_verified" (user already verified elsewhere with the same email).
// @Tags verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param body body RequestVerificationRequest true "User and email"
// @Success 201 {object} helpers.APIResponse "data contains the request status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 502 {object} helpers.APIResponse "error.code: internal_error (email dispatch failed)"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/verification/requests [post]
func (c *VerificationController) Request(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	var req RequestVerificationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Request(r.Context(), req.UserID, guildID, req.Email)
	if err != nil {
		c.writeVerificationError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RequestVerificationResponse{Status: result})
}

// Confirm godoc
// @Summary Confirm email verification
// @Description Complete verification with the token from the confirmation email. Promotes the pending record and grants the guild's verified role.
// @Tags verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param body body ConfirmVerificationRequest true "User and token"
// @Success 200 {object} helpers.APIResponse "data contains status confirmed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/verification/confirmations [post]
func (c *VerificationController) Confirm(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	var req ConfirmVerificationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := c.Service.Confirm(r.Context(), req.UserID, guildID, req.Token); err != nil {
		c.writeVerificationError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ConfirmVerificationResponse{Status: "confirmed"})
}

// Status godoc
// @Summary Check verification status
// @Tags verification
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the membership flag"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/verification/users/{userID} [get]
func (c *VerificationController) Status(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	userID := r.PathValue("userID")

	verified, err := c.Service.IsVerified(r.Context(), userID, guildID)
	if err != nil {
		c.writeVerificationError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, VerificationStatusResponse{
		UserID:   userID,
		GuildID:  guildID,
		Verified: verified,
	})
}

// Unverify godoc
// @Summary Remove a user's verification
// @Tags verification
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains status unverified"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/verification/users/{userID} [delete]
func (c *VerificationController) Unverify(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	userID := r.PathValue("userID")

	if err := c.Service.Unverify(r.Context(), userID, guildID); err != nil {
		c.writeVerificationError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "unverified"})
}

func (c *VerificationController) writeVerificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrVerificationDisabled):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeFeatureDisabled, err.Error())
	case errors.Is(err, domain.ErrInvalidEmailFormat):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrEmailAlreadyClaimed),
		errors.Is(err, domain.ErrEmailPendingElsewhere):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrNoSuchPendingRequest),
		errors.Is(err, domain.ErrNotVerified):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailSendFailed):
		c.Logger.Error("confirmation email dispatch failed", "error", err)
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeInternalError, "could not send confirmation email")
	case errors.Is(err, domain.ErrStorageUnavailable):
		c.Logger.Error("storage unavailable", "error", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeStorageUnavailable, "storage unavailable")
	default:
		c.Logger.Error("verification request failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
