package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"campusbot/internal/delivery/http/helpers"
	"campusbot/internal/domain"
)

// UpdateSettingsRequest is the request body for PATCH /guilds/{guildID}/settings.
// All fields are optional; absent fields are left unchanged.
type UpdateSettingsRequest struct {
	Prefix   *string `json:"prefix"`
	Timezone *string `json:"timezone"`

	PinsEnabled *bool   `json:"pins_enabled"`
	PinEmoji    *string `json:"pin_emoji"`

	QuotesEnabled          *bool `json:"quotes_enabled"`
	QuoteApprovalsRequired *int  `json:"quote_approvals_required"`

	VerificationEnabled *bool   `json:"verification_enabled"`
	EmailDomain         *string `json:"email_domain"`
	VerifiedRole        *string `json:"verified_role"`

	DueDatesEnabled   *bool     `json:"due_dates_enabled"`
	DueDateTypes      *[]string `json:"due_date_types"`
	DueDateCategories *[]string `json:"due_date_categories"`
	Courses           *[]string `json:"courses"`
}

// Validate implements Validator.
func (u UpdateSettingsRequest) Validate() []string {
	var errs []string
	if u.Prefix != nil && strings.TrimSpace(*u.Prefix) == "" {
		errs = append(errs, "prefix must not be empty")
	}
	if u.Timezone != nil {
		if strings.TrimSpace(*u.Timezone) == "" {
			errs = append(errs, "timezone must not be empty")
		}
	}
	if u.QuoteApprovalsRequired != nil && *u.QuoteApprovalsRequired < 1 {
		errs = append(errs, "quote_approvals_required must be at least 1")
	}
	if u.EmailDomain != nil && strings.TrimSpace(*u.EmailDomain) == "" {
		errs = append(errs, "email_domain must not be empty")
	}
	if u.VerifiedRole != nil && strings.TrimSpace(*u.VerifiedRole) == "" {
		errs = append(errs, "verified_role must not be empty")
	}
	return errs
}

func (u UpdateSettingsRequest) toDomain() *domain.GuildSettingsUpdate {
	return &domain.GuildSettingsUpdate{
		Prefix:                 u.Prefix,
		Timezone:               u.Timezone,
		PinsEnabled:            u.PinsEnabled,
		PinEmoji:               u.PinEmoji,
		QuotesEnabled:          u.QuotesEnabled,
		QuoteApprovalsRequired: u.QuoteApprovalsRequired,
		VerificationEnabled:    u.VerificationEnabled,
		EmailDomain:            u.EmailDomain,
		VerifiedRole:           u.VerifiedRole,
		DueDatesEnabled:        u.DueDatesEnabled,
		DueDateTypes:           u.DueDateTypes,
		DueDateCategories:      u.DueDateCategories,
		Courses:                u.Courses,
	}
}

// SettingsController handles guild settings endpoints.
type SettingsController struct {
	Logger  *slog.Logger
	Service domain.SettingsService
}

// NewSettingsController creates a SettingsController with the given logger and service.
func NewSettingsController(logger *slog.Logger, svc domain.SettingsService) *SettingsController {
	return &SettingsController{
		Logger:  logger,
		Service: svc,
	}
}

// Get godoc
// @Summary Get guild settings
// @Description Returns the guild's settings, creating the default record on first access.
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Success 200 {object} helpers.APIResponse "data contains the guild settings"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/settings [get]
func (c *SettingsController) Get(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")

	settings, err := c.Service.Get(r.Context(), guildID)
	if err != nil {
		c.writeSettingsError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, settings)
}

// Update godoc
// @Summary Update guild settings
// @Description Applies a partial update to the guild's settings. Absent fields are left unchanged.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param body body UpdateSettingsRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated settings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/settings [patch]
func (c *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	var req UpdateSettingsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	settings, err := c.Service.Update(r.Context(), guildID, req.toDomain())
	if err != nil {
		c.writeSettingsError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, settings)
}

func (c *SettingsController) writeSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGuildNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		c.Logger.Error("storage unavailable", "error", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeStorageUnavailable, "storage unavailable")
	default:
		c.Logger.Error("settings request failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
