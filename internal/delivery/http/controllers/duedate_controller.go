package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusbot/internal/delivery/http/helpers"
	"campusbot/internal/domain"
)

// AddDueDateRequest is the request body for POST /guilds/{guildID}/due-dates.
type AddDueDateRequest struct {
	Title    string    `json:"title"`
	DueAt    time.Time `json:"due_at"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Course   string    `json:"course"`
	DateOnly bool      `json:"date_only"`
}

// Validate implements Validator.
func (d AddDueDateRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, "title is required")
	}
	if d.DueAt.IsZero() {
		errs = append(errs, "due_at is required")
	}
	if strings.TrimSpace(d.Type) == "" {
		errs = append(errs, "type is required")
	}
	if strings.TrimSpace(d.Category) == "" {
		errs = append(errs, "category is required")
	}
	if strings.TrimSpace(d.Course) == "" {
		errs = append(errs, "course is required")
	}
	return errs
}

func (d AddDueDateRequest) toDomain(guildID, id string) *domain.DueDate {
	return &domain.DueDate{
		ID:       id,
		GuildID:  guildID,
		Title:    d.Title,
		DueAt:    d.DueAt,
		Type:     d.Type,
		Category: d.Category,
		Course:   d.Course,
		DateOnly: d.DateOnly,
	}
}

// DueDateListResponse is the response body for listing due dates.
type DueDateListResponse struct {
	DueDates []*domain.DueDate `json:"due_dates"`
}

// DueDateController handles due-date endpoints.
type DueDateController struct {
	Logger  *slog.Logger
	Service domain.DueDateService
}

// NewDueDateController creates a DueDateController with the given logger and service.
func NewDueDateController(logger *slog.Logger, svc domain.DueDateService) *DueDateController {
	return &DueDateController{
		Logger:  logger,
		Service: svc,
	}
}

// Add godoc
// @Summary Add a due date
// @Description Creates a due date. Type, category, and course must be configured in the guild's settings.
// @Tags due-dates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param body body AddDueDateRequest true "Due date details"
// @Success 201 {object} helpers.APIResponse "data contains the created due date"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/due-dates [post]
func (c *DueDateController) Add(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	var req AddDueDateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	created, err := c.Service.Add(r.Context(), req.toDomain(guildID, ""))
	if err != nil {
		c.writeDueDateError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// List godoc
// @Summary List due dates by category and course
// @Description Returns upcoming due dates for one category and course, pruning past ones first.
// @Tags due-dates
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param category query string true "Category"
// @Param course query string true "Course"
// @Success 200 {object} helpers.APIResponse "data contains the due dates"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/due-dates [get]
func (c *DueDateController) List(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	category := r.URL.Query().Get("category")
	course := r.URL.Query().Get("course")
	if category == "" || course == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "category and course query parameters are required")
		return
	}

	dueDates, err := c.Service.ListByCategoryAndCourse(r.Context(), guildID, category, course)
	if err != nil {
		c.writeDueDateError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DueDateListResponse{DueDates: dueDates})
}

// Update godoc
// @Summary Update a due date
// @Tags due-dates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param dueDateID path string true "Due date ID"
// @Param body body AddDueDateRequest true "Updated due date details"
// @Success 200 {object} helpers.APIResponse "data contains the updated due date"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/due-dates/{dueDateID} [put]
func (c *DueDateController) Update(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	dueDateID := r.PathValue("dueDateID")
	var req AddDueDateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	updated, err := c.Service.Update(r.Context(), req.toDomain(guildID, dueDateID))
	if err != nil {
		c.writeDueDateError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// Remove godoc
// @Summary Delete a due date
// @Tags due-dates
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param dueDateID path string true "Due date ID"
// @Success 200 {object} helpers.APIResponse "data contains status deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/due-dates/{dueDateID} [delete]
func (c *DueDateController) Remove(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	dueDateID := r.PathValue("dueDateID")

	if err := c.Service.Remove(r.Context(), guildID, dueDateID); err != nil {
		c.writeDueDateError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *DueDateController) writeDueDateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDueDatesDisabled):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeFeatureDisabled, err.Error())
	case errors.Is(err, domain.ErrInvalidDueDate):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDueDateNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		c.Logger.Error("storage unavailable", "error", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeStorageUnavailable, "storage unavailable")
	default:
		c.Logger.Error("due-date request failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
