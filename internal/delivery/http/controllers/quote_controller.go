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

// AddQuoteRequest is the request body for POST /guilds/{guildID}/quotes.
// Author accepts a platform mention (<@id>) or free text; said_at is optional
// and defaults to now.
type AddQuoteRequest struct {
	Text   string     `json:"text"`
	Author string     `json:"author"`
	SaidAt *time.Time `json:"said_at"`
}

// Validate implements Validator.
func (q AddQuoteRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, "text is required")
	}
	if strings.TrimSpace(q.Author) == "" {
		errs = append(errs, "author is required")
	}
	return errs
}

// QuoteListResponse is the paginated response body for listing quotes.
type QuoteListResponse struct {
	Quotes     []*domain.Quote        `json:"quotes"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// QuoteController handles quote endpoints.
type QuoteController struct {
	Logger  *slog.Logger
	Service domain.QuoteService
}

// NewQuoteController creates a QuoteController with the given logger and service.
func NewQuoteController(logger *slog.Logger, svc domain.QuoteService) *QuoteController {
	return &QuoteController{
		Logger:  logger,
		Service: svc,
	}
}

// Add godoc
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param body body AddQuoteRequest true "Quote text and author"
// @Success 201 {object} helpers.APIResponse "data contains the created quote"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/quotes [post]
func (c *QuoteController) Add(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	var req AddQuoteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	saidAt := time.Now()
	if req.SaidAt != nil {
		saidAt = *req.SaidAt
	}
	quote, err := c.Service.Add(r.Context(), guildID, req.Text, domain.ParseUserArg(req.Author), saidAt)
	if err != nil {
		c.writeQuoteError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, quote)
}

// Random godoc
// @Summary Get a random quote
// @Description Returns a uniformly random quote in the guild, optionally filtered by author.
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param author query string false "Author mention or name to filter by"
// @Success 200 {object} helpers.APIResponse "data contains the quote"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/quotes/random [get]
func (c *QuoteController) Random(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")

	var author domain.UserArg
	if raw := r.URL.Query().Get("author"); raw != "" {
		author = domain.ParseUserArg(raw)
	}
	quote, err := c.Service.Random(r.Context(), guildID, author)
	if err != nil {
		c.writeQuoteError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, quote)
}

// List godoc
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains quotes and pagination metadata"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/quotes [get]
func (c *QuoteController) List(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	params := helpers.ParsePagination(r)

	quotes, total, err := c.Service.List(r.Context(), guildID, params)
	if err != nil {
		c.writeQuoteError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, QuoteListResponse{
		Quotes:     quotes,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Remove godoc
// @Summary Delete a quote
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param guildID path string true "Guild ID"
// @Param quoteID path string true "Quote ID"
// @Success 200 {object} helpers.APIResponse "data contains status deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: feature_disabled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: storage_unavailable"
// @Router /guilds/{guildID}/quotes/{quoteID} [delete]
func (c *QuoteController) Remove(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	quoteID := r.PathValue("quoteID")

	if err := c.Service.Remove(r.Context(), guildID, quoteID); err != nil {
		c.writeQuoteError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *QuoteController) writeQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotesDisabled):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeFeatureDisabled, err.Error())
	case errors.Is(err, domain.ErrQuoteNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		c.Logger.Error("storage unavailable", "error", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeStorageUnavailable, "storage unavailable")
	default:
		c.Logger.Error("quote request failed", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
