package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusbot/internal/delivery/http/helpers"
	"campusbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuoteService implements domain.QuoteService for handler tests.
type fakeQuoteService struct {
	quote      *domain.Quote
	quotes     []*domain.Quote
	total      int
	err        error
	lastAuthor domain.UserArg
	lastText   string
	lastID     string
}

func (f *fakeQuoteService) Add(ctx context.Context, guildID, text string, author domain.UserArg, saidAt time.Time) (*domain.Quote, error) {
	f.lastText, f.lastAuthor = text, author
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeQuoteService) Random(ctx context.Context, guildID string, author domain.UserArg) (*domain.Quote, error) {
	f.lastAuthor = author
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeQuoteService) List(ctx context.Context, guildID string, params domain.PaginationParams) ([]*domain.Quote, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.quotes, f.total, nil
}

func (f *fakeQuoteService) Remove(ctx context.Context, guildID, id string) error {
	f.lastID = id
	return f.err
}

func TestQuoteController_Add(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		wantAuthor   domain.UserArg
	}{
		{
			name:       "mention author",
			body:       `{"text":"it compiles, ship it","author":"<@u42>"}`,
			wantStatus: http.StatusCreated,
			wantAuthor: domain.UserArg{Kind: domain.UserArgMention, UserID: "u42"},
		},
		{
			name:       "free text author",
			body:       `{"text":"deadlines are suggestions","author":"Prof. Lee"}`,
			wantStatus: http.StatusCreated,
			wantAuthor: domain.UserArg{Kind: domain.UserArgRawText, Text: "Prof. Lee"},
		},
		{
			name:         "missing text",
			body:         `{"author":"someone"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "quotes disabled",
			body:         `{"text":"x","author":"y"}`,
			fakeErr:      domain.ErrQuotesDisabled,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeFeatureDisabled,
		},
		{
			name:         "storage unavailable",
			body:         `{"text":"x","author":"y"}`,
			fakeErr:      domain.ErrStorageUnavailable,
			wantStatus:   http.StatusServiceUnavailable,
			wantBodyCode: helpers.ErrCodeStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQuoteService{quote: &domain.Quote{ID: "q1", GuildID: "g1"}, err: tt.fakeErr}
			ctrl := NewQuoteController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/guilds/g1/quotes", bytes.NewBufferString(tt.body))
			req.SetPathValue("guildID", "g1")
			rr := httptest.NewRecorder()

			ctrl.Add(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, tt.wantAuthor, fake.lastAuthor)
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestQuoteController_Random(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		wantAuthor   domain.UserArg
	}{
		{
			name:       "no filter",
			wantStatus: http.StatusOK,
		},
		{
			name:       "author filter by mention",
			query:      "?author=%3C%40u42%3E",
			wantStatus: http.StatusOK,
			wantAuthor: domain.UserArg{Kind: domain.UserArgMention, UserID: "u42"},
		},
		{
			name:         "no quotes",
			fakeErr:      domain.ErrQuoteNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQuoteService{quote: &domain.Quote{ID: "q1", GuildID: "g1", Text: "hi"}, err: tt.fakeErr}
			ctrl := NewQuoteController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/guilds/g1/quotes/random"+tt.query, nil)
			req.SetPathValue("guildID", "g1")
			rr := httptest.NewRecorder()

			ctrl.Random(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantAuthor, fake.lastAuthor)
			}
		})
	}
}

func TestQuoteController_List(t *testing.T) {
	quotes := []*domain.Quote{
		{ID: "q1", GuildID: "g1", Text: "one"},
		{ID: "q2", GuildID: "g1", Text: "two"},
	}
	fake := &fakeQuoteService{quotes: quotes, total: 42}
	ctrl := NewQuoteController(discardLogger(), fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/guilds/g1/quotes?page=2&page_size=2", nil)
	req.SetPathValue("guildID", "g1")
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp QuoteListResponse
	require.NoError(t, json.Unmarshal(dataBytes, &resp))
	assert.Len(t, resp.Quotes, 2)
	assert.Equal(t, 42, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 21, resp.Pagination.TotalPages)
}

func TestQuoteController_Remove(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not found", fakeErr: domain.ErrQuoteNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeQuoteService{err: tt.fakeErr}
			ctrl := NewQuoteController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodDelete, "http://test/guilds/g1/quotes/q9", nil)
			req.SetPathValue("guildID", "g1")
			req.SetPathValue("quoteID", "q9")
			rr := httptest.NewRecorder()

			ctrl.Remove(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "q9", fake.lastID)
			}
		})
	}
}
