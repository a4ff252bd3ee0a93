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

// fakeDueDateService implements domain.DueDateService for handler tests.
type fakeDueDateService struct {
	dueDate  *domain.DueDate
	dueDates []*domain.DueDate
	err      error
	lastAdd  *domain.DueDate
	lastID   string
}

func (f *fakeDueDateService) Add(ctx context.Context, d *domain.DueDate) (*domain.DueDate, error) {
	f.lastAdd = d
	if f.err != nil {
		return nil, f.err
	}
	return f.dueDate, nil
}

func (f *fakeDueDateService) ListByCategoryAndCourse(ctx context.Context, guildID, category, course string) ([]*domain.DueDate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.dueDates, nil
}

func (f *fakeDueDateService) Update(ctx context.Context, d *domain.DueDate) (*domain.DueDate, error) {
	f.lastAdd = d
	if f.err != nil {
		return nil, f.err
	}
	return f.dueDate, nil
}

func (f *fakeDueDateService) Remove(ctx context.Context, guildID, id string) error {
	f.lastID = id
	return f.err
}

func TestDueDateController_Add(t *testing.T) {
	validBody := `{"title":"A3","due_at":"2026-10-01T23:59:00Z","type":"Assignment","category":"General","course":"CS 241"}`

	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:         "missing due_at",
			body:         `{"title":"A3","type":"Assignment","category":"General","course":"CS 241"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "unconfigured type",
			body:         validBody,
			fakeErr:      domain.ErrInvalidDueDate,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "due dates disabled",
			body:         validBody,
			fakeErr:      domain.ErrDueDatesDisabled,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeFeatureDisabled,
		},
		{
			name:         "storage unavailable",
			body:         validBody,
			fakeErr:      domain.ErrStorageUnavailable,
			wantStatus:   http.StatusServiceUnavailable,
			wantBodyCode: helpers.ErrCodeStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDueDateService{dueDate: &domain.DueDate{ID: "d1", GuildID: "g1"}, err: tt.fakeErr}
			ctrl := NewDueDateController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/guilds/g1/due-dates", bytes.NewBufferString(tt.body))
			req.SetPathValue("guildID", "g1")
			rr := httptest.NewRecorder()

			ctrl.Add(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				require.NotNil(t, fake.lastAdd)
				assert.Equal(t, "g1", fake.lastAdd.GuildID)
				assert.Equal(t, "A3", fake.lastAdd.Title)
				assert.Equal(t, time.Date(2026, 10, 1, 23, 59, 0, 0, time.UTC), fake.lastAdd.DueAt)
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

func TestDueDateController_List(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		fakeErr    error
		wantStatus int
		wantCount  int
	}{
		{
			name:       "success",
			query:      "?category=General&course=CS+241",
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "missing query params",
			query:      "?category=General",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "feature disabled",
			query:      "?category=General&course=CS+241",
			fakeErr:    domain.ErrDueDatesDisabled,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDueDateService{
				dueDates: []*domain.DueDate{{ID: "d1"}, {ID: "d2"}},
				err:      tt.fakeErr,
			}
			ctrl := NewDueDateController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/guilds/g1/due-dates"+tt.query, nil)
			req.SetPathValue("guildID", "g1")
			rr := httptest.NewRecorder()

			ctrl.List(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp DueDateListResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Len(t, resp.DueDates, tt.wantCount)
			}
		})
	}
}

func TestDueDateController_Update(t *testing.T) {
	fake := &fakeDueDateService{dueDate: &domain.DueDate{ID: "d1", GuildID: "g1", Title: "A3 v2"}}
	ctrl := NewDueDateController(discardLogger(), fake)

	body := `{"title":"A3 v2","due_at":"2026-10-02T23:59:00Z","type":"Assignment","category":"General","course":"CS 241"}`
	req := httptest.NewRequest(http.MethodPut, "http://test/guilds/g1/due-dates/d1", bytes.NewBufferString(body))
	req.SetPathValue("guildID", "g1")
	req.SetPathValue("dueDateID", "d1")
	rr := httptest.NewRecorder()

	ctrl.Update(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fake.lastAdd)
	assert.Equal(t, "d1", fake.lastAdd.ID)
	assert.Equal(t, "A3 v2", fake.lastAdd.Title)
}

func TestDueDateController_Remove(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not found", fakeErr: domain.ErrDueDateNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDueDateService{err: tt.fakeErr}
			ctrl := NewDueDateController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodDelete, "http://test/guilds/g1/due-dates/d7", nil)
			req.SetPathValue("guildID", "g1")
			req.SetPathValue("dueDateID", "d7")
			rr := httptest.NewRecorder()

			ctrl.Remove(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "d7", fake.lastID)
			}
		})
	}
}
