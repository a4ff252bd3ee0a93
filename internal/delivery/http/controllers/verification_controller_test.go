package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusbot/internal/delivery/http/helpers"
	"campusbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVerificationService implements domain.VerificationService for handler tests.
type fakeVerificationService struct {
	requestResult domain.RequestResult
	requestErr    error
	confirmErr    error
	unverifyErr   error
	isVerified    bool
	isVerifiedErr error

	lastUserID  string
	lastGuildID string
	lastEmail   string
	lastToken   string
}

func (f *fakeVerificationService) Request(ctx context.Context, userID, guildID, email string) (domain.RequestResult, error) {
	f.lastUserID, f.lastGuildID, f.lastEmail = userID, guildID, email
	if f.requestErr != nil {
		return "", f.requestErr
	}
	return f.requestResult, nil
}

func (f *fakeVerificationService) Confirm(ctx context.Context, userID, guildID, token string) error {
	f.lastUserID, f.lastGuildID, f.lastToken = userID, guildID, token
	return f.confirmErr
}

func (f *fakeVerificationService) Unverify(ctx context.Context, userID, guildID string) error {
	f.lastUserID, f.lastGuildID = userID, guildID
	return f.unverifyErr
}

func (f *fakeVerificationService) IsVerified(ctx context.Context, userID, guildID string) (bool, error) {
	f.lastUserID, f.lastGuildID = userID, guildID
	return f.isVerified, f.isVerifiedErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestVerificationController_Request(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		result       domain.RequestResult
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		wantResult   domain.RequestResult
	}{
		{
			name:       "pending created",
			body:       `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			result:     domain.ResultPendingCreated,
			wantStatus: http.StatusCreated,
			wantResult: domain.ResultPendingCreated,
		},
		{
			name:       "auto verified",
			body:       `{"user_id":"u1","email":""}`,
			result:     domain.ResultAutoVerified,
			wantStatus: http.StatusCreated,
			wantResult: domain.ResultAutoVerified,
		},
		{
			name:         "missing user_id",
			body:         `{"email":"alice@uwaterloo.ca"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "unknown field rejected",
			body:         `{"user_id":"u1","email":"a@b.ca","extra":1}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "verification disabled",
			body:         `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			fakeErr:      domain.ErrVerificationDisabled,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeFeatureDisabled,
		},
		{
			name:         "invalid email",
			body:         `{"user_id":"u1","email":"alice@gmail.com"}`,
			fakeErr:      domain.ErrInvalidEmailFormat,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "already verified",
			body:         `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			fakeErr:      domain.ErrAlreadyVerified,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "email claimed in guild",
			body:         `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			fakeErr:      domain.ErrEmailAlreadyClaimed,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "email pending elsewhere",
			body:         `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			fakeErr:      domain.ErrEmailPendingElsewhere,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "email send failed",
			body:         `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			fakeErr:      domain.ErrEmailSendFailed,
			wantStatus:   http.StatusBadGateway,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
		{
			name:         "storage unavailable",
			body:         `{"user_id":"u1","email":"alice@uwaterloo.ca"}`,
			fakeErr:      domain.ErrStorageUnavailable,
			wantStatus:   http.StatusServiceUnavailable,
			wantBodyCode: helpers.ErrCodeStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVerificationService{requestResult: tt.result, requestErr: tt.fakeErr}
			ctrl := NewVerificationController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/guilds/g1/verification/requests", bytes.NewBufferString(tt.body))
			req.SetPathValue("guildID", "g1")
			rr := httptest.NewRecorder()

			ctrl.Request(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp RequestVerificationResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Equal(t, tt.wantResult, resp.Status)
				assert.Equal(t, "g1", fake.lastGuildID)
			}
			if tt.wantBodyCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestVerificationController_Confirm(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"user_id":"u1","token":"abc123"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:         "missing token",
			body:         `{"user_id":"u1"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "no such pending request",
			body:         `{"user_id":"u1","token":"wrong"}`,
			fakeErr:      domain.ErrNoSuchPendingRequest,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "storage unavailable",
			body:         `{"user_id":"u1","token":"abc123"}`,
			fakeErr:      domain.ErrStorageUnavailable,
			wantStatus:   http.StatusServiceUnavailable,
			wantBodyCode: helpers.ErrCodeStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVerificationService{confirmErr: tt.fakeErr}
			ctrl := NewVerificationController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/guilds/g1/verification/confirmations", bytes.NewBufferString(tt.body))
			req.SetPathValue("guildID", "g1")
			rr := httptest.NewRecorder()

			ctrl.Confirm(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "u1", fake.lastUserID)
				assert.Equal(t, "g1", fake.lastGuildID)
				assert.Equal(t, "abc123", fake.lastToken)
			}
		})
	}
}

func TestVerificationController_Status(t *testing.T) {
	fake := &fakeVerificationService{isVerified: true}
	ctrl := NewVerificationController(discardLogger(), fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/guilds/g1/verification/users/u1", nil)
	req.SetPathValue("guildID", "g1")
	req.SetPathValue("userID", "u1")
	rr := httptest.NewRecorder()

	ctrl.Status(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp VerificationStatusResponse
	require.NoError(t, json.Unmarshal(dataBytes, &resp))
	assert.True(t, resp.Verified)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "g1", resp.GuildID)
}

func TestVerificationController_Unverify(t *testing.T) {
	tests := []struct {
		name         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not verified", fakeErr: domain.ErrNotVerified, wantStatus: http.StatusNotFound, wantBodyCode: helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeVerificationService{unverifyErr: tt.fakeErr}
			ctrl := NewVerificationController(discardLogger(), fake)

			req := httptest.NewRequest(http.MethodDelete, "http://test/guilds/g1/verification/users/u1", nil)
			req.SetPathValue("guildID", "g1")
			req.SetPathValue("userID", "u1")
			rr := httptest.NewRecorder()

			ctrl.Unverify(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}
