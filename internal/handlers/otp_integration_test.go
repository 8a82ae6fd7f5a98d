package handlers_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/handlers/testutil"
	"github.com/charlesng35/otpdash/internal/models"
	"github.com/charlesng35/otpdash/pkg/mail"
)

func TestSendOTP(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": " User@Example.com "}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "OTP sent successfully", resp.Message)

	sent := env.Mail()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"user@example.com"}, sent[0].To)
	require.Equal(t, mail.OTPSubject, sent[0].Subject)
	require.Contains(t, sent[0].Body, env.LastCode())

	var record models.OTPRecord
	require.NoError(t, env.DB.Take(&record, "email = ?", "user@example.com").Error)
	require.False(t, record.Verified)
	require.NotContains(t, record.CodeHash, env.LastCode())
}

func TestSendOTPRequiresEmail(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, body := range []any{nil, map[string]string{}, map[string]string{"email": "   "}} {
		w := env.Request(http.MethodPost, "/api/auth/send-otp", body, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		resp := testutil.DecodeResponse(t, w)
		require.Equal(t, "Email is required", resp.Error)
		require.Equal(t, "BAD_REQUEST", resp.Code)
	}
	require.Empty(t, env.Mail())
}

func TestSendOTPDeliveryFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	env.FailMail(true)

	w := env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "Failed to send OTP", resp.Error)
	require.NotContains(t, w.Body.String(), "mail transport down")
}

func TestVerifyOTPSetsSessionCookie(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	code := env.LastCode()

	w = env.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": "user@example.com", "otp": code}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "OTP verified successfully", resp.Message)

	cookie := testutil.SessionCookie(w)
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	require.False(t, cookie.Secure)

	var user models.User
	require.NoError(t, env.DB.Take(&user, "email = ?", "user@example.com").Error)
	require.True(t, user.Verified)

	sent := env.Mail()
	require.Len(t, sent, 2)
	require.Equal(t, mail.ConfirmationSubject, sent[1].Subject)

	// a consumed code cannot be replayed
	w = env.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": "user@example.com", "otp": code}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid or expired OTP", testutil.DecodeResponse(t, w).Error)
}

func TestVerifyOTPStoreFailureIsGeneric(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, env.DB.Callback().Create().Before("gorm:create").Register("test:fail_sessions", func(tx *gorm.DB) {
		if tx.Statement.Table == "sessions" {
			_ = tx.AddError(errors.New("database is locked: /var/lib/otpdash/otpdash.sqlite"))
		}
	}))

	w = env.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": "user@example.com", "otp": env.LastCode()}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "locked")
	require.NotContains(t, w.Body.String(), "/var/lib")

	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "Failed to verify OTP", resp.Error)
	require.Equal(t, "INTERNAL_SERVER_ERROR", resp.Code)
	require.Nil(t, testutil.SessionCookie(w))

	var record models.OTPRecord
	require.NoError(t, env.DB.Take(&record, "email = ?", "user@example.com").Error)
	require.False(t, record.Verified)
}

func TestVerifyOTPRejections(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Email and OTP are required", testutil.DecodeResponse(t, w).Error)

	w = env.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": "nobody@example.com", "otp": "123456"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid or expired OTP", testutil.DecodeResponse(t, w).Error)

	w = env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": "user@example.com", "otp": "000000"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid or expired OTP", testutil.DecodeResponse(t, w).Error)
	require.Nil(t, testutil.SessionCookie(w))

	var record models.OTPRecord
	require.NoError(t, env.DB.Take(&record, "email = ?", "user@example.com").Error)
	require.False(t, record.Verified)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	env := testutil.NewEnv(t, testutil.WithRateLimit(2))

	for i := 0; i < 2; i++ {
		w := env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": "user@example.com"}, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", testutil.DecodeResponse(t, w).Code)
	require.Len(t, env.Mail(), 2)
}
