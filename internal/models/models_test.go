package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateAssignsID(t *testing.T) {
	var m BaseModel
	require.NoError(t, m.BeforeCreate(nil))
	require.NotEmpty(t, m.ID)

	existing := BaseModel{ID: "fixed"}
	require.NoError(t, existing.BeforeCreate(nil))
	require.Equal(t, "fixed", existing.ID)
}

func TestOTPRecordUsable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	record := &OTPRecord{ExpiresAt: now.Add(time.Minute)}
	require.True(t, record.Usable(now))

	record.Verified = true
	require.False(t, record.Usable(now))

	expired := &OTPRecord{ExpiresAt: now}
	require.False(t, expired.Usable(now), "expiry instant is exclusive")

	var missing *OTPRecord
	require.False(t, missing.Usable(now))
}

func TestSessionActive(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	session := &Session{ExpiresAt: now.Add(time.Hour)}
	require.True(t, session.Active(now))
	require.False(t, session.Active(now.Add(2*time.Hour)))

	revokedAt := now
	session.RevokedAt = &revokedAt
	require.False(t, session.Active(now))

	var s Session
	require.NoError(t, s.BeforeCreate(nil))
	require.NotEmpty(t, s.ID)
}
