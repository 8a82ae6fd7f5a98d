package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/database/testutil"
	"github.com/charlesng35/otpdash/internal/models"
)

func TestCreateSessionIssuesResolvableToken(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "create@example.com")

	issued, err := svc.CreateSession(context.Background(), nil, user, SessionMetadata{
		IPAddress: "10.0.0.1 ",
		UserAgent: "unit-test",
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.Equal(t, user.ID, issued.Session.UserID)
	require.Equal(t, "10.0.0.1", issued.Session.IPAddress)
	require.True(t, issued.Session.ExpiresAt.Equal(clock.Now().Add(2*time.Hour)))

	clock.Advance(time.Minute)

	session, err := svc.Resolve(context.Background(), issued.Token)
	require.NoError(t, err)
	require.Equal(t, issued.Session.ID, session.ID)
	require.Equal(t, "create@example.com", session.Email)
	require.True(t, session.LastSeenAt.Equal(clock.Now()))
}

func TestCreateSessionRollsBackWithTransaction(t *testing.T) {
	db, svc, _ := setupSessionService(t)
	user := createTestUser(t, db, "rollback@example.com")

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.CreateSession(context.Background(), tx, user, SessionMetadata{})
		require.NoError(t, err)
		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestResolveRejectsInvalidTokens(t *testing.T) {
	_, svc, _ := setupSessionService(t)

	_, err := svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionInvalidToken)

	_, err = svc.Resolve(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrSessionInvalidToken)
}

func TestResolveUnknownSession(t *testing.T) {
	_, svc, clock := setupSessionService(t)

	token, err := svc.signer.Sign(TokenInput{SessionID: "missing", ExpiresAt: clock.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeSessionEndsResolution(t *testing.T) {
	db, svc, _ := setupSessionService(t)
	user := createTestUser(t, db, "revoke@example.com")

	issued, err := svc.CreateSession(context.Background(), nil, user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(context.Background(), issued.Session.ID))
	require.ErrorIs(t, svc.RevokeSession(context.Background(), issued.Session.ID), ErrSessionNotFound)

	_, err = svc.Resolve(context.Background(), issued.Token)
	require.ErrorIs(t, err, ErrSessionRevoked)
}

func TestResolveExpiredSession(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "expired@example.com")

	issued, err := svc.CreateSession(context.Background(), nil, user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", issued.Session.ID).
		Update("expires_at", clock.Now().Add(-time.Minute)).Error)

	_, err = svc.Resolve(context.Background(), issued.Token)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestCleanupExpiredRemovesDeadSessions(t *testing.T) {
	db, svc, clock := setupSessionService(t)
	user := createTestUser(t, db, "cleanup@example.com")

	live, err := svc.CreateSession(context.Background(), nil, user, SessionMetadata{})
	require.NoError(t, err)
	revoked, err := svc.CreateSession(context.Background(), nil, user, SessionMetadata{})
	require.NoError(t, err)
	expired, err := svc.CreateSession(context.Background(), nil, user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(context.Background(), revoked.Session.ID))
	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", expired.Session.ID).
		Update("expires_at", clock.Now().Add(-time.Minute)).Error)

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	var remaining []models.Session
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, live.Session.ID, remaining[0].ID)
}

func setupSessionService(t *testing.T) (*gorm.DB, *SessionService, *testClock) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := &testClock{current: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)}

	signer, err := NewTokenSigner(TokenConfig{
		Secret: "session-secret",
		Issuer: "otpdash",
		Clock:  clock.Now,
	})
	require.NoError(t, err)

	sessionService, err := NewSessionService(db, signer, SessionConfig{
		TTL:   2 * time.Hour,
		Clock: clock.Now,
	})
	require.NoError(t, err)

	return db, sessionService, clock
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Verified: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
