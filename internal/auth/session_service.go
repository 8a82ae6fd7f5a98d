package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/models"
	"github.com/charlesng35/otpdash/pkg/metrics"
)

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	TTL   time.Duration
	Clock func() time.Time
}

// SessionMetadata captures contextual information about the client.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// IssuedSession pairs a stored session with the token handed to the browser.
type IssuedSession struct {
	Token   string
	Session *models.Session
}

var (
	// ErrSessionNotFound indicates that no session matches the provided token or identifier.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionRevoked marks a session that has been ended by logout.
	ErrSessionRevoked = errors.New("session: revoked")
	// ErrSessionExpired signals that the session has reached its expiry.
	ErrSessionExpired = errors.New("session: expired")
	// ErrSessionInvalidToken is returned when the cookie token fails validation.
	ErrSessionInvalidToken = errors.New("session: invalid token")
)

// SessionService manages the server-side session rows behind session cookies.
type SessionService struct {
	db     *gorm.DB
	signer *TokenSigner
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService constructs a session manager backed by the provided database and signer.
func NewSessionService(db *gorm.DB, signer *TokenSigner, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if signer == nil {
		return nil, errors.New("session service: token signer is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:     db,
		signer: signer,
		ttl:    ttl,
		now:    clock,
	}, nil
}

// TTL returns the lifetime applied to new sessions.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// CreateSession stores a session for user and signs its token. When tx is non-nil the row is
// written inside that transaction so the caller can roll it back together with its own writes;
// the caller then owns the active-session gauge update after commit.
func (s *SessionService) CreateSession(ctx context.Context, tx *gorm.DB, user *models.User, meta SessionMetadata) (*IssuedSession, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, errors.New("session service: user is required")
	}
	ownTx := tx == nil
	if ownTx {
		tx = s.db
	}

	now := s.now().UTC()
	session := &models.Session{
		UserID:     user.ID,
		Email:      user.Email,
		IPAddress:  strings.TrimSpace(meta.IPAddress),
		UserAgent:  strings.TrimSpace(meta.UserAgent),
		ExpiresAt:  now.Add(s.ttl),
		LastSeenAt: now,
		CreatedAt:  now,
	}

	if err := tx.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("session service: create session: %w", err)
	}

	token, err := s.signer.Sign(TokenInput{
		SessionID: session.ID,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("session service: sign token: %w", err)
	}

	if ownTx {
		metrics.ActiveSessions.Inc()
	}

	return &IssuedSession{Token: token, Session: session}, nil
}

// Resolve turns a cookie token into its live session. The token must verify and the row
// must exist, be unrevoked and unexpired.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalidToken
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalidToken, err)
	}

	var session models.Session
	err = s.db.WithContext(ctx).Take(&session, "id = ?", claims.SessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	now := s.now().UTC()
	if !session.Active(now) {
		if session.RevokedAt != nil {
			return nil, ErrSessionRevoked
		}
		return nil, ErrSessionExpired
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", session.ID).
		Update("last_seen_at", now).Error; err == nil {
		session.LastSeenAt = now
	}

	return &session, nil
}

// RevokeSession marks a session as revoked so later requests carrying its token fail.
func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionInvalidToken
	}

	result := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", s.now().UTC())
	if result.Error != nil {
		return fmt.Errorf("session service: revoke session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	return nil
}

// CleanupExpired removes expired and revoked sessions and updates the active gauge.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now().UTC()

	var activeExpired int64
	if err := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("expires_at <= ? AND revoked_at IS NULL", now).
		Count(&activeExpired).Error; err != nil {
		return 0, fmt.Errorf("session service: count expired sessions: %w", err)
	}

	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Or("revoked_at IS NOT NULL").
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup expired sessions: %w", result.Error)
	}

	if activeExpired > 0 {
		metrics.ActiveSessions.Sub(float64(activeExpired))
	}

	return result.RowsAffected, nil
}
