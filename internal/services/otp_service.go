package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/models"
	"github.com/charlesng35/otpdash/pkg/crypto"
	"github.com/charlesng35/otpdash/pkg/logger"
	"github.com/charlesng35/otpdash/pkg/mail"
	"github.com/charlesng35/otpdash/pkg/metrics"
)

const (
	defaultOTPExpiry = 10 * time.Minute
	otpDigits        = 6
)

// SessionCreator opens a login session inside the verification transaction.
type SessionCreator interface {
	CreateSession(ctx context.Context, tx *gorm.DB, user *models.User, meta auth.SessionMetadata) (*auth.IssuedSession, error)
}

// OTPOption customises the OTPService.
type OTPOption func(*OTPService)

// WithOTPExpiry overrides the code lifetime.
func WithOTPExpiry(d time.Duration) OTPOption {
	return func(s *OTPService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithOTPClock injects a custom time source.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(s *OTPService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithOTPCodeGenerator replaces the random code source.
func WithOTPCodeGenerator(gen func() (string, error)) OTPOption {
	return func(s *OTPService) {
		if gen != nil {
			s.generate = gen
		}
	}
}

// WithDashboardURL sets the link placed in the confirmation email.
func WithDashboardURL(url string) OTPOption {
	return func(s *OTPService) {
		s.dashboardURL = strings.TrimSpace(url)
	}
}

// WithSender sets the From address of outgoing mail.
func WithSender(from string) OTPOption {
	return func(s *OTPService) {
		s.sender = strings.TrimSpace(from)
	}
}

// VerifyResult describes a completed login.
type VerifyResult struct {
	User    *models.User
	Session *models.Session
	Token   string
}

// OTPService issues one-time codes by email and exchanges valid codes for sessions.
type OTPService struct {
	db           *gorm.DB
	mailer       mail.Mailer
	sessions     SessionCreator
	expiry       time.Duration
	sender       string
	dashboardURL string
	now          func() time.Time
	generate     func() (string, error)
	log          *zap.Logger
}

// NewOTPService constructs the service with the provided dependencies.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, sessions SessionCreator, opts ...OTPOption) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}
	if mailer == nil {
		return nil, errors.New("otp service: mailer is required")
	}
	if sessions == nil {
		return nil, errors.New("otp service: session creator is required")
	}

	service := &OTPService{
		db:       db,
		mailer:   mailer,
		sessions: sessions,
		expiry:   defaultOTPExpiry,
		now:      time.Now,
		generate: func() (string, error) { return crypto.GenerateNumericCode(otpDigits) },
		log:      logger.WithModule("otp"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// NormalizeEmail trims and lower-cases an address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue creates or replaces the code for email and mails it. Any previous code for the
// address stops working.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		metrics.OTPIssued.WithLabelValues("invalid").Inc()
		return ErrInvalidInput
	}

	code, err := s.generate()
	if err != nil {
		metrics.OTPIssued.WithLabelValues("store_error").Inc()
		return fmt.Errorf("%w: generate code: %v", ErrPersistenceFailed, err)
	}

	hash, err := crypto.HashSecret(code)
	if err != nil {
		metrics.OTPIssued.WithLabelValues("store_error").Inc()
		return fmt.Errorf("%w: hash code: %v", ErrPersistenceFailed, err)
	}

	now := s.now().UTC()
	record := models.OTPRecord{
		BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: now.Add(s.expiry),
		Verified:  false,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "verified", "created_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		metrics.OTPIssued.WithLabelValues("store_error").Inc()
		return fmt.Errorf("%w: store code: %v", ErrPersistenceFailed, err)
	}

	msg, err := mail.OTPMessage(email, code, s.expiry)
	if err != nil {
		metrics.OTPIssued.WithLabelValues("delivery_error").Inc()
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	msg.From = s.sender

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.OTPIssued.WithLabelValues("delivery_error").Inc()
		metrics.MailDeliveries.WithLabelValues("otp", "failure").Inc()
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	metrics.MailDeliveries.WithLabelValues("otp", "success").Inc()
	metrics.OTPIssued.WithLabelValues("success").Inc()
	s.log.Info("otp issued", zap.String("email", email), zap.Time("expires_at", record.ExpiresAt))
	return nil
}

// Verify consumes the outstanding code for email and opens a session. Consuming the code,
// upserting the user and creating the session commit together or not at all. A rejected
// code leaves every row untouched.
func (s *OTPService) Verify(ctx context.Context, email, code string, meta auth.SessionMetadata) (*VerifyResult, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		metrics.OTPVerifications.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidInput
	}

	now := s.now().UTC()

	var record models.OTPRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidOrExpiredCode
	}
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: load code: %v", ErrPersistenceFailed, err)
	}

	matches := crypto.VerifySecret(record.CodeHash, code)
	if !matches || !record.Usable(now) {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidOrExpiredCode
	}

	var result VerifyResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		consumed := tx.Model(&models.OTPRecord{}).
			Where("id = ? AND code_hash = ? AND verified = ? AND expires_at > ?", record.ID, record.CodeHash, false, now).
			Updates(map[string]any{"verified": true, "updated_at": now})
		if consumed.Error != nil {
			return consumed.Error
		}
		if consumed.RowsAffected != 1 {
			return errCodeConsumed
		}

		user, err := upsertUser(tx, email, now)
		if err != nil {
			return err
		}

		issued, err := s.sessions.CreateSession(ctx, tx, user, meta)
		if err != nil {
			return err
		}

		result = VerifyResult{User: user, Session: issued.Session, Token: issued.Token}
		return nil
	})
	if errors.Is(err, errCodeConsumed) {
		metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidOrExpiredCode
	}
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	metrics.ActiveSessions.Inc()
	metrics.OTPVerifications.WithLabelValues("success").Inc()
	s.log.Info("otp verified", zap.String("email", email), zap.String("session_id", result.Session.ID))

	s.sendConfirmation(ctx, email)
	return &result, nil
}

// sendConfirmation delivers the welcome email. The login has already committed, so a
// failure is only logged and counted.
func (s *OTPService) sendConfirmation(ctx context.Context, email string) {
	msg, err := mail.ConfirmationMessage(email, s.dashboardURL)
	if err == nil {
		msg.From = s.sender
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		metrics.MailDeliveries.WithLabelValues("confirmation", "failure").Inc()
		s.log.Warn("confirmation email failed", zap.String("email", email), zap.Error(err))
		return
	}
	metrics.MailDeliveries.WithLabelValues("confirmation", "success").Inc()
}

func upsertUser(tx *gorm.DB, email string, now time.Time) (*models.User, error) {
	user := models.User{
		BaseModel:   models.BaseModel{CreatedAt: now, UpdatedAt: now},
		Email:       email,
		LastLoginAt: now,
		Verified:    true,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_login_at", "verified", "updated_at"}),
	}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	// The insert may have been turned into an update, so reload to get the stored id.
	var stored models.User
	if err := tx.Where("email = ?", email).Take(&stored).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &stored, nil
}
