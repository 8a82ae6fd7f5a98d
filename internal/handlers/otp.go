package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/services"
	appErrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/charlesng35/otpdash/pkg/response"
)

const (
	msgEmailRequired       = "Email is required"
	msgEmailAndOTPRequired = "Email and OTP are required"
	msgInvalidOTP          = "Invalid or expired OTP"
	msgSendFailed          = "Failed to send OTP"
	msgVerifyFailed        = "Failed to verify OTP"
)

// OTPHandler exposes code issuance and verification.
type OTPHandler struct {
	otp        *services.OTPService
	cookie     iauth.CookieOptions
	sessionTTL time.Duration
}

// NewOTPHandler wires the handler. The session cookie lifetime follows sessions.TTL().
func NewOTPHandler(otp *services.OTPService, sessions *iauth.SessionService, cookie iauth.CookieOptions) (*OTPHandler, error) {
	if otp == nil {
		return nil, errors.New("otp handler: otp service is required")
	}
	if sessions == nil {
		return nil, errors.New("otp handler: session service is required")
	}
	return &OTPHandler{
		otp:        otp,
		cookie:     cookie,
		sessionTTL: sessions.TTL(),
	}, nil
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,notblank"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,notblank"`
	OTP   string `json:"otp" validate:"required,notblank"`
}

// POST /api/auth/send-otp
func (h *OTPHandler) Send(c *gin.Context) {
	var req sendOTPRequest
	if !bindAndValidate(c, &req, msgEmailRequired) {
		return
	}

	if err := h.otp.Issue(requestContext(c), req.Email); err != nil {
		_ = c.Error(err)
		if errors.Is(err, services.ErrInvalidInput) {
			response.Error(c, appErrors.NewBadRequest(msgEmailRequired))
			return
		}
		response.Error(c, appErrors.NewInternal(msgSendFailed, err))
		return
	}

	response.Message(c, http.StatusOK, "OTP sent successfully")
}

// POST /api/auth/verify-otp
func (h *OTPHandler) Verify(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req, msgEmailAndOTPRequired) {
		return
	}

	result, err := h.otp.Verify(requestContext(c), req.Email, req.OTP, sessionMetadata(c))
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			response.Error(c, appErrors.NewBadRequest(msgEmailAndOTPRequired))
		case errors.Is(err, services.ErrInvalidOrExpiredCode):
			response.Error(c, appErrors.NewBadRequest(msgInvalidOTP))
		default:
			response.Error(c, appErrors.NewInternal(msgVerifyFailed, err))
		}
		return
	}

	http.SetCookie(c.Writer, iauth.NewSessionCookie(result.Token, h.sessionTTL, h.cookie))
	response.Message(c, http.StatusOK, "OTP verified successfully")
}
