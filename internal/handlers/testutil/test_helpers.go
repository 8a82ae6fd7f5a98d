package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/api"
	"github.com/charlesng35/otpdash/internal/app"
	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/catalog"
	sharedtestutil "github.com/charlesng35/otpdash/internal/database/testutil"
	"github.com/charlesng35/otpdash/internal/middleware"
	"github.com/charlesng35/otpdash/internal/services"
	"github.com/charlesng35/otpdash/pkg/mail"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database, a recording
// mailer and a fake catalog server for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	Sessions *iauth.SessionService
	Catalog  *httptest.Server
	Config   *app.Config

	mailMu     sync.Mutex
	mail       []mail.Message
	failMail   atomic.Bool
	failFetch  atomic.Bool
	codes      atomic.Int64
	productsMu sync.Mutex
	products   []catalog.Product
	catalogHit atomic.Int64
}

// EnvOption customises NewEnv.
type EnvOption func(*app.Config)

// WithRateLimit sets the auth endpoint limit.
func WithRateLimit(requests int) EnvOption {
	return func(cfg *app.Config) {
		cfg.RateLimit.Requests = requests
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	env := &Env{
		T:        t,
		DB:       sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate()),
		products: SampleProducts(23),
	}
	env.codes.Store(100000)

	env.Catalog = httptest.NewServer(http.HandlerFunc(env.serveCatalog))
	t.Cleanup(env.Catalog.Close)

	cfg := &app.Config{
		Server: app.ServerConfig{Environment: "test"},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: "handler-suite-secret-with-enough-bytes", Issuer: "test-suite"},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
		RateLimit: app.RateLimitConfig{Requests: 100, Window: time.Minute},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	env.Config = cfg

	signer, err := iauth.NewTokenSigner(cfg.Auth.TokenSignerConfig())
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(env.DB, signer, cfg.Auth.SessionServiceConfig())
	require.NoError(t, err)
	env.Sessions = sessions

	mailer := mail.MailerFunc(func(_ context.Context, msg mail.Message) error {
		if env.failMail.Load() {
			return fmt.Errorf("mail transport down")
		}
		env.mailMu.Lock()
		defer env.mailMu.Unlock()
		env.mail = append(env.mail, msg)
		return nil
	})

	otp, err := services.NewOTPService(env.DB, mailer, sessions,
		services.WithOTPCodeGenerator(func() (string, error) {
			return fmt.Sprintf("%06d", env.codes.Add(1)), nil
		}),
		services.WithDashboardURL("http://localhost/dashboard"),
	)
	require.NoError(t, err)

	source, err := catalog.NewClient(catalog.ClientConfig{BaseURL: env.Catalog.URL + "/products"})
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		DB:        env.DB,
		Config:    cfg,
		OTP:       otp,
		Sessions:  sessions,
		Catalog:   source,
		RateStore: middleware.NewMemoryRateStore(nil),
	})
	require.NoError(t, err)
	env.Router = router

	return env
}

// LastCode returns the most recently generated one-time code.
func (e *Env) LastCode() string {
	return fmt.Sprintf("%06d", e.codes.Load())
}

// Mail returns a copy of every delivered message.
func (e *Env) Mail() []mail.Message {
	e.mailMu.Lock()
	defer e.mailMu.Unlock()
	return append([]mail.Message(nil), e.mail...)
}

// FailMail makes subsequent deliveries fail.
func (e *Env) FailMail(fail bool) {
	e.failMail.Store(fail)
}

// FailCatalog makes the fake catalog answer with 500.
func (e *Env) FailCatalog(fail bool) {
	e.failFetch.Store(fail)
}

// SetProducts replaces what the fake catalog serves from now on.
func (e *Env) SetProducts(products []catalog.Product) {
	e.productsMu.Lock()
	defer e.productsMu.Unlock()
	e.products = products
}

// CatalogHits counts requests the fake catalog served.
func (e *Env) CatalogHits() int64 {
	return e.catalogHit.Load()
}

func (e *Env) serveCatalog(w http.ResponseWriter, r *http.Request) {
	e.catalogHit.Add(1)
	if e.failFetch.Load() {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	e.productsMu.Lock()
	products := e.products
	e.productsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(catalog.Snapshot{
		Products: products,
		Total:    len(products),
		Limit:    100,
	})
}

// SampleProducts builds n products spread over three categories with rising prices.
func SampleProducts(n int) []catalog.Product {
	categories := []string{"beauty", "fragrances", "furniture"}
	products := make([]catalog.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, catalog.Product{
			ID:          i,
			Title:       fmt.Sprintf("Product %02d", i),
			Description: fmt.Sprintf("Description of product %d", i),
			Price:       float64(i * 25),
			Rating:      4,
			Stock:       i,
			Brand:       "Acme",
			Category:    categories[(i-1)%len(categories)],
			Thumbnail:   fmt.Sprintf("https://cdn.example.com/%d.png", i),
		})
	}
	return products
}

// Login runs the OTP flow for email and returns the session cookie.
func (e *Env) Login(email string) *http.Cookie {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/send-otp", map[string]string{"email": email}, nil)
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	w = e.Request(http.MethodPost, "/api/auth/verify-otp", map[string]string{"email": email, "otp": e.LastCode()}, nil)
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	cookie := SessionCookie(w)
	require.NotNil(e.T, cookie, "session cookie missing")
	return cookie
}

// SessionCookie extracts the session cookie set by a response, if any.
func SessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == iauth.SessionCookieName {
			return c
		}
	}
	return nil
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, JSON-encoding body and
// attaching cookie when given.
func (e *Env) Request(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
