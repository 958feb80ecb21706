package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cld-events/bidsim-api/internal/auth"
	"github.com/cld-events/bidsim-api/internal/config"
	"github.com/cld-events/bidsim-api/internal/models"
	"github.com/cld-events/bidsim-api/internal/store"
)

// fakeUserStore is an in-memory UserStore with the same check-then-insert
// surface as the DynamoDB-backed one.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by email
	fail  bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store down")
	}
	user, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.users[user.Email] = user
	return nil
}

// fakeVerifier stands in for the Google ID token verifier.
type fakeVerifier struct {
	profile *auth.GoogleProfile
	err     error
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (*auth.GoogleProfile, error) {
	return v.profile, v.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newAuthTestApp(users store.UserStore, issuer *auth.Issuer, verifier auth.IdentityVerifier) *fiber.App {
	handler := NewAuthHandler(users, issuer, verifier, nil, &config.GoogleConfig{ClientID: "client-id-1"}, testLogger())

	app := fiber.New()
	app.Post("/signup", handler.Signup)
	app.Post("/login", handler.Login)
	app.Post("/google-signin", handler.GoogleSignin)
	app.Get("/config", handler.Config)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSignup_Success(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	users := newFakeUserStore()
	app := newAuthTestApp(users, issuer, nil)

	resp, body := postJSON(t, app, "/signup", models.SignupRequest{
		Email: "a@example.com", Password: "pw", Name: "Alice",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	identity := issuer.Verify(body["token"].(string))
	require.NotNil(t, identity)
	assert.Equal(t, "a@example.com", identity.Email)

	stored, err := users.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "pw", stored.PasswordHash)
}

func TestSignup_MissingFields(t *testing.T) {
	app := newAuthTestApp(newFakeUserStore(), auth.NewIssuer("test-secret", time.Hour), nil)

	resp, body := postJSON(t, app, "/signup", models.SignupRequest{Email: "a@example.com"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
}

func TestSignup_DuplicateEmail(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	app := newAuthTestApp(newFakeUserStore(), issuer, nil)

	resp, _ := postJSON(t, app, "/signup", models.SignupRequest{Email: "a@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, app, "/signup", models.SignupRequest{Email: "a@example.com", Password: "other"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User exists", body["error"])
}

func TestLogin_Success(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	users := newFakeUserStore()
	app := newAuthTestApp(users, issuer, nil)

	postJSON(t, app, "/signup", models.SignupRequest{Email: "a@example.com", Password: "pw"})

	resp, body := postJSON(t, app, "/login", models.LoginRequest{Email: "a@example.com", Password: "pw"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotNil(t, issuer.Verify(body["token"].(string)))
}

// TestLogin_UniformFailureMessage checks that an unknown email, a wrong
// password and a password-less Google account all fail identically, so the
// response does not reveal which emails exist.
func TestLogin_UniformFailureMessage(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	users := newFakeUserStore()
	app := newAuthTestApp(users, issuer, nil)

	postJSON(t, app, "/signup", models.SignupRequest{Email: "a@example.com", Password: "pw"})
	users.users["g@example.com"] = &models.User{UserID: "u-g", Email: "g@example.com"}

	cases := []models.LoginRequest{
		{Email: "missing@example.com", Password: "pw"},
		{Email: "a@example.com", Password: "wrong"},
		{Email: "g@example.com", Password: "anything"},
	}

	for _, req := range cases {
		resp, body := postJSON(t, app, "/login", req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", body["error"])
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	users := newFakeUserStore()
	users.fail = true
	app := newAuthTestApp(users, auth.NewIssuer("test-secret", time.Hour), nil)

	resp, body := postJSON(t, app, "/login", models.LoginRequest{Email: "a@example.com", Password: "pw"})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
}

func TestGoogleSignin_CreatesUserOnFirstLogin(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	users := newFakeUserStore()
	verifier := &fakeVerifier{profile: &auth.GoogleProfile{
		Subject: "google-sub-1", Email: "g@example.com", Name: "Gina",
	}}
	app := newAuthTestApp(users, issuer, verifier)

	resp, body := postJSON(t, app, "/google-signin", models.GoogleSigninRequest{IDToken: "fake-id-token"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotNil(t, issuer.Verify(body["token"].(string)))

	created, err := users.GetByEmail(context.Background(), "g@example.com")
	require.NoError(t, err)
	assert.Empty(t, created.PasswordHash)
	assert.Equal(t, "google-sub-1", created.GoogleSub)
}

// TestGoogleSignin_ReusesExistingUser verifies the second Google login for
// the same email does not create a second account.
func TestGoogleSignin_ReusesExistingUser(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	users := newFakeUserStore()
	verifier := &fakeVerifier{profile: &auth.GoogleProfile{Subject: "google-sub-1", Email: "g@example.com"}}
	app := newAuthTestApp(users, issuer, verifier)

	postJSON(t, app, "/google-signin", models.GoogleSigninRequest{IDToken: "fake-id-token"})
	first, err := users.GetByEmail(context.Background(), "g@example.com")
	require.NoError(t, err)

	postJSON(t, app, "/google-signin", models.GoogleSigninRequest{IDToken: "fake-id-token"})
	second, err := users.GetByEmail(context.Background(), "g@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
}

func TestGoogleSignin_VerificationFailure(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("token rejected")}
	app := newAuthTestApp(newFakeUserStore(), auth.NewIssuer("test-secret", time.Hour), verifier)

	resp, body := postJSON(t, app, "/google-signin", models.GoogleSigninRequest{IDToken: "bad"})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
}

func TestGoogleSignin_MissingToken(t *testing.T) {
	app := newAuthTestApp(newFakeUserStore(), auth.NewIssuer("test-secret", time.Hour), &fakeVerifier{})

	resp, _ := postJSON(t, app, "/google-signin", models.GoogleSigninRequest{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConfig_ExposesClientID(t *testing.T) {
	app := newAuthTestApp(newFakeUserStore(), auth.NewIssuer("test-secret", time.Hour), nil)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "client-id-1", body["googleClientId"])
}
