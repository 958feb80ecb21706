package routes

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/cld-events/bidsim-api/internal/auth"
	"github.com/cld-events/bidsim-api/internal/config"
	"github.com/cld-events/bidsim-api/internal/metrics"
	"github.com/cld-events/bidsim-api/internal/models"
	"github.com/cld-events/bidsim-api/internal/store"
	apperrors "github.com/cld-events/bidsim-api/pkg/errors"
)

const oauthStateCookie = "bidsim_oauth_state"

// AuthHandler handles signup, password login and Google identity login.
type AuthHandler struct {
	users    store.UserStore
	issuer   *auth.Issuer
	verifier auth.IdentityVerifier
	oauth    *auth.GoogleOAuth
	google   *config.GoogleConfig
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users store.UserStore, issuer *auth.Issuer, verifier auth.IdentityVerifier, oauth *auth.GoogleOAuth, google *config.GoogleConfig, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		issuer:   issuer,
		verifier: verifier,
		oauth:    oauth,
		google:   google,
		logger:   logger,
	}
}

// Signup handles POST /signup: hash the password, store the user, mint a token.
// The email existence check and the insert are not atomic; two concurrent
// signups for one email can both succeed. Accepted, not remediated.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "Invalid request body", err))
	}

	if req.Email == "" || req.Password == "" {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "Email and password required", nil))
	}

	existing, err := h.users.GetByEmail(c.Context(), req.Email)
	if err != nil && err != store.ErrUserNotFound {
		return respondError(c, apperrors.New(apperrors.CodeStore, "Store lookup failed", err))
	}
	if existing != nil {
		metrics.RecordAuthOperation("signup", "conflict")
		return respondError(c, apperrors.New(apperrors.CodeConflict, "User exists", nil))
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return respondError(c, apperrors.New(apperrors.CodeInternal, "Failed to process password", err))
	}

	user := &models.User{
		UserID:       uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Name:         req.Name,
		CreatedAt:    time.Now(),
	}

	if err := h.users.Create(c.Context(), user); err != nil {
		metrics.RecordAuthOperation("signup", "failure")
		return respondError(c, apperrors.New(apperrors.CodeStore, "Failed to create user", err))
	}

	token, err := h.issuer.Issue(user.UserID, user.Email)
	if err != nil {
		return respondError(c, apperrors.New(apperrors.CodeInternal, "Failed to generate token", err))
	}

	metrics.RecordAuthOperation("signup", "success")
	h.logger.WithFields(logrus.Fields{
		"user_id": user.UserID,
		"email":   user.Email,
	}).Info("User signed up")

	return c.JSON(models.TokenResponse{OK: true, Token: token})
}

// Login handles POST /login. Unknown email and wrong password produce the
// same message so the response does not reveal which emails exist.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "Invalid request body", err))
	}

	invalidCredentials := apperrors.New(apperrors.CodeAuth, "Invalid credentials", nil)

	user, err := h.users.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if err == store.ErrUserNotFound {
			metrics.RecordAuthOperation("login", "failure")
			return respondError(c, invalidCredentials)
		}
		return respondError(c, apperrors.New(apperrors.CodeStore, "Store lookup failed", err))
	}

	// Accounts created through Google login have no password hash; an unset
	// hash is an unconditional mismatch, never an auto-pass.
	if user.PasswordHash == "" {
		metrics.RecordAuthOperation("login", "failure")
		return respondError(c, invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordAuthOperation("login", "failure")
		return respondError(c, invalidCredentials)
	}

	token, err := h.issuer.Issue(user.UserID, user.Email)
	if err != nil {
		return respondError(c, apperrors.New(apperrors.CodeInternal, "Failed to generate token", err))
	}

	metrics.RecordAuthOperation("login", "success")
	h.logger.WithField("user_id", user.UserID).Info("User logged in")

	return c.JSON(models.TokenResponse{OK: true, Token: token})
}

// GoogleSignin handles POST /google-signin: the client obtained an ID token
// from Google directly and presents it here.
func (h *AuthHandler) GoogleSignin(c *fiber.Ctx) error {
	var req models.GoogleSigninRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "Invalid request body", err))
	}

	if req.IDToken == "" {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "idToken required", nil))
	}

	profile, err := h.verifier.Verify(c.Context(), req.IDToken)
	if err != nil {
		metrics.RecordAuthOperation("google", "failure")
		return respondError(c, apperrors.New(apperrors.CodeProvider, "Google sign-in verification failed", err))
	}

	token, err := h.loginWithProfile(c.Context(), profile)
	if err != nil {
		metrics.RecordAuthOperation("google", "failure")
		return respondError(c, err)
	}

	metrics.RecordAuthOperation("google", "success")
	return c.JSON(models.TokenResponse{OK: true, Token: token})
}

// GoogleRedirect handles GET /auth/google: the server-mediated variant for
// clients that cannot call the provider directly.
func (h *AuthHandler) GoogleRedirect(c *fiber.Ctx) error {
	state, err := generateState()
	if err != nil {
		return respondError(c, apperrors.New(apperrors.CodeInternal, "Failed to generate state", err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		MaxAge:   300,
	})

	return c.Redirect(h.oauth.AuthCodeURL(state), fiber.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback: exchanges the code,
// verifies the resulting ID token and delivers the session token to the
// frontend as a redirect query parameter.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "Missing authorization code", nil))
	}

	if state := c.Query("state"); state == "" || state != c.Cookies(oauthStateCookie) {
		return respondError(c, apperrors.New(apperrors.CodeValidation, "State mismatch", nil))
	}

	idToken, err := h.oauth.ExchangeIDToken(c.Context(), code)
	if err != nil {
		metrics.RecordAuthOperation("google", "failure")
		return respondError(c, apperrors.New(apperrors.CodeProvider, "OAuth code exchange failed", err))
	}

	profile, err := h.verifier.Verify(c.Context(), idToken)
	if err != nil {
		metrics.RecordAuthOperation("google", "failure")
		return respondError(c, apperrors.New(apperrors.CodeProvider, "Google sign-in verification failed", err))
	}

	token, err := h.loginWithProfile(c.Context(), profile)
	if err != nil {
		metrics.RecordAuthOperation("google", "failure")
		return respondError(c, err)
	}

	metrics.RecordAuthOperation("google", "success")
	return c.Redirect(fmt.Sprintf("%s/?token=%s", h.google.FrontendURL, url.QueryEscape(token)), fiber.StatusFound)
}

// Config handles GET /config
func (h *AuthHandler) Config(c *fiber.Ctx) error {
	return c.JSON(models.ConfigResponse{OK: true, GoogleClientID: h.google.ClientID})
}

// loginWithProfile is the upsert-by-email path shared by both Google login
// variants: look up the user, create one without a password hash if absent,
// mint a session token.
func (h *AuthHandler) loginWithProfile(ctx context.Context, profile *auth.GoogleProfile) (string, error) {
	user, err := h.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		if err != store.ErrUserNotFound {
			return "", apperrors.New(apperrors.CodeStore, "Store lookup failed", err)
		}

		user = &models.User{
			UserID:    uuid.New().String(),
			Email:     profile.Email,
			Name:      profile.Name,
			GoogleSub: profile.Subject,
			CreatedAt: time.Now(),
		}
		if err := h.users.Create(ctx, user); err != nil {
			return "", apperrors.New(apperrors.CodeStore, "Failed to create user", err)
		}

		h.logger.WithFields(logrus.Fields{
			"user_id": user.UserID,
			"email":   user.Email,
		}).Info("User created via Google login")
	}

	token, err := h.issuer.Issue(user.UserID, user.Email)
	if err != nil {
		return "", apperrors.New(apperrors.CodeInternal, "Failed to generate token", err)
	}

	return token, nil
}

func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
