package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cld-events/bidsim-api/internal/models"
)

// Issuer mints and verifies self-contained session tokens. Tokens are signed
// HS256 with a process-lifetime secret and carry the user id and email. There
// is no server-side session state and no revocation before expiry.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// NewIssuer creates a session token issuer with the given signing secret and
// token lifetime.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed session token for the given subject.
func (i *Issuer) Issue(subjectID, email string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify returns the identity carried by a session token, or nil for any
// malformed, tampered or expired token. A token that does not verify is
// equivalent to no token at all; callers that require authentication must
// check for nil themselves.
func (i *Issuer) Verify(tokenString string) *models.Identity {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil
	}

	return &models.Identity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
	}
}
