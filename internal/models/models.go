package models

import "time"

// User represents a registered account. Records are created on signup or first
// Google login and never mutated or deleted afterwards.
type User struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"` // Primary Key
	Email        string    `json:"email" dynamodbav:"email"`     // Unique, case-sensitive as stored
	PasswordHash string    `json:"-" dynamodbav:"password_hash,omitempty"`
	Name         string    `json:"name" dynamodbav:"name"`
	GoogleSub    string    `json:"-" dynamodbav:"google_sub,omitempty"` // Identity provider subject id
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at,unixtime"`
}

// Identity is the verified subject of a session token.
type Identity struct {
	SubjectID string
	Email     string
}

// SignupRequest is the POST /signup payload
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the POST /login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSigninRequest is the POST /google-signin payload
type GoogleSigninRequest struct {
	IDToken string `json:"idToken"`
}

// TokenResponse is the success body of every token-minting endpoint
type TokenResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

// SubmitResponse is the success body of POST /submit
type SubmitResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// SubmissionsResponse is the success body of GET /submissions
type SubmissionsResponse struct {
	OK          bool                     `json:"ok"`
	Submissions []map[string]interface{} `json:"submissions"`
}

// ConfigResponse is the body of GET /config
type ConfigResponse struct {
	OK             bool   `json:"ok"`
	GoogleClientID string `json:"googleClientId"`
}

// ErrorResponse is the uniform failure body
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
