package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API is a thin JSON client for the bidsim server.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI creates a client for the given server base URL, e.g.
// "http://localhost:5000".
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type tokenResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	Error string `json:"error"`
}

type submitResponse struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type submissionsResponse struct {
	OK          bool                     `json:"ok"`
	Submissions []map[string]interface{} `json:"submissions"`
	Error       string                   `json:"error"`
}

type configResponse struct {
	OK             bool   `json:"ok"`
	GoogleClientID string `json:"googleClientId"`
	Error          string `json:"error"`
}

// Signup registers a new account and returns a session token.
func (a *API) Signup(ctx context.Context, email, password, name string) (string, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var resp tokenResponse
	if err := a.post(ctx, "/signup", "", body, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("signup failed: %s", resp.Error)
	}
	return resp.Token, nil
}

// Login exchanges credentials for a session token.
func (a *API) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := a.post(ctx, "/login", "", body, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("login failed: %s", resp.Error)
	}
	return resp.Token, nil
}

// GoogleSignin exchanges a Google ID token for a session token.
func (a *API) GoogleSignin(ctx context.Context, idToken string) (string, error) {
	body := map[string]string{"idToken": idToken}
	var resp tokenResponse
	if err := a.post(ctx, "/google-signin", "", body, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("google sign-in failed: %s", resp.Error)
	}
	return resp.Token, nil
}

// Submit stores a submission document. The token is optional; without it the
// submission is recorded anonymously.
func (a *API) Submit(ctx context.Context, token string, payload map[string]interface{}) (string, error) {
	var resp submitResponse
	if err := a.post(ctx, "/submit", token, payload, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("submit failed: %s", resp.Error)
	}
	return resp.ID, nil
}

// Submissions lists recent submissions, newest first. With mine set and a
// valid token the listing is restricted to the caller's own documents.
func (a *API) Submissions(ctx context.Context, token string, mine bool) ([]map[string]interface{}, error) {
	path := "/submissions"
	if mine {
		path += "?user=me"
	}
	var resp submissionsResponse
	if err := a.get(ctx, path, token, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("listing failed: %s", resp.Error)
	}
	return resp.Submissions, nil
}

// GoogleClientID fetches the server's public Google OAuth client id.
func (a *API) GoogleClientID(ctx context.Context) (string, error) {
	var resp configResponse
	if err := a.get(ctx, "/config", "", &resp); err != nil {
		return "", err
	}
	return resp.GoogleClientID, nil
}

func (a *API) post(ctx context.Context, path, token string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token, out)
}

func (a *API) get(ctx context.Context, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, token, out)
}

func (a *API) do(req *http.Request, token string, out interface{}) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	return nil
}
