package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cld-events/bidsim-api/internal/auth"
	"github.com/cld-events/bidsim-api/internal/middleware"
)

// fakeSubmissionStore is an in-memory SubmissionStore that keeps insertion
// order and applies the same owner filter as the DynamoDB-backed one.
type fakeSubmissionStore struct {
	mu    sync.Mutex
	items []map[string]interface{}
	fail  bool
}

func (s *fakeSubmissionStore) Put(_ context.Context, item map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("store down")
	}
	id := uuid.New().String()
	item["submission_id"] = id
	s.items = append(s.items, item)
	return id, nil
}

func (s *fakeSubmissionStore) ListRecent(_ context.Context, ownerID string, limit int) ([]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store down")
	}
	out := []map[string]interface{}{}
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		item := s.items[i]
		if ownerID != "" && item["user_id"] != ownerID {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func newSubmissionTestApp(submissions *fakeSubmissionStore, issuer *auth.Issuer) *fiber.App {
	handler := NewSubmissionHandler(submissions, testLogger())

	app := fiber.New()
	app.Use(middleware.NewAuthMiddleware(issuer, testLogger()).OptionalIdentity())
	app.Post("/submit", handler.Submit)
	app.Get("/submissions", handler.List)
	return app
}

func submitRequest(t *testing.T, app *fiber.App, token string, payload map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestSubmit_AuthenticatedStampsOwner(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	submissions := &fakeSubmissionStore{}
	app := newSubmissionTestApp(submissions, issuer)

	token, err := issuer.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	resp, body := submitRequest(t, app, token, map[string]interface{}{
		"teamName": "Heapsters",
		"score":    18.5,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["id"])

	require.Len(t, submissions.items, 1)
	stored := submissions.items[0]
	assert.Equal(t, "user-1", stored["user_id"])
	assert.Equal(t, "Heapsters", stored["teamName"])
	assert.NotNil(t, stored["created_at"])
}

// TestSubmit_ClientOwnershipStripped verifies a client-supplied user_id never
// survives: anonymous submissions stay ownerless even when the payload claims
// an owner.
func TestSubmit_ClientOwnershipStripped(t *testing.T) {
	submissions := &fakeSubmissionStore{}
	app := newSubmissionTestApp(submissions, auth.NewIssuer("test-secret", time.Hour))

	resp, _ := submitRequest(t, app, "", map[string]interface{}{
		"teamName": "Impostors",
		"user_id":  "somebody-else",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, submissions.items, 1)
	_, hasOwner := submissions.items[0]["user_id"]
	assert.False(t, hasOwner)
}

// TestSubmit_InvalidTokenIsAnonymous verifies a bad bearer token downgrades
// to anonymous instead of rejecting the request.
func TestSubmit_InvalidTokenIsAnonymous(t *testing.T) {
	submissions := &fakeSubmissionStore{}
	app := newSubmissionTestApp(submissions, auth.NewIssuer("test-secret", time.Hour))

	resp, body := submitRequest(t, app, "not-a-valid-token", map[string]interface{}{"teamName": "Ghosts"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	require.Len(t, submissions.items, 1)
	_, hasOwner := submissions.items[0]["user_id"]
	assert.False(t, hasOwner)
}

func TestSubmit_EmptyBody(t *testing.T) {
	submissions := &fakeSubmissionStore{}
	app := newSubmissionTestApp(submissions, auth.NewIssuer("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, submissions.items, 1)
	assert.NotNil(t, submissions.items[0]["created_at"])
}

func TestSubmit_StoreFailure(t *testing.T) {
	submissions := &fakeSubmissionStore{fail: true}
	app := newSubmissionTestApp(submissions, auth.NewIssuer("test-secret", time.Hour))

	resp, body := submitRequest(t, app, "", map[string]interface{}{"teamName": "Doomed"})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["ok"])
}

func TestList_NewestFirst(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	submissions := &fakeSubmissionStore{}
	app := newSubmissionTestApp(submissions, issuer)

	submitRequest(t, app, "", map[string]interface{}{"teamName": "First"})
	submitRequest(t, app, "", map[string]interface{}{"teamName": "Second"})

	req := httptest.NewRequest(http.MethodGet, "/submissions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		OK          bool                     `json:"ok"`
		Submissions []map[string]interface{} `json:"submissions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Submissions, 2)
	assert.Equal(t, "Second", body.Submissions[0]["teamName"])
	assert.Equal(t, "First", body.Submissions[1]["teamName"])
}

// TestList_MineFilter verifies ?user=me restricts the listing to the caller
// and is silently ignored without a verified identity.
func TestList_MineFilter(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	submissions := &fakeSubmissionStore{}
	app := newSubmissionTestApp(submissions, issuer)

	token, err := issuer.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	submitRequest(t, app, token, map[string]interface{}{"teamName": "Mine"})
	submitRequest(t, app, "", map[string]interface{}{"teamName": "Theirs"})

	listBody := func(authToken string) []map[string]interface{} {
		req := httptest.NewRequest(http.MethodGet, "/submissions?user=me", nil)
		if authToken != "" {
			req.Header.Set("Authorization", "Bearer "+authToken)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		var body struct {
			Submissions []map[string]interface{} `json:"submissions"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body.Submissions
	}

	mine := listBody(token)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0]["teamName"])

	// Anonymous callers get the unfiltered listing.
	all := listBody("")
	assert.Len(t, all, 2)
}
