package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "token": "tok-1"})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	token, err := api.Login(context.Background(), "a@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

// TestAPI_LoginFailure verifies the server's error message surfaces to the
// caller.
func TestAPI_LoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": "Invalid credentials"})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	_, err := api.Login(context.Background(), "a@example.com", "wrong")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestAPI_SubmitSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Heapsters", payload["teamName"])

		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "id": "sub-1"})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	id, err := api.Submit(context.Background(), "tok-1", map[string]interface{}{"teamName": "Heapsters"})

	require.NoError(t, err)
	assert.Equal(t, "sub-1", id)
}

func TestAPI_SubmissionsMineFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "me", r.URL.Query().Get("user"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"submissions": []map[string]interface{}{
				{"teamName": "Heapsters", "score": 18.5},
			},
		})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	items, err := api.Submissions(context.Background(), "tok-1", true)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Heapsters", items[0]["teamName"])
}
