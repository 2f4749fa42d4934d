package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, refreshCount *int32, token string, expires int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/software_agents/api_token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		atomic.AddInt32(refreshCount, 1)

		w.WriteHeader(http.StatusCreated)
		resp := map[string]interface{}{
			"api_token":  token,
			"expires_on": expires,
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestLegacyTokenNeverRefreshes(t *testing.T) {
	var refreshCount int32
	server := newTokenServer(t, &refreshCount, "unused", 0)
	defer server.Close()

	ts := NewLegacyTokenSource("static-token")
	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "static-token", token)
	}
	assert.Equal(t, int32(0), refreshCount)
}

func TestTokenRefreshTiming(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := base.Add(600 * time.Second).Unix()

	var refreshCount int32
	server := newTokenServer(t, &refreshCount, "fresh-token", base.Add(2*time.Hour).Unix())
	defer server.Close()

	clock := clockwork.NewFakeClockAt(base)
	ts := NewTokenSource(server.URL, "agent", "user", 0)
	ts.clock = clock
	ts.SetState("cached-token", expires)

	// 600 seconds before expiry is outside the 5 minute skew window, so
	// the cached token is still good and no refresh happens.
	token, err := ts.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	assert.Equal(t, int32(0), refreshCount)

	// 200 seconds before expiry is within the skew window: exactly one
	// refresh call.
	clock.Advance(400 * time.Second)
	token, err = ts.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(1), refreshCount)
}

func TestTokenRefreshWhenNoTokenHeld(t *testing.T) {
	var refreshCount int32
	server := newTokenServer(t, &refreshCount, "first-token", time.Now().Add(time.Hour).Unix())
	defer server.Close()

	ts := NewTokenSource(server.URL, "agent", "user", 0)
	token, err := ts.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "first-token", token)
	assert.Equal(t, int32(1), refreshCount)

	// The fresh token is cached.
	_, err = ts.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(1), refreshCount)
}

func TestTokenRefreshSingleFlight(t *testing.T) {
	var refreshCount int32
	server := newTokenServer(t, &refreshCount, "fresh-token", time.Now().Add(time.Hour).Unix())
	defer server.Close()

	ts := NewTokenSource(server.URL, "agent", "user", 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := ts.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "fresh-token", token)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), refreshCount)
}

func TestTokenRefreshNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tests := []struct {
		name     string
		agentKey string
		expMsg   string
	}{
		{
			name:     "MissingSetup",
			agentKey: "",
			expMsg:   "Missing initial setup",
		},
		{
			name:     "AgentNotFound",
			agentKey: "agent",
			expMsg:   "was not found on the server",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ts := NewTokenSource(server.URL, test.agentKey, "user", 0)
			_, err := ts.Token(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expMsg)
		})
	}
}

func TestTokenRefreshServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	ts := NewTokenSource(server.URL, "agent", "user", 0)
	_, err := ts.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestTokenStateRoundTrip(t *testing.T) {
	ts := NewTokenSource("http://unused", "agent", "user", 0)
	ts.SetState("token", 12345)

	token, expires := ts.State()
	assert.Equal(t, "token", token)
	assert.Equal(t, int64(12345), expires)
}
