package dataservice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendExternal(t *testing.T) {
	var gotBody []byte
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/bucket/chunk-0", r.URL.Path)
		gotHeader = r.Header.Get("x-amz-meta-test")

		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := New("http://unused", nil, Options{})
	status, err := c.SendExternal(context.Background(), http.MethodPut, server.URL,
		"/bucket/chunk-0", map[string]string{"x-amz-meta-test": "yes"}, []byte("chunk bytes"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []byte("chunk bytes"), gotBody)
	assert.Equal(t, "yes", gotHeader)
}

func TestSendExternalRejectsVerb(t *testing.T) {
	c := New("http://unused", nil, Options{})
	_, err := c.SendExternal(context.Background(), http.MethodGet, "http://host", "/p", nil, nil)
	assert.Error(t, err)
}

func TestSendExternalReturnsFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := New("http://unused", nil, Options{})
	status, err := c.SendExternal(context.Background(), http.MethodPost, server.URL, "/p", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestReceiveExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		fmt.Fprint(w, "file contents")
	}))
	defer server.Close()

	c := New("http://unused", nil, Options{})
	body, err := c.ReceiveExternal(context.Background(), http.MethodGet, server.URL, "/file", nil)
	require.NoError(t, err)
	defer body.Close()

	contents, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(contents))
}

func TestReceiveExternalFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New("http://unused", nil, Options{})
	_, err := c.ReceiveExternal(context.Background(), http.MethodGet, server.URL, "/file", nil)
	assert.Error(t, err)
}

func TestReceiveExternalRejectsVerb(t *testing.T) {
	c := New("http://unused", nil, Options{})
	_, err := c.ReceiveExternal(context.Background(), http.MethodPost, "http://host", "/p", nil)
	assert.Error(t, err)
}
