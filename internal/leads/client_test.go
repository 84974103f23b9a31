package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "madsag-engine/internal/common/errors"
	"madsag-engine/internal/common/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(baseURL, "test-token", 5*time.Second, logger.NewTestLogger(t))
}

func asStandardError(t *testing.T, err error) *stderrors.StandardError {
	t.Helper()
	require.Error(t, err)
	se, ok := err.(*stderrors.StandardError)
	require.True(t, ok, "expected *StandardError, got %T", err)
	return se
}

func TestSubmit_Success(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/leads", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"id":42,"attributes":{}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	submission, err := client.Submit(context.Background(), validRecord())

	require.NoError(t, err)
	assert.Equal(t, int64(42), submission.ID)

	data, ok := captured["data"].(map[string]interface{})
	require.True(t, ok, "payload must be wrapped in a data envelope")
	assert.Equal(t, "John Doe", data["FullName"])
	assert.Equal(t, "john.doe@example.com", data["email"])
	assert.NotContains(t, data, "budget")
	assert.NotContains(t, data, "url")
}

func TestSubmit_ClientValidationStopsBeforeNetwork(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	record := validRecord()
	record.Email = "not-an-email"

	client := newTestClient(t, server.URL)
	_, err := client.Submit(context.Background(), record)

	se := asStandardError(t, err)
	assert.Equal(t, stderrors.ErrCodeLeadValidationFailed, se.Code)
	assert.NotEmpty(t, se.FieldErrors)
	assert.Zero(t, requests, "invalid record must never reach the backend")
}

func TestSubmit_BackendValidationSurfacesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"status":400,"name":"ValidationError","message":"email must be a valid email","details":{"errors":[{"path":["email"],"message":"email must be a valid email"}]}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Submit(context.Background(), validRecord())

	se := asStandardError(t, err)
	assert.Equal(t, stderrors.ErrCodeBackendValidationFailed, se.Code)
	assert.Equal(t, "email must be a valid email", se.UserMessage)
	require.Len(t, se.FieldErrors, 1)
	assert.Equal(t, "email", se.FieldErrors[0].Path)
	assert.False(t, se.Retryable)
}

func TestSubmit_PermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":403,"name":"ForbiddenError","message":"Forbidden"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Submit(context.Background(), validRecord())

	se := asStandardError(t, err)
	assert.Equal(t, stderrors.ErrCodePermissionDenied, se.Code)
	assert.Contains(t, se.UserMessage, "role permissions")
	assert.False(t, se.Retryable)
}

func TestSubmit_ServerFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"status":500,"name":"InternalServerError","message":"Internal Server Error"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Submit(context.Background(), validRecord())

	se := asStandardError(t, err)
	assert.Equal(t, stderrors.ErrCodeServerFault, se.Code)
	assert.Contains(t, se.Details, "500")
	// Retryable marks the failure as transient, not as auto-retried.
	assert.True(t, se.Retryable)
}

func TestSubmit_NetworkUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(t, server.URL)
	_, err := client.Submit(context.Background(), validRecord())

	se := asStandardError(t, err)
	assert.Equal(t, stderrors.ErrCodeNetworkUnreachable, se.Code)
	assert.NotEmpty(t, se.Details)
}

func TestSubmit_TaxonomyMessagesAreDistinct(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"backend validation": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"bad fields"}}`))
		},
		"permission denied": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
		"server fault": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	seen := map[string]bool{}
	for name, handler := range handlers {
		server := httptest.NewServer(handler)
		client := newTestClient(t, server.URL)
		_, err := client.Submit(context.Background(), validRecord())
		server.Close()

		se := asStandardError(t, err)
		assert.False(t, seen[se.UserMessage], "%s reuses another failure's message", name)
		seen[se.UserMessage] = true
	}
}
