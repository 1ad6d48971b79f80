package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerCartSession = "X-Cart-Session"

// Envelope is the response wrapper of every API endpoint
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CartClient drives the API in-process as one shopper. The session id
// issued on the first response is reused for later calls.
type CartClient struct {
	t       *testing.T
	handler http.Handler
	Session string
}

// NewCartClient creates a client; session may be empty to let the server issue one
func NewCartClient(t *testing.T, handler http.Handler, session string) *CartClient {
	return &CartClient{t: t, handler: handler, Session: session}
}

// Do sends a request with an optional JSON body
func (c *CartClient) Do(method, path string, body any) (*httptest.ResponseRecorder, Envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session != "" {
		req.Header.Set(headerCartSession, c.Session)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	if issued := w.Header().Get(headerCartSession); issued != "" {
		c.Session = issued
	}

	var env Envelope
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse response: %s", w.Body.String())
	}
	return w, env
}

// DataAs decodes the data field of a successful response
func DataAs[T any](t *testing.T, env Envelope) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(env.Data, &result), "Failed to parse response data")
	return result
}

// AssertErrorCode asserts the response is an error with the given code
func AssertErrorCode(t *testing.T, env Envelope, expectedCode string) {
	t.Helper()

	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, expectedCode, env.Error.Code, "Unexpected error code")
}
