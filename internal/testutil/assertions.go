package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONData decodes the envelope's data field into v and verifies
// the success flag.
func AssertJSONData(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var envelope struct {
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
		Success    bool            `json:"success"`
	}
	err = json.Unmarshal(body, &envelope)
	require.NoError(t, err, "failed to unmarshal envelope: %s", string(body))
	require.True(t, envelope.Success, "expected success envelope: %s", string(body))

	if v != nil {
		err = json.Unmarshal(envelope.Data, v)
		require.NoError(t, err, "failed to unmarshal data: %s", string(envelope.Data))
	}
}

// AssertErrorEnvelope verifies a failure envelope's status and message.
func AssertErrorEnvelope(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	var envelope struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Success    bool   `json:"success"`
	}
	err = json.Unmarshal(body, &envelope)
	require.NoError(t, err, "failed to unmarshal envelope: %s", string(body))

	assert.False(t, envelope.Success, "expected failure envelope")
	assert.Equal(t, expectedStatus, envelope.StatusCode)
	assert.Contains(t, envelope.Message, expectedMessage, "error message mismatch")
}

// AssertCookie verifies a Set-Cookie header with the given name exists
// and is httpOnly and secure; returns its value.
func AssertCookie(t *testing.T, resp *http.Response, name string) string {
	t.Helper()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			assert.True(t, cookie.HttpOnly, "cookie %s must be httpOnly", name)
			assert.True(t, cookie.Secure, "cookie %s must be secure", name)
			return cookie.Value
		}
	}

	t.Fatalf("cookie %s not set", name)
	return ""
}
