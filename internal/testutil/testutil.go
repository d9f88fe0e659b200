// Package testutil holds HTTP helpers shared by handler and router tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

// NewRequest creates a test request. A string or []byte body is sent as is,
// any other non-nil body is encoded as JSON.
func NewRequest(t testing.TB, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		if b != "" {
			reader = bytes.NewBufferString(b)
		}
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := jsoniter.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, target, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// Do serves one request against h and returns the recorded response.
func Do(t testing.TB, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, NewRequest(t, method, target, body))
	return w
}

func DecodeBody[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// Message returns the "message" field of a JSON reply.
func Message(t testing.TB, w *httptest.ResponseRecorder) string {
	t.Helper()
	return DecodeBody[map[string]string](t, w)["message"]
}
