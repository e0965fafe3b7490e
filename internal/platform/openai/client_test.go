package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

func okBody(text string) string {
	return `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":` +
		mustJSON(text) + `}]}],"usage":{"input_tokens":3,"output_tokens":4}}`
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestGenerateTextSendsPromptAndReadsOutput(t *testing.T) {
	var got responsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(okBody("[]")))
	}))
	defer srv.Close()

	temp := 0.2
	c, err := New(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "m", Temperature: &temp})
	require.NoError(t, err)

	text, err := c.GenerateText(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	require.Len(t, got.Input, 2)
	assert.Equal(t, "system", got.Input[0].Role)
	assert.Equal(t, "usr", got.Input[1].Content)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.2, *got.Temperature)
}

func TestGenerateTextDropsRejectedTemperature(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if atomic.AddInt32(&calls, 1) == 1 {
			assert.Contains(t, req, "temperature")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported parameter: 'temperature'"}}`))
			return
		}
		assert.NotContains(t, req, "temperature")
		_, _ = w.Write([]byte(okBody("ok")))
	}))
	defer srv.Close()

	temp := 0.2
	c, err := New(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "o-model", Temperature: &temp})
	require.NoError(t, err)

	text, err := c.GenerateText(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGenerateTextDoesNotRetryByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "s", "u")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGenerateTextEmptyOutputIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)
	_, err = c.GenerateText(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(logger.NewNop(), Config{})
	assert.Error(t, err)
}
