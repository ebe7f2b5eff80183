package gemini_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/dvloznov/expense-bot/internal/extraction"
	"github.com/dvloznov/expense-bot/internal/extraction/gemini"
)

func newProvider(t *testing.T, srv *httptest.Server) *gemini.Provider {
	t.Helper()
	p, err := gemini.NewProvider(context.Background(), gemini.Config{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func testRequest() extraction.Request {
	return extraction.Request{
		Instruction: extraction.BuildInstruction(extraction.ExtractionSchema, "Asia/Ho_Chi_Minh"),
		Text:        "an sang 20k",
		Schema:      extraction.ExtractionSchema,
	}
}

func TestProvider_Generate(t *testing.T) {
	var gotPath, gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"amount\":20000}"}]}}]}`)
	}))
	defer srv.Close()

	text, err := newProvider(t, srv).Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, `{"amount":20000}`, text)
	assert.True(t, strings.HasSuffix(gotPath, "/models/gemini-test:generateContent"), "path = %s", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotBody, "an sang 20k")
	assert.Contains(t, gotBody, "application/json")
	assert.Contains(t, gotBody, "Asia/Ho_Chi_Minh")
}

func TestProvider_RateLimitMapsToStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	_, err := newProvider(t, srv).Generate(context.Background(), testRequest())
	require.Error(t, err)

	var se *extraction.StatusError
	require.True(t, errors.As(err, &se), "error = %v", err)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.True(t, extraction.IsRateLimited(err))
}

func TestProvider_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	text, err := newProvider(t, srv).Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := gemini.NewProvider(context.Background(), gemini.Config{Model: "m"})
	assert.Error(t, err)

	_, err = gemini.NewProvider(context.Background(), gemini.Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestResponseSchema(t *testing.T) {
	s := gemini.ResponseSchema(extraction.ExtractionSchema)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, extraction.ExtractionSchema.Required(), s.Required)
	assert.Equal(t, extraction.ExtractionSchema.Required(), s.PropertyOrdering)
	require.Contains(t, s.Properties, "amount")
	assert.Equal(t, genai.TypeNumber, s.Properties["amount"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["purpose"].Type)
	assert.NotEmpty(t, s.Properties["source"].Description)
}
