package generator

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shouni/go-tcg-asset-kit/pkg/domain"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path   string
	fields map[string]string
	body   map[string]any
	image  []byte
}

func newImagesServer(t *testing.T, payload map[string]any, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			captured.fields = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				captured.fields[k] = v[0]
			}
			if f, _, err := r.FormFile("image"); err == nil {
				captured.image, _ = io.ReadAll(f)
				f.Close()
			}
		} else {
			_ = json.NewDecoder(r.Body).Decode(&captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIBackend_Synthesize(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	captured := &capturedRequest{}
	srv := newImagesServer(t, map[string]any{
		"created": 1,
		"data":    []map[string]any{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
	}, captured)

	backend := NewOpenAIBackend("test-key", WithOpenAIRequestOptions(option.WithBaseURL(srv.URL+"/v1/")))
	res, err := backend.Synthesize(t.Context(), "a goblin", domain.DefaultCardRender())
	require.NoError(t, err)

	assert.Equal(t, png, res.Data)
	assert.Empty(t, res.URL)
	assert.Equal(t, "/v1/images/generations", captured.path)
	assert.Equal(t, "a goblin", captured.body["prompt"])
	assert.Equal(t, DefaultOpenAIModel, captured.body["model"])
	assert.Equal(t, "1024x1536", captured.body["size"])
	assert.Equal(t, "transparent", captured.body["background"])
	assert.Equal(t, "high", captured.body["quality"])
}

func TestOpenAIBackend_Edit(t *testing.T) {
	captured := &capturedRequest{}
	srv := newImagesServer(t, map[string]any{
		"created": 1,
		"data":    []map[string]any{{"url": "https://cdn.example.com/frame.png"}},
	}, captured)

	backend := NewOpenAIBackend("test-key",
		WithOpenAIEditModel("edit-model"),
		WithOpenAIRequestOptions(option.WithBaseURL(srv.URL+"/v1/")),
	)
	cfg := domain.RenderConfig{
		Size:       domain.SizePortrait,
		Background: domain.BackgroundTransparent,
		Quality:    domain.QualityAuto,
		Mode:       domain.ModeEdit,
		Reference:  "refs/ink-frame.png",
	}
	res, err := backend.Edit(t.Context(), "a spell frame", cfg, Reference{Path: "refs/ink-frame.png", Data: []byte("reference")})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/frame.png", res.URL)
	assert.Empty(t, res.Data)
	assert.Equal(t, "/v1/images/edits", captured.path)
	assert.Equal(t, "a spell frame", captured.fields["prompt"])
	assert.Equal(t, "edit-model", captured.fields["model"])
	assert.Equal(t, "auto", captured.fields["quality"])
	assert.Equal(t, []byte("reference"), captured.image)
}

func TestOpenAIBackend_EmptyResponse(t *testing.T) {
	srv := newImagesServer(t, map[string]any{"created": 1, "data": []any{}}, &capturedRequest{})

	backend := NewOpenAIBackend("test-key", WithOpenAIRequestOptions(option.WithBaseURL(srv.URL+"/v1/")))
	_, err := backend.Synthesize(t.Context(), "nothing", domain.DefaultCardRender())
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestOpenAIBackend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend("test-key", WithOpenAIRequestOptions(option.WithBaseURL(srv.URL+"/v1/")))
	_, err := backend.Synthesize(t.Context(), "blocked", domain.DefaultCardRender())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI")
}
