package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofscope/internal/domain"
	"roofscope/internal/vision"
)

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *Analyzer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New("sk-test", "claude-3-5-sonnet-latest", anthropic.WithBaseURL(server.URL+"/v1"))
}

func messagesResponse(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-3-5-sonnet-latest",
		"stop_reason": stopReason,
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	}
}

func TestAnalyze(t *testing.T) {
	envelope := `{
		"detections": [
			{"label": "Missing shingles", "category": "damage", "confidence": 82,
			 "boundingBox": {"left": 0.1, "top": 0.2, "width": 0.3, "height": 0.25}}
		],
		"analysis": {"damageAssessment": {"severity": "severe"}}
	}`

	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messagesResponse(envelope, "end_turn"))
	})

	result, err := analyzer.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	require.Len(t, result.Detections, 1)

	d := result.Detections[0]
	assert.Equal(t, "Missing shingles", d.Label)
	assert.Equal(t, domain.CategoryDamage, d.Category)
	require.NotNil(t, d.Confidence)
	assert.Equal(t, 82.0, *d.Confidence)

	da, ok := result.Summary.DamageAssessment()
	require.True(t, ok)
	assert.Equal(t, "severe", da.Severity)
}

func TestAnalyzeEmptyText(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messagesResponse("", "end_turn"))
	})

	_, err := analyzer.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	assert.ErrorIs(t, err, vision.ErrEmptyResponse)
}

func TestAnalyzeRefusal(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messagesResponse("", "refusal"))
	})

	_, err := analyzer.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	var refused *vision.ContentRefusedError
	assert.ErrorAs(t, err, &refused)
}

func TestAnalyzeMalformedEnvelope(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messagesResponse("I see a roof with some damage.", "end_turn"))
	})

	_, err := analyzer.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	var malformed *vision.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/webp", normaliseMIME("image/webp"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/tiff"))
}
