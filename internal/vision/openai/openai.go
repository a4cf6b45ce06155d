package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"roofscope/internal/vision"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// request types mirror the chat-completions API structure.
type request struct {
	Model          string          `json:"model"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Messages       []message       `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content []part `json:"content"`
}

type part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
			Refusal string  `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyzer implements vision.Analyzer against the OpenAI vision API. Boxes
// arrive already normalized to [0,1] and every detection carries a 0-100
// confidence.
type Analyzer struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func New(apiKey, model string) *Analyzer {
	return &Analyzer{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
		baseURL: defaultAPIURL,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, image []byte, mediaType string) (*vision.Result, error) {
	body := request{
		Model: a.model,
		// Detection lists for a busy site photo run a few hundred tokens;
		// 2000 leaves headroom for the analysis block.
		MaxTokens:      2000,
		ResponseFormat: &responseFormat{Type: "json_object"},
		Messages: []message{{
			Role: "user",
			Content: []part{
				{
					Type: "image_url",
					ImageURL: &imageURL{
						URL:    fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(image)),
						Detail: "high",
					},
				},
				{Type: "text", Text: vision.BoxedPrompt},
			},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call openai: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close openai response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody response
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(respBody.Choices) == 0 {
		return nil, fmt.Errorf("openai: %w", vision.ErrEmptyResponse)
	}

	msg := respBody.Choices[0].Message
	if msg.Content == nil || *msg.Content == "" {
		if msg.Refusal != "" {
			return nil, &vision.ContentRefusedError{Reason: msg.Refusal}
		}
		return nil, fmt.Errorf("openai: %w", vision.ErrEmptyResponse)
	}

	return vision.ParseBoxedEnvelope(*msg.Content)
}
