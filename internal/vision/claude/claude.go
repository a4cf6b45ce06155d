package claude

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"roofscope/internal/vision"
)

// Analyzer implements vision.Analyzer over the Anthropic Messages API. Claude
// follows the boxed-coordinate contract: boxes normalized to [0,1] with a
// 0-100 confidence per detection.
type Analyzer struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string, opts ...anthropic.ClientOption) *Analyzer {
	return &Analyzer{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, image []byte, mediaType string) (*vision.Result, error) {
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: 2000,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mediaType),
					image,
				)),
				anthropic.NewTextMessageContent(vision.BoxedPrompt),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	if string(resp.StopReason) == "refusal" {
		return nil, &vision.ContentRefusedError{Reason: "model declined to process the image"}
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return nil, fmt.Errorf("claude: %w", vision.ErrEmptyResponse)
	}

	return vision.ParseBoxedEnvelope(text)
}

// normaliseMIME maps media types onto the set the Anthropic API accepts
// (jpeg, png, gif, webp). Unknown types are coerced to jpeg as the most
// universally supported lossy fallback.
func normaliseMIME(mediaType string) string {
	switch mediaType {
	case "image/png", "image/gif", "image/webp":
		return mediaType
	default:
		return "image/jpeg"
	}
}
