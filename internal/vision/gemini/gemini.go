package gemini

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

const defaultAPIURL = "https://generativelanguage.googleapis.com/v1beta"

// boxScale is the integer grid the provider reports box_2d coordinates on.
const boxScale = 1000

// request types mirror the generateContent API structure.
type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// wire shapes for the model's JSON reply. box_2d is [ymin, xmin, ymax, xmax]
// on a 0-1000 grid; there is no per-detection confidence in this variant.
type envelope struct {
	Detections []detection     `json:"detections"`
	Analysis   json.RawMessage `json:"analysis"`
}

type detection struct {
	Box2D    []float64 `json:"box_2d"`
	Label    string    `json:"label"`
	Category string    `json:"category"`
	Count    *int      `json:"count"`

	VolumeEstimate   *float64 `json:"volumeEstimate"`
	VolumeUnit       string   `json:"volumeUnit"`
	VolumeConfidence string   `json:"volumeConfidence"`
	VolumeReference  string   `json:"volumeReference"`
	VolumeNotes      string   `json:"volumeNotes"`
}

// Analyzer implements vision.Analyzer against the Gemini generateContent API.
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
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: mediaType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
				{Text: vision.GridPrompt},
			},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", a.baseURL, a.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gemini: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close gemini response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody response
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if respBody.PromptFeedback.BlockReason != "" {
		return nil, &vision.ContentRefusedError{Reason: respBody.PromptFeedback.BlockReason}
	}
	if len(respBody.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: %w", vision.ErrEmptyResponse)
	}

	candidate := respBody.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, &vision.ContentRefusedError{Reason: "candidate blocked for safety"}
	}

	var text string
	for _, p := range candidate.Content.Parts {
		if p.Text != "" {
			text = p.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("gemini: %w", vision.ErrEmptyResponse)
	}

	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, &vision.MalformedResponseError{Err: err}
	}

	return vision.NormalizeEnvelope(convertEnvelope(env)), nil
}

// convertEnvelope rewrites the grid-coordinate wire shape into the shared
// boxed envelope: left=xmin/1000, top=ymin/1000, width=(xmax-xmin)/1000,
// height=(ymax-ymin)/1000. Confidence is never populated for this variant.
func convertEnvelope(env envelope) vision.Envelope {
	out := vision.Envelope{Analysis: env.Analysis}
	for _, det := range env.Detections {
		raw := vision.RawDetection{
			Label:            det.Label,
			Category:         det.Category,
			Count:            det.Count,
			VolumeEstimate:   det.VolumeEstimate,
			VolumeUnit:       det.VolumeUnit,
			VolumeConfidence: det.VolumeConfidence,
			VolumeReference:  det.VolumeReference,
			VolumeNotes:      det.VolumeNotes,
		}
		if len(det.Box2D) == 4 {
			ymin, xmin, ymax, xmax := det.Box2D[0], det.Box2D[1], det.Box2D[2], det.Box2D[3]
			raw.BoundingBox = &vision.RawBox{
				Left:   xmin / boxScale,
				Top:    ymin / boxScale,
				Width:  (xmax - xmin) / boxScale,
				Height: (ymax - ymin) / boxScale,
			}
		}
		out.Detections = append(out.Detections, raw)
	}
	return out
}
