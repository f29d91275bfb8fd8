package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/twinterview/backend/internal/model/speech"
)

// TTSClient calls the vendor's streaming text-to-speech endpoint. The
// response body is a chunked audio byte stream that begins before synthesis
// of the whole text has finished.
type TTSClient struct {
	config *speech.SpeechConfig
	client *http.Client
}

// NewTTSClient creates a streaming synthesis client. The HTTP client
// carries no overall timeout: the stream lives as long as the synthesis.
func NewTTSClient(config *speech.SpeechConfig) *TTSClient {
	return &TTSClient{
		config: config,
		client: &http.Client{Timeout: 0},
	}
}

type ttsRequestBody struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	OutputFormat string `json:"output_format"`
}

// SynthesizeStream starts synthesis for one piece of text and returns the
// audio stream. The caller owns the returned ReadCloser. A non-success
// status is a hard failure.
func (c *TTSClient) SynthesizeStream(ctx context.Context, req *speech.TTSRequest) (io.ReadCloser, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("speech API key not configured")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("TTS text is empty")
	}
	if req.VoiceID == "" {
		return nil, fmt.Errorf("TTS voice is not set")
	}

	payload, err := json.Marshal(ttsRequestBody{
		Text:         req.Text,
		ModelID:      c.config.TTSModel,
		OutputFormat: c.config.TTSOutputFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode TTS request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream", c.config.BaseURL, req.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build TTS request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("TTS failed: %d %s", resp.StatusCode, detail)
	}

	return resp.Body, nil
}
