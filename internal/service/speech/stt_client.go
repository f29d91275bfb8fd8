package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/twinterview/backend/internal/model/speech"
)

// STTClient calls the vendor's batch speech-to-text endpoint. It accepts a
// multipart audio payload plus an acoustic model identifier and returns the
// transcribed text.
type STTClient struct {
	config *speech.SpeechConfig
	client *http.Client
}

// NewSTTClient creates a batch transcription client.
func NewSTTClient(config *speech.SpeechConfig) *STTClient {
	return &STTClient{
		config: config,
		client: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
	}
}

type sttResponse struct {
	Text                *string `json:"text"`
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
}

// Transcribe submits a finished recording. A non-success status or a
// response without a text field is a hard failure.
func (c *STTClient) Transcribe(ctx context.Context, req *speech.STTRequest) (*speech.STTResponse, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("speech API key not configured")
	}
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("audio payload is empty")
	}

	format := req.Format
	if format == "" {
		format = "wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model_id", c.config.STTModel); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}
	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/speech-to-text", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build STT request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.config.APIKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("STT request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("STT failed: %d %s", resp.StatusCode, detail)
	}

	var parsed sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode STT response: %w", err)
	}
	if parsed.Text == nil {
		return nil, fmt.Errorf("STT response missing text field")
	}

	return &speech.STTResponse{
		Text:       *parsed.Text,
		LanguageID: parsed.LanguageCode,
		Confidence: parsed.LanguageProbability,
	}, nil
}
