package speech_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	speechmodel "github.com/twinterview/backend/internal/model/speech"
	speechsvc "github.com/twinterview/backend/internal/service/speech"
)

func testConfig(baseURL string) *speechmodel.SpeechConfig {
	return &speechmodel.SpeechConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		STTModel:        "scribe_v1",
		TTSModel:        "eleven_flash_v2_5",
		TTSOutputFormat: "mp3_44100_64",
		Language:        "en",
		SampleRate:      16000,
		Timeout:         5,
	}
}

func TestTranscribeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech-to-text" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("missing API key header")
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("multipart parse failed: %v", err)
		}
		if got := r.FormValue("model_id"); got != "scribe_v1" {
			t.Errorf("unexpected model_id: %s", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"tell me about your last project","language_code":"en"}`))
	}))
	defer server.Close()

	client := speechsvc.NewSTTClient(testConfig(server.URL))
	resp, err := client.Transcribe(context.Background(), &speechmodel.STTRequest{Audio: []byte("fake-audio"), Format: "webm"})
	if err != nil {
		t.Fatalf("Transcribe err: %v", err)
	}
	if resp.Text != "tell me about your last project" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestTranscribeNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := speechsvc.NewSTTClient(testConfig(server.URL))
	if _, err := client.Transcribe(context.Background(), &speechmodel.STTRequest{Audio: []byte("x")}); err == nil {
		t.Fatal("expected error for non-success status")
	}
}

func TestTranscribeMissingTextField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language_code":"en"}`))
	}))
	defer server.Close()

	client := speechsvc.NewSTTClient(testConfig(server.URL))
	if _, err := client.Transcribe(context.Background(), &speechmodel.STTRequest{Audio: []byte("x")}); err == nil {
		t.Fatal("expected error for missing text field")
	}
}

func TestTranscribeRequiresKeyAndAudio(t *testing.T) {
	cfg := testConfig("http://example.invalid")
	cfg.APIKey = ""
	client := speechsvc.NewSTTClient(cfg)
	if _, err := client.Transcribe(context.Background(), &speechmodel.STTRequest{Audio: []byte("x")}); err == nil {
		t.Fatal("expected error without API key")
	}

	client = speechsvc.NewSTTClient(testConfig("http://example.invalid"))
	if _, err := client.Transcribe(context.Background(), &speechmodel.STTRequest{}); err == nil {
		t.Fatal("expected error for empty audio")
	}
}
