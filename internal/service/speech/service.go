package speech

import (
	"context"
	"io"

	"github.com/twinterview/backend/internal/model/speech"
)

// Transcriber is the batch speech-to-text surface consumed by the turn
// orchestrator.
type Transcriber interface {
	Transcribe(ctx context.Context, req *speech.STTRequest) (*speech.STTResponse, error)
}

// Synthesizer is the streaming text-to-speech surface consumed by the turn
// orchestrator.
type Synthesizer interface {
	SynthesizeStream(ctx context.Context, req *speech.TTSRequest) (io.ReadCloser, error)
}

// Service bundles the vendor clients behind one constructor.
type Service struct {
	config *speech.SpeechConfig
	stt    *STTClient
	tts    *TTSClient
}

// NewService creates the speech service from shared vendor configuration.
func NewService(config *speech.SpeechConfig) *Service {
	return &Service{
		config: config,
		stt:    NewSTTClient(config),
		tts:    NewTTSClient(config),
	}
}

// Transcribe performs batch transcription of a finished recording.
func (s *Service) Transcribe(ctx context.Context, req *speech.STTRequest) (*speech.STTResponse, error) {
	return s.stt.Transcribe(ctx, req)
}

// SynthesizeStream starts streaming synthesis for one piece of text.
func (s *Service) SynthesizeStream(ctx context.Context, req *speech.TTSRequest) (io.ReadCloser, error) {
	return s.tts.SynthesizeStream(ctx, req)
}
