package speech

// SpeechConfig carries the ElevenLabs credentials and model selections
// shared by the batch STT, streaming TTS and realtime STT clients.
type SpeechConfig struct {
	APIKey          string
	BaseURL         string
	RealtimeURL     string
	STTModel        string
	RealtimeModel   string
	TTSModel        string
	TTSOutputFormat string
	Language        string
	SampleRate      int
	Timeout         int
	Enabled         bool
}
