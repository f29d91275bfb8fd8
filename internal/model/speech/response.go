package speech

// STTResponse is the transcription result for a batch request. Text is the
// only field the pipeline relies on; a missing text field upstream is a
// hard failure before this struct is built.
type STTResponse struct {
	Text       string  `json:"text"`
	LanguageID string  `json:"language_code,omitempty"`
	Confidence float64 `json:"language_probability,omitempty"`
}

// Realtime transcript event types relayed back to the capture client.
// A partial updates the provisional transcript; a final commits it.
const (
	EventPartial = "partial"
	EventFinal   = "final"
)

// RealtimeEvent is one tagged message from the streaming STT channel.
type RealtimeEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
