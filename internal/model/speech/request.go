package speech

// STTRequest is a finished recording submitted for batch transcription.
type STTRequest struct {
	SessionID string
	Audio     []byte
	Format    string
	Language  string
}

// TTSRequest asks for synthesis of one piece of text in a given voice.
type TTSRequest struct {
	SessionID string
	Text      string
	VoiceID   string
	Format    string
}
