package voice

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/twinterview/backend/internal/relay"
	"github.com/twinterview/backend/internal/service/ai"
	"github.com/twinterview/backend/internal/service/speech"
	"github.com/twinterview/backend/internal/service/turn"
	"github.com/twinterview/backend/internal/store"
	"github.com/twinterview/backend/pkg/utils"

	modelspeech "github.com/twinterview/backend/internal/model/speech"
)

// maxRecordingBytes bounds the multipart recording upload.
const maxRecordingBytes = 16 << 20

// Handler serves the voice turn pipeline: the streamed-audio turn, the SSE
// turn, replay of persisted replies and the realtime transcription relay.
type Handler struct {
	turns       *turn.Orchestrator
	synthesizer speech.Synthesizer
	store       store.Store
	relay       *relay.Proxy
	log         *zap.SugaredLogger
}

// New creates the voice handler. relayProxy may be nil when realtime
// transcription is not configured.
func New(turns *turn.Orchestrator, synthesizer speech.Synthesizer, st store.Store, relayProxy *relay.Proxy, log *zap.SugaredLogger) *Handler {
	return &Handler{
		turns:       turns,
		synthesizer: synthesizer,
		store:       st,
		relay:       relayProxy,
		log:         log,
	}
}

// RegisterRoutes registers the full voice pipeline.
func (h *Handler) RegisterRoutes(r chi.Router) {
	h.RegisterTextRoutes(r)
	r.Post("/voice/turn-stream", h.handleTurnStream)
	r.Post("/voice/turn", h.handleTurnEvents)
	r.Get("/voice/stream", h.handleMessageAudio)

	if h.relay != nil {
		r.HandleFunc("/voice/realtime", h.relay.Handle)
	}
}

// RegisterTextRoutes registers the routes that work without a speech
// vendor, for deployments with model credentials only.
func (h *Handler) RegisterTextRoutes(r chi.Router) {
	r.Post("/answer", h.handleAnswer)
}

// turnUpload is the decoded multipart turn submission.
type turnUpload struct {
	sessionID  string
	audio      []byte
	format     string
	transcript string
}

func (h *Handler) decodeTurnUpload(r *http.Request) (turnUpload, error) {
	if err := r.ParseMultipartForm(maxRecordingBytes); err != nil {
		return turnUpload{}, errors.New("invalid multipart body")
	}

	upload := turnUpload{
		sessionID:  r.FormValue("session_id"),
		transcript: r.FormValue("transcript"),
		format:     "webm",
	}
	if upload.sessionID == "" {
		return turnUpload{}, errors.New("session_id is required")
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return turnUpload{}, errors.New("audio file is required")
	}
	defer file.Close()

	upload.audio, err = io.ReadAll(file)
	if err != nil {
		return turnUpload{}, errors.New("failed to read audio upload")
	}
	if ct := header.Header.Get("Content-Type"); ct == "audio/wav" || ct == "audio/x-wav" {
		upload.format = "wav"
	}
	return upload, nil
}

// handleTurnStream runs one voice turn and answers with a chunked audio/mpeg
// body. The resolved employer transcript travels in the X-User-Transcript
// header since the body is raw audio.
func (h *Handler) handleTurnStream(w http.ResponseWriter, r *http.Request) {
	upload, err := h.decodeTurnUpload(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	prepared, err := h.turns.Prepare(r.Context(), turn.Input{
		SessionID:          upload.sessionID,
		Audio:              upload.audio,
		AudioFormat:        upload.format,
		RealtimeTranscript: upload.transcript,
	})
	if err != nil {
		h.respondTurnError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	// Percent-encoded so non-ASCII transcripts survive the header.
	w.Header().Set("X-User-Transcript", url.PathEscape(prepared.Transcript))
	w.Header().Set("Access-Control-Expose-Headers", "X-User-Transcript")
	w.WriteHeader(http.StatusOK)

	// Status is committed; a failure past this point can only truncate the
	// audio body.
	if _, err := h.turns.StreamReply(r.Context(), prepared, w, flusher.Flush); err != nil {
		h.log.Errorw("voice turn stream aborted",
			"sessionId", upload.sessionID,
			"error", err,
		)
	}
}

// handleTurnEvents runs one voice turn as a server-sent event stream:
// transcript, text deltas, then done carrying the persisted twin message id
// so the client can fetch audio separately.
func (h *Handler) handleTurnEvents(w http.ResponseWriter, r *http.Request) {
	upload, err := h.decodeTurnUpload(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	prepared, err := h.turns.Prepare(r.Context(), turn.Input{
		SessionID:          upload.sessionID,
		Audio:              upload.audio,
		AudioFormat:        upload.format,
		RealtimeTranscript: upload.transcript,
		Channel:            ai.ChannelVoiceText,
	})
	if err != nil {
		h.respondTurnError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "transcript", map[string]string{
		"userTranscript": prepared.Transcript,
	})

	twinMessage, err := h.turns.StreamEvents(r.Context(), prepared, func(delta string) error {
		utils.SendSSEEvent(w, flusher, "text", map[string]string{"text": delta})
		return nil
	})
	if err != nil {
		h.log.Errorw("voice turn event stream failed",
			"sessionId", upload.sessionID,
			"error", err,
		)
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": "processing failed"})
		return
	}

	utils.SendSSEEvent(w, flusher, "done", map[string]string{
		"twinMessageId": twinMessage.ID,
		"answerText":    twinMessage.Text,
	})
}

// handleMessageAudio synthesizes a persisted twin reply and pipes the audio
// through as it arrives from the vendor.
func (h *Handler) handleMessageAudio(w http.ResponseWriter, r *http.Request) {
	messageID := r.URL.Query().Get("twinMessageId")
	if messageID == "" {
		utils.RespondError(w, http.StatusBadRequest, "twinMessageId query parameter is required")
		return
	}

	message, err := h.store.GetMessage(r.Context(), messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "message not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load message")
		return
	}

	session, err := h.store.GetSession(r.Context(), message.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	tw, err := h.store.GetTwin(r.Context(), session.TwinID)
	if err != nil || !tw.HasVoice() {
		utils.RespondError(w, http.StatusBadRequest, "twin voice not configured")
		return
	}

	audio, err := h.synthesizer.SynthesizeStream(r.Context(), &modelspeech.TTSRequest{
		SessionID: session.ID,
		Text:      message.Text,
		VoiceID:   tw.VoiceID,
	})
	if err != nil {
		h.log.Errorw("message audio synthesis failed", "messageId", messageID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "synthesis failed")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, readErr := audio.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			return
		}
	}
}

// handleAnswer is the text-turn path: same session rules, a complete reply
// instead of a stream.
func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID    string `json:"sessionId"`
		QuestionText string `json:"questionText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" || payload.QuestionText == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId and questionText are required")
		return
	}

	prepared, err := h.turns.PrepareText(r.Context(), payload.SessionID, payload.QuestionText)
	if err != nil {
		h.respondTurnError(w, err)
		return
	}

	twinMessage, err := h.turns.GenerateReply(r.Context(), prepared)
	if err != nil {
		h.log.Errorw("answer generation failed", "sessionId", payload.SessionID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"answer": twinMessage.Text})
}

func (h *Handler) respondTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, turn.ErrVoiceNotConfigured):
		utils.RespondError(w, http.StatusBadRequest, "voice not configured")
	case errors.Is(err, turn.ErrLimitReached):
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error":        "session limit reached",
			"limitReached": true,
		})
	case errors.Is(err, turn.ErrEmptyTranscript):
		utils.RespondError(w, http.StatusBadRequest, "empty transcript")
	case errors.Is(err, turn.ErrTranscriptionFailed):
		utils.RespondError(w, http.StatusInternalServerError, "transcription failed")
	default:
		h.log.Errorw("voice turn rejected", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "processing failed")
	}
}
