package turn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/twinterview/backend/internal/metrics"
	"github.com/twinterview/backend/internal/model/chat"
	modelspeech "github.com/twinterview/backend/internal/model/speech"
	"github.com/twinterview/backend/internal/model/twin"
	"github.com/twinterview/backend/internal/service/ai"
	"github.com/twinterview/backend/internal/service/speech"
	"github.com/twinterview/backend/internal/store"
)

// MaxEmployerMessages caps how many questions an employer may ask in one
// session. The check is read-then-insert; a concurrent burst can land a
// message or two over the cap, which is acceptable for this limit.
const MaxEmployerMessages = 10

var (
	// ErrLimitReached means the session hit the employer message cap.
	ErrLimitReached = errors.New("message limit reached for this session")
	// ErrVoiceNotConfigured means the twin has no voice and cannot speak.
	ErrVoiceNotConfigured = errors.New("twin voice not configured")
	// ErrEmptyTranscript means the utterance resolved to silence.
	ErrEmptyTranscript = errors.New("no speech detected in recording")
	// ErrTranscriptionFailed wraps vendor transcription errors.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// ChatStreamer is the slice of the AI service the orchestrator consumes.
type ChatStreamer interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
	Stream(ctx context.Context, systemPrompt, userMessage string) (*schema.StreamReader[*schema.Message], error)
}

// Orchestrator runs one conversational turn end to end: resolve the
// employer's utterance, persist it, stream the twin's reply and persist
// that too once delivery finished.
type Orchestrator struct {
	store       store.Store
	ai          ChatStreamer
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	metrics     *metrics.Metrics
	log         *zap.SugaredLogger
}

// NewOrchestrator wires the turn pipeline.
func NewOrchestrator(
	st store.Store,
	streamer ChatStreamer,
	transcriber speech.Transcriber,
	synthesizer speech.Synthesizer,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *Orchestrator {
	return &Orchestrator{
		store:       st,
		ai:          streamer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		metrics:     m,
		log:         log,
	}
}

// Input is one recorded employer turn.
type Input struct {
	SessionID string
	// Audio is the finished recording, encoded per AudioFormat.
	Audio       []byte
	AudioFormat string
	// RealtimeTranscript, when non-blank, is used verbatim (trimmed) and
	// batch transcription is skipped entirely.
	RealtimeTranscript string
	// Channel picks the persona prompt variant. Empty means ChannelVoice.
	Channel ai.Channel
}

// Prepared is an accepted turn: the employer message is already persisted
// and the persona prompt is built. Streaming the reply is a separate step
// so handlers can write the transcript header before the body starts.
type Prepared struct {
	Session         chat.Session
	Twin            twin.Twin
	Transcript      string
	EmployerMessage chat.Message

	systemPrompt string
}

// Prepare validates and accepts one voice turn. Order matters: the voice
// check and message cap run before any transcription, and nothing is
// persisted until the transcript is known to be non-empty.
func (o *Orchestrator) Prepare(ctx context.Context, input Input) (*Prepared, error) {
	channel := input.Channel
	if channel == "" {
		channel = ai.ChannelVoice
	}

	sctx, err := o.loadSession(ctx, input.SessionID, channel)
	if err != nil {
		return nil, err
	}

	transcript, err := o.resolveTranscript(ctx, input)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}

	return o.accept(ctx, sctx, transcript)
}

// PrepareText accepts one typed employer question under the same session
// rules as a voice turn, minus the voice requirement.
func (o *Orchestrator) PrepareText(ctx context.Context, sessionID, question string) (*Prepared, error) {
	sctx, err := o.loadSession(ctx, sessionID, ai.ChannelText)
	if err != nil {
		return nil, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyTranscript
	}

	return o.accept(ctx, sctx, question)
}

type sessionContext struct {
	session chat.Session
	twin    twin.Twin
	answers []twin.Answer
	channel ai.Channel
}

func (o *Orchestrator) loadSession(ctx context.Context, sessionID string, channel ai.Channel) (*sessionContext, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tw, err := o.store.GetTwin(ctx, session.TwinID)
	if err != nil {
		return nil, fmt.Errorf("failed to load twin for session: %w", err)
	}
	if channel != ai.ChannelText && !tw.HasVoice() {
		return nil, ErrVoiceNotConfigured
	}

	count, err := o.store.CountMessagesBySender(ctx, sessionID, chat.SenderEmployer)
	if err != nil {
		return nil, fmt.Errorf("failed to count session messages: %w", err)
	}
	if count >= MaxEmployerMessages {
		o.metrics.LimitRejected.Inc()
		return nil, ErrLimitReached
	}

	answers, err := o.store.ListAnswers(ctx, tw.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load twin answers: %w", err)
	}

	return &sessionContext{session: session, twin: tw, answers: answers, channel: channel}, nil
}

func (o *Orchestrator) resolveTranscript(ctx context.Context, input Input) (string, error) {
	if realtime := strings.TrimSpace(input.RealtimeTranscript); realtime != "" {
		o.metrics.RealtimeTranscriptHits.Inc()
		return realtime, nil
	}

	o.metrics.TranscriptionRequests.Inc()
	resp, err := o.transcriber.Transcribe(ctx, &modelspeech.STTRequest{
		SessionID: input.SessionID,
		Audio:     input.Audio,
		Format:    input.AudioFormat,
	})
	if err != nil {
		o.metrics.TranscriptionFailures.Inc()
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (o *Orchestrator) accept(ctx context.Context, sctx *sessionContext, transcript string) (*Prepared, error) {
	employerMessage, err := o.store.SaveMessage(ctx, chat.Message{
		SessionID: sctx.session.ID,
		Sender:    chat.SenderEmployer,
		Text:      transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save employer message: %w", err)
	}

	return &Prepared{
		Session:         sctx.session,
		Twin:            sctx.twin,
		Transcript:      transcript,
		EmployerMessage: employerMessage,
		systemPrompt:    ai.BuildPersonaPrompt(sctx.twin, sctx.answers, sctx.channel),
	}, nil
}

// StreamReply generates the twin's answer and streams synthesized audio to
// out. Sentences are synthesized as soon as the model completes them,
// possibly several in flight, but their audio is emitted strictly in
// sentence order. The twin message is persisted only after the last audio
// byte went out; it is returned so callers can expose its identifier.
func (o *Orchestrator) StreamReply(ctx context.Context, prepared *Prepared, out io.Writer, flush func()) (chat.Message, error) {
	o.metrics.TurnsStarted.Inc()
	started := time.Now()

	stream, err := o.ai.Stream(ctx, prepared.systemPrompt, prepared.Transcript)
	if err != nil {
		o.metrics.TurnsFailed.Inc()
		return chat.Message{}, fmt.Errorf("failed to start reply stream: %w", err)
	}
	defer stream.Close()

	queue := newEmitQueue(out, flush)
	processed := make(map[string]struct{})

	var fullAnswer, tokenBuffer strings.Builder

	var streamErr error
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			streamErr = fmt.Errorf("reply stream failed: %w", recvErr)
			break
		}
		if chunk == nil {
			continue
		}

		fullAnswer.WriteString(chunk.Content)
		tokenBuffer.WriteString(chunk.Content)

		sentences, remaining := ExtractSentences(tokenBuffer.String())
		tokenBuffer.Reset()
		tokenBuffer.WriteString(remaining)

		for _, sentence := range sentences {
			o.submitSentence(ctx, queue, prepared.Twin.VoiceID, sentence, processed)
		}
	}
	buffered := strings.TrimSpace(tokenBuffer.String())
	if streamErr == nil && buffered != "" {
		o.submitSentence(ctx, queue, prepared.Twin.VoiceID, buffered, processed)
	}

	written, emitErr := queue.wait()
	o.metrics.AudioBytesEmitted.Add(float64(written))

	if streamErr != nil {
		o.metrics.TurnsFailed.Inc()
		return chat.Message{}, streamErr
	}
	if emitErr != nil {
		o.metrics.TurnsFailed.Inc()
		return chat.Message{}, fmt.Errorf("failed to emit reply audio: %w", emitErr)
	}

	twinMessage, err := o.store.SaveMessage(ctx, chat.Message{
		SessionID: prepared.Session.ID,
		Sender:    chat.SenderTwin,
		Text:      fullAnswer.String(),
	})
	if err != nil {
		o.metrics.TurnsFailed.Inc()
		return chat.Message{}, fmt.Errorf("failed to save twin message: %w", err)
	}

	o.metrics.TurnsCompleted.Inc()
	o.metrics.TurnDuration.Observe(time.Since(started).Seconds())
	o.log.Infow("voice turn completed",
		"sessionId", prepared.Session.ID,
		"audioBytes", written,
		"duration", time.Since(started),
	)
	return twinMessage, nil
}

func (o *Orchestrator) submitSentence(ctx context.Context, queue *emitQueue, voiceID, sentence string, processed map[string]struct{}) {
	if _, seen := processed[sentence]; seen {
		return
	}
	processed[sentence] = struct{}{}

	o.metrics.SentencesSynthesized.Inc()
	queue.submit(ctx, func(ctx context.Context) (io.ReadCloser, error) {
		stream, err := o.synthesizer.SynthesizeStream(ctx, &modelspeech.TTSRequest{
			Text:    sentence,
			VoiceID: voiceID,
		})
		if err != nil {
			o.metrics.SynthesisFailures.Inc()
			return nil, fmt.Errorf("failed to synthesize sentence: %w", err)
		}
		return stream, nil
	})
}

// StreamEvents generates the twin's answer as server-sent text deltas via
// emit instead of audio. The twin message is persisted once the stream is
// exhausted and returned for the terminal event.
func (o *Orchestrator) StreamEvents(ctx context.Context, prepared *Prepared, emit func(delta string) error) (chat.Message, error) {
	stream, err := o.ai.Stream(ctx, prepared.systemPrompt, prepared.Transcript)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to start reply stream: %w", err)
	}
	defer stream.Close()

	var fullAnswer strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return chat.Message{}, fmt.Errorf("reply stream failed: %w", recvErr)
		}
		if chunk == nil {
			continue
		}
		fullAnswer.WriteString(chunk.Content)
		if chunk.Content != "" {
			if err := emit(chunk.Content); err != nil {
				return chat.Message{}, err
			}
		}
	}

	twinMessage, err := o.store.SaveMessage(ctx, chat.Message{
		SessionID: prepared.Session.ID,
		Sender:    chat.SenderTwin,
		Text:      fullAnswer.String(),
	})
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to save twin message: %w", err)
	}
	return twinMessage, nil
}

// GenerateReply produces a complete, non-streamed reply and persists it.
func (o *Orchestrator) GenerateReply(ctx context.Context, prepared *Prepared) (chat.Message, error) {
	answer, err := o.ai.Generate(ctx, prepared.systemPrompt, prepared.Transcript)
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to generate reply: %w", err)
	}

	twinMessage, err := o.store.SaveMessage(ctx, chat.Message{
		SessionID: prepared.Session.ID,
		Sender:    chat.SenderTwin,
		Text:      answer,
	})
	if err != nil {
		return chat.Message{}, fmt.Errorf("failed to save twin message: %w", err)
	}
	return twinMessage, nil
}
