package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus instruments for the voice turn pipeline.
type Metrics struct {
	// Turn metrics
	TurnsStarted   prometheus.Counter
	TurnsCompleted prometheus.Counter
	TurnsFailed    prometheus.Counter
	LimitRejected  prometheus.Counter
	TurnDuration   prometheus.Histogram

	// Transcription metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	RealtimeTranscriptHits prometheus.Counter

	// Synthesis metrics
	SentencesSynthesized prometheus.Counter
	SynthesisFailures    prometheus.Counter
	AudioBytesEmitted    prometheus.Counter

	// Realtime relay metrics
	RelaySessions    prometheus.Gauge
	RelayFramesUp    prometheus.Counter
	RelayEventsDown  prometheus.Counter
	RelayDialFailure prometheus.Counter
}

// New creates and registers the pipeline metrics against the given
// registerer. Tests pass a fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TurnsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_turns_started_total",
			Help: "Total number of voice turns accepted for processing",
		}),
		TurnsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_turns_completed_total",
			Help: "Total number of voice turns fully streamed and persisted",
		}),
		TurnsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_turns_failed_total",
			Help: "Total number of voice turns that failed after acceptance",
		}),
		LimitRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_turns_limit_rejected_total",
			Help: "Total number of turns rejected by the per-session message cap",
		}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "twin_turn_duration_seconds",
			Help:    "Wall time from turn acceptance to final audio byte",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_transcription_requests_total",
			Help: "Total number of batch transcription calls issued",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_transcription_failures_total",
			Help: "Total number of failed batch transcription calls",
		}),
		RealtimeTranscriptHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_realtime_transcript_hits_total",
			Help: "Turns that reused a realtime transcript and skipped batch STT",
		}),
		SentencesSynthesized: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_sentences_synthesized_total",
			Help: "Total number of sentences submitted for speech synthesis",
		}),
		SynthesisFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_synthesis_failures_total",
			Help: "Total number of failed text-to-speech calls",
		}),
		AudioBytesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_audio_bytes_emitted_total",
			Help: "Total audio bytes streamed to clients",
		}),
		RelaySessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "twin_relay_sessions",
			Help: "Currently open realtime transcription relay channels",
		}),
		RelayFramesUp: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_relay_frames_forwarded_total",
			Help: "PCM frames forwarded upstream by the realtime relay",
		}),
		RelayEventsDown: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_relay_events_relayed_total",
			Help: "Transcript events relayed back to capture clients",
		}),
		RelayDialFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: "twin_relay_dial_failures_total",
			Help: "Failed dials to the upstream realtime transcription service",
		}),
	}
}
