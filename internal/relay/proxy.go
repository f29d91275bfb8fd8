package relay

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/twinterview/backend/internal/metrics"
	"github.com/twinterview/backend/internal/model/speech"
)

// Proxy bridges browser-originated PCM frames to the vendor's streaming
// transcription channel and relays partial/final transcript events back.
// The relay is an optimization: if the upstream dial fails the client falls
// back to batch transcription, and the turn proceeds without it.
type Proxy struct {
	config   *speech.SpeechConfig
	dialer   *websocket.Dialer
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
}

// realtimeConfig is the vendor handshake sent before any audio frame.
type realtimeConfig struct {
	Type       string `json:"type"`
	APIKey     string `json:"api_key"`
	ModelID    string `json:"model_id"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	Language   string `json:"language"`
}

// NewProxy creates a relay for the configured vendor endpoint.
func NewProxy(config *speech.SpeechConfig, m *metrics.Metrics, log *zap.SugaredLogger) *Proxy {
	return &Proxy{
		config: config,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		metrics: m,
		log:     log,
	}
}

// Handle upgrades the request and relays frames until either side closes.
// One bidirectional channel is established per recording attempt.
func (p *Proxy) Handle(w http.ResponseWriter, r *http.Request) {
	if p.config.APIKey == "" {
		http.Error(w, "realtime transcription not configured", http.StatusServiceUnavailable)
		return
	}

	client, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.log.Warnw("relay upgrade failed", "error", err)
		return
	}

	upstream, resp, err := p.dialer.DialContext(r.Context(), p.config.RealtimeURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		// Not a turn error: the client proceeds with batch transcription.
		p.metrics.RelayDialFailure.Inc()
		p.log.Warnw("relay upstream dial failed", "error", err)
		_ = client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "upstream unavailable"),
			time.Now().Add(time.Second))
		client.Close()
		return
	}

	if err := upstream.WriteJSON(realtimeConfig{
		Type:       "config",
		APIKey:     p.config.APIKey,
		ModelID:    p.config.RealtimeModel,
		Encoding:   "pcm_s16le",
		SampleRate: p.config.SampleRate,
		Language:   p.config.Language,
	}); err != nil {
		p.log.Warnw("relay config send failed", "error", err)
		upstream.Close()
		client.Close()
		return
	}

	p.metrics.RelaySessions.Inc()
	defer p.metrics.RelaySessions.Dec()
	p.log.Infow("relay channel open", "remote", r.RemoteAddr)

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			upstream.Close()
			client.Close()
		})
	}
	defer teardown()

	done := make(chan struct{}, 2)

	// Client -> upstream: PCM frames and the polite stop message, forwarded
	// verbatim in arrival order, no acknowledgement.
	go func() {
		defer func() { done <- struct{}{} }()
		for {
			msgType, data, err := client.ReadMessage()
			if err != nil {
				return
			}
			p.metrics.RelayFramesUp.Inc()
			if err := upstream.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}()

	// Upstream -> client: partial/final transcript events.
	go func() {
		defer func() { done <- struct{}{} }()
		for {
			msgType, data, err := upstream.ReadMessage()
			if err != nil {
				return
			}
			p.metrics.RelayEventsDown.Inc()
			if err := client.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}()

	<-done
	teardown()
	<-done
	p.log.Infow("relay channel closed", "remote", r.RemoteAddr)
}
