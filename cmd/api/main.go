package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/twinterview/backend/internal/config"
	"github.com/twinterview/backend/internal/handler"
	"github.com/twinterview/backend/internal/logging"
	"github.com/twinterview/backend/internal/metrics"
	modelspeech "github.com/twinterview/backend/internal/model/speech"
	"github.com/twinterview/backend/internal/model/twin"
	"github.com/twinterview/backend/internal/relay"
	"github.com/twinterview/backend/internal/service/ai"
	"github.com/twinterview/backend/internal/service/speech"
	"github.com/twinterview/backend/internal/service/turn"
	"github.com/twinterview/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Init()
	log := logging.Sugar()
	defer func() { _ = log.Sync() }()

	if err := godotenv.Load(); err != nil {
		log.Infow("no .env file loaded, using system environment only", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	st, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.Fatalw("failed to open store", "error", err)
	}
	defer closeStore()

	m := metrics.New(prometheus.DefaultRegisterer)

	var speechSvc *speech.Service
	var relayProxy *relay.Proxy
	if cfg.Speech.Enabled {
		speechConfig := &modelspeech.SpeechConfig{
			APIKey:          cfg.Speech.APIKey,
			BaseURL:         cfg.Speech.BaseURL,
			RealtimeURL:     cfg.Speech.RealtimeURL,
			STTModel:        cfg.Speech.STTModel,
			RealtimeModel:   cfg.Speech.RealtimeModel,
			TTSModel:        cfg.Speech.TTSModel,
			TTSOutputFormat: cfg.Speech.TTSOutputFormat,
			Language:        cfg.Speech.Language,
			SampleRate:      cfg.Speech.SampleRate,
			Timeout:         cfg.Speech.Timeout,
			Enabled:         cfg.Speech.Enabled,
		}
		speechSvc = speech.NewService(speechConfig)
		relayProxy = relay.NewProxy(speechConfig, m, log)
		log.Info("speech service initialized")
	} else {
		log.Info("speech credentials not configured, voice turns disabled")
	}

	var turns *turn.Orchestrator
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Warnw("failed to initialize AI service, continuing without it", "error", err)
		} else {
			var transcriber speech.Transcriber
			var synthesizer speech.Synthesizer
			if speechSvc != nil {
				transcriber, synthesizer = speechSvc, speechSvc
			}
			turns = turn.NewOrchestrator(st, aiSvc, transcriber, synthesizer, m, log)
			log.Info("AI service initialized")
		}
	} else {
		log.Info("model credentials not configured, skipping AI initialization")
	}

	router := handler.NewRouter(st, turns, speechSvc, relayProxy, prometheus.DefaultGatherer, log)

	startServer(ctx, cfg.Server, router, log)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.SugaredLogger) (store.Store, func(), error) {
	if cfg.URL == "" {
		log.Info("DATABASE_URL not set, using in-memory store with demo data")
		return seedDemoStore(), func() {}, nil
	}

	pg, err := store.NewPostgresStore(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	log.Info("postgres store ready")
	return pg, pg.Close, nil
}

// seedDemoStore provisions one interviewable twin so the API is usable
// without a database.
func seedDemoStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	tw := st.PutTwin(twin.Twin{
		Name:            "Ada Lovelace",
		RoleTitle:       "Backend Engineer",
		YearsExperience: 7,
		Skills:          []string{"Go", "Postgres", "Distributed systems"},
		Bio:             "Builds boring, reliable systems and writes about them.",
		PublicSlug:      "demo-ada",
		// Without a voice the demo twin still answers text questions.
		VoiceID: os.Getenv("DEMO_TWIN_VOICE_ID"),
	})
	st.PutAnswer(twin.Answer{
		TwinID:       tw.ID,
		QuestionType: "strength",
		QuestionText: "What is your biggest strength?",
		AnswerText:   "I simplify things until they are hard to break.",
	})
	st.PutAnswer(twin.Answer{
		TwinID:       tw.ID,
		QuestionType: "challenge",
		QuestionText: "Describe a hard bug you fixed.",
		AnswerText:   "A race in a connection pool. I reproduced it with a stress test before touching the code.",
	})
	return st
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infof("twinterview backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalw("server error", "error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
