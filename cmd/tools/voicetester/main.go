package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/twinterview/backend/internal/audio"
	"github.com/twinterview/backend/internal/config"
	speechmodel "github.com/twinterview/backend/internal/model/speech"
	"github.com/twinterview/backend/internal/playback"
	"github.com/twinterview/backend/internal/service/speech"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env file, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if !cfg.Speech.Enabled {
		log.Fatal("speech vendor not configured, set ELEVENLABS_API_KEY first")
	}

	mode := flag.String("mode", "", "test mode: stt or tts")
	audioPath := flag.String("audio", "", "STT input audio file path")
	sampleRate := flag.Int("rate", audio.DefaultTargetRate, "sample rate of raw PCM input (stt -format=pcm only)")
	text := flag.String("text", "", "TTS input text")
	outputPath := flag.String("out", "", "TTS output audio file path (default auto-generated)")
	format := flag.String("format", "", "audio format (STT input format; pcm means raw s16le)")
	voice := flag.String("voice", "", "TTS voice ID")
	session := flag.String("session", "", "session ID, auto-generated when empty")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	if *mode != "stt" && *mode != "tts" {
		flag.Usage()
		log.Fatal("pick a mode with -mode=stt or -mode=tts")
	}

	sessionID := *session
	if sessionID == "" {
		sessionID = fmt.Sprintf("manual-%d", time.Now().UnixNano())
	}

	speechCfg := &speechmodel.SpeechConfig{
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

	svc := speech.NewService(speechCfg)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "stt":
		runSTT(ctx, svc, sessionID, *audioPath, *format, *sampleRate)
	case "tts":
		runTTS(ctx, svc, sessionID, *text, *voice, *outputPath)
	}
}

func runSTT(ctx context.Context, svc *speech.Service, sessionID, audioPath, format string, sampleRate int) {
	if audioPath == "" {
		log.Fatal("stt mode needs an input file via -audio")
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
		if format == "" {
			format = "wav"
		}
	}

	// Raw capture dumps are wrapped into a WAV container the same way the
	// browser fallback recording is.
	if format == "pcm" {
		data, err = audio.EncodeWAV(data, sampleRate)
		if err != nil {
			log.Fatalf("failed to wrap PCM into WAV: %v", err)
		}
		format = "wav"
	}

	log.Printf("transcribing: session=%s format=%s bytes=%d", sessionID, format, len(data))

	resp, err := svc.Transcribe(ctx, &speechmodel.STTRequest{
		SessionID: sessionID,
		Audio:     data,
		Format:    format,
	})
	if err != nil {
		log.Fatalf("transcription failed: %v", err)
	}

	log.Printf("transcript: %q", resp.Text)
}

func runTTS(ctx context.Context, svc *speech.Service, sessionID, text, voice, outputPath string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("tts mode needs text via -text")
	}
	if voice == "" {
		log.Fatal("tts mode needs a voice ID via -voice")
	}
	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.mp3", time.Now().Unix())
	}

	log.Printf("synthesizing: session=%s voice=%s chars=%d", sessionID, voice, len(text))

	stream, err := svc.SynthesizeStream(ctx, &speechmodel.TTSRequest{
		SessionID: sessionID,
		Text:      text,
		VoiceID:   voice,
	})
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}
	defer stream.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer out.Close()

	buffer := &fileBuffer{file: out}
	if err := playback.NewSink(buffer, 0).Consume(ctx, stream); err != nil {
		log.Fatalf("failed to stream audio to file: %v", err)
	}

	log.Printf("synthesis complete: wrote %d bytes to %s", buffer.written, outputPath)
}

// fileBuffer adapts a file to the playback sink so the tool consumes the
// vendor stream exactly like the in-call player does.
type fileBuffer struct {
	file    *os.File
	written int64
}

func (b *fileBuffer) Append(_ context.Context, chunk []byte) error {
	n, err := b.file.Write(chunk)
	b.written += int64(n)
	return err
}

func (b *fileBuffer) EndOfStream() error { return b.file.Sync() }

func (b *fileBuffer) Abort() {}
