package config

import "testing"

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
}

func TestLoadServerConfigExplicitAddr(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9090")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
}

func TestLoadServerConfigRejectsSpaces(t *testing.T) {
	t.Setenv("PORT", "80 80")

	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}
}

func TestSpeechConfigDisabledWithoutKey(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")

	cfg, err := loadSpeechConfig()
	if err != nil {
		t.Fatalf("loadSpeechConfig err: %v", err)
	}
	if cfg.Enabled {
		t.Fatal("speech should be disabled without an API key")
	}
	if cfg.STTModel != "scribe_v1" {
		t.Fatalf("unexpected default STT model: %s", cfg.STTModel)
	}
	if cfg.SampleRate != 16000 {
		t.Fatalf("unexpected default sample rate: %d", cfg.SampleRate)
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cases := []struct {
		name    string
		cfg     AIConfig
		enabled bool
	}{
		{"api key", AIConfig{Model: "m", APIKey: "k"}, true},
		{"ak/sk", AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}, true},
		{"no model", AIConfig{APIKey: "k"}, false},
		{"no creds", AIConfig{Model: "m"}, false},
	}

	for _, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.enabled {
			t.Fatalf("%s: Enabled() = %v, want %v", tc.name, got, tc.enabled)
		}
	}
}

func TestParseOptionalIntEnv(t *testing.T) {
	t.Setenv("SPEECH_TIMEOUT", "45")

	val, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		t.Fatalf("parseOptionalIntEnv err: %v", err)
	}
	if val == nil || *val != 45 {
		t.Fatalf("unexpected value: %v", val)
	}

	t.Setenv("SPEECH_TIMEOUT", "nope")
	if _, err := parseOptionalIntEnv("SPEECH_TIMEOUT"); err == nil {
		t.Fatal("expected parse error")
	}
}
