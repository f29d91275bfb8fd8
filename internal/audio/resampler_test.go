package audio

import (
	"encoding/binary"
	"testing"
)

func TestNewResamplerRejectsUpsampling(t *testing.T) {
	if _, err := NewResampler(16000, 48000); err == nil {
		t.Fatal("expected error for upsampling")
	}
	if _, err := NewResampler(0, 16000); err == nil {
		t.Fatal("expected error for zero native rate")
	}
}

func TestProcessBlockDecimation(t *testing.T) {
	r, err := NewResampler(48000, 16000)
	if err != nil {
		t.Fatalf("NewResampler err: %v", err)
	}

	// 48k -> 16k keeps every third sample.
	block := make([]float32, 9)
	for i := range block {
		block[i] = float32(i) / 10
	}

	frame := r.ProcessBlock(block)
	if len(frame) != 6 {
		t.Fatalf("expected 3 samples (6 bytes), got %d bytes", len(frame))
	}

	for i, wantIdx := range []int{0, 3, 6} {
		got := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		want := int16(block[wantIdx] * 0x7fff)
		if got != want {
			t.Fatalf("sample %d: got %d want %d", i, got, want)
		}
	}
}

func TestProcessBlockClampsAndScales(t *testing.T) {
	r, err := NewResampler(16000, 16000)
	if err != nil {
		t.Fatalf("NewResampler err: %v", err)
	}

	frame := r.ProcessBlock([]float32{2.0, -2.0, 1.0, -1.0, 0})
	if len(frame) != 10 {
		t.Fatalf("expected 5 samples, got %d bytes", len(frame))
	}

	want := []int16{32767, -32768, 32767, -32768, 0}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		if got != w {
			t.Fatalf("sample %d: got %d want %d", i, got, w)
		}
	}
}

func TestProcessBlockEmptyOutput(t *testing.T) {
	r, err := NewResampler(48000, 16000)
	if err != nil {
		t.Fatalf("NewResampler err: %v", err)
	}

	if frame := r.ProcessBlock([]float32{0.5, 0.5}); frame != nil {
		t.Fatalf("expected nil frame for sub-decimation block, got %d bytes", len(frame))
	}
}
