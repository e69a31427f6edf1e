package main

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/story"
)

func TestEncodeWAV(t *testing.T) {
	a := llm.Audio{PCM: make([]byte, 48000), SampleRate: 24000, Channels: 1}
	wav := encodeWAV(a)

	if len(wav) != 44+len(a.PCM) {
		t.Fatalf("Expected %d bytes, got %d", 44+len(a.PCM), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:16]) != "WAVEfmt " || string(wav[36:40]) != "data" {
		t.Errorf("Bad header chunks: %q", wav[:44])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Errorf("Expected sample rate 24000, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 48000 {
		t.Errorf("Expected byte rate 48000, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(a.PCM)) {
		t.Errorf("Expected data size %d, got %d", len(a.PCM), got)
	}
	if a.Duration() != time.Second {
		t.Errorf("Expected one second of audio, got %v", a.Duration())
	}
}

func TestEncodeWAVDefaults(t *testing.T) {
	wav := encodeWAV(llm.Audio{PCM: []byte{1, 2}})
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("Expected mono, got %d channels", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != llm.NarrationSampleRate {
		t.Errorf("Expected sample rate %d, got %d", llm.NarrationSampleRate, got)
	}
}

func TestFindStory(t *testing.T) {
	custom := story.Story{ID: "pack-1", Title: "The Brave Otter", Icon: "🦦", Scenes: []story.Scene{{Text: "Splash.", Emotion: "happy"}}}
	lib := story.NewLibrary(custom)

	tests := []struct {
		ref     string
		want    int
		wantErr bool
	}{
		{ref: "1", want: 0},
		{ref: "pack-1", want: 0},
		{ref: "the brave otter", want: 0},
		{ref: "0", wantErr: true},
		{ref: "9999", wantErr: true},
		{ref: "no such story", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := findStory(lib, tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error for %q", tt.ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected index %d, got %d", tt.want, got)
			}
		})
	}
}
