package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/llm"
)

// wavSink writes each narration to a WAV file and plays it with an external
// player when one is configured. Without a player it waits out the clip so
// scenes keep their pacing.
type wavSink struct {
	dir    string
	player string
}

func newWavSink(dir, player string) *wavSink {
	return &wavSink{dir: dir, player: player}
}

func (w *wavSink) Play(ctx context.Context, a llm.Audio) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create narration directory: %w", err)
	}
	path := filepath.Join(w.dir, uuid.NewString()+".wav")
	if err := os.WriteFile(path, encodeWAV(a), 0o644); err != nil {
		return fmt.Errorf("failed to write narration: %w", err)
	}
	defer os.Remove(path)

	if w.player != "" {
		logger.Debug("playing narration", zap.String("player", w.player), zap.Duration("length", a.Duration()))
		return exec.CommandContext(ctx, w.player, path).Run()
	}

	t := time.NewTimer(a.Duration())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// encodeWAV wraps 16-bit PCM in a RIFF header.
func encodeWAV(a llm.Audio) []byte {
	channels := a.Channels
	if channels <= 0 {
		channels = 1
	}
	rate := a.SampleRate
	if rate <= 0 {
		rate = llm.NarrationSampleRate
	}
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(a.PCM)))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(bitsPerSample))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(a.PCM)))
	b.Write(a.PCM)
	return b.Bytes()
}
