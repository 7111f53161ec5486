// Package tone generates a short placeholder tone when no spoken audio is
// available. The tone is a gently warbling sine wave whose length scales with
// the text it stands in for.
package tone

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

const (
	// SampleRate is the output sample rate in Hz.
	SampleRate = 22050

	amplitude   = 0.3
	baseFreq    = 440.0
	freqWobble  = 60.0
	minDuration = 0.5
	maxDuration = 3.5
)

// Duration returns the tone length in seconds for the given text: half a
// second base plus one second per 25 characters, capped at 3.5 seconds.
func Duration(text string) float64 {
	d := minDuration + float64(len([]rune(text)))/25.0
	return math.Min(maxDuration, d)
}

// Samples renders the tone for text as 16-bit PCM samples.
func Samples(text string) []int {
	total := int(math.Round(Duration(text) * SampleRate))
	data := make([]int, total)
	for i := 0; i < total; i++ {
		freq := baseFreq + freqWobble*math.Sin(2*math.Pi*float64(i)/SampleRate)
		value := amplitude * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		data[i] = int(int16(value * math.MaxInt16))
	}
	return data
}

// Synthesize writes the placeholder tone for text to a fresh temp file and
// returns its path. The caller owns the file and must remove it.
func Synthesize(text string) (string, error) {
	path := filepath.Join(os.TempDir(), "tone-"+uuid.New().String()+".wav")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create tone file: %w", err)
	}

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		SourceBitDepth: 16,
		Data:           Samples(text),
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write tone samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to finalize tone file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close tone file: %w", err)
	}
	return path, nil
}
