// Package audioio is the audio ingestion collaborator: it turns a file
// path, URL, raw byte blob, or in-memory waveform into the fixed interface
// the detection engine consumes — mono float64 samples in [-1, 1] plus a
// sample rate and duration. It is deliberately thin; resampling/mixing for
// non-WAV containers is delegated to an external ffmpeg binary, the same
// subprocess pattern the engine uses for its own external decoders.
package audioio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// IsToolMissing reports whether err indicates a required external tool
// (ffmpeg) was not found on PATH, so callers can surface it as
// ExternalToolMissing rather than a generic AudioLoad failure.
func IsToolMissing(err error) bool {
	var t *toolMissingError
	return errors.As(err, &t)
}

// Samples is a finite sequence of real-valued samples plus sample rate, the
// fixed interface the detection engine requires per spec.md §1.
type Samples struct {
	Data       []float64
	SampleRate int
}

// DurationS returns the clip length in seconds.
func (s Samples) DurationS() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Data)) / float64(s.SampleRate)
}

// FromFloat64 wraps an already-decoded in-memory waveform.
func FromFloat64(data []float64, sampleRate int) Samples {
	return Samples{Data: data, SampleRate: sampleRate}
}

// LoadBytes decodes an in-memory audio blob. WAV is parsed directly; any
// other container is transcoded via ffmpeg.
func LoadBytes(ctx context.Context, data []byte) (Samples, error) {
	if samples, rate, err := decodeWAV(data); err == nil {
		return Samples{Data: samples, SampleRate: rate}, nil
	}

	tmp, err := os.CreateTemp("", "icadtone-*.bin")
	if err != nil {
		return Samples{}, &loadError{"failed to create temp file", err}
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return Samples{}, &loadError{"failed to write temp file", err}
	}
	tmp.Close()

	return transcodeWithFFmpeg(ctx, tmp.Name())
}

// LoadFile loads a clip from a local path.
func LoadFile(ctx context.Context, path string) (Samples, error) {
	ext := filepath.Ext(path)
	if ext == ".wav" || ext == ".WAV" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Samples{}, &loadError{"failed to read file", err}
		}
		samples, rate, err := decodeWAV(data)
		if err == nil {
			return Samples{Data: samples, SampleRate: rate}, nil
		}
		// Fall through to ffmpeg for a mislabeled .wav container.
	}
	return transcodeWithFFmpeg(ctx, path)
}

// LoadURL fetches a clip over HTTP(S) into memory and decodes it the same
// way as LoadBytes.
func LoadURL(ctx context.Context, url string) (Samples, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Samples{}, &loadError{"failed to build request", err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Samples{}, &loadError{"failed to fetch url", err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Samples{}, &loadError{fmt.Sprintf("unexpected status %d fetching %s", resp.StatusCode, url), nil}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Samples{}, &loadError{"failed to read response body", err}
	}

	return LoadBytes(ctx, body)
}

// targetSampleRate is the rate the engine's frontend is tuned for by
// default; ffmpeg resamples to this when transcoding non-WAV input.
const targetSampleRate = 16000

// ffmpegTimeout bounds a single transcode invocation.
const ffmpegTimeout = 2 * time.Minute

// transcodeWithFFmpeg shells out to ffmpeg to produce mono PCM WAV at
// targetSampleRate, then parses the result. Grounded on the engine's own
// decoder-spawning idiom (check binary availability, run, check exit code).
func transcodeWithFFmpeg(ctx context.Context, inputPath string) (Samples, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return Samples{}, &toolMissingError{"ffmpeg binary not found on PATH", err}
	}

	out, err := os.CreateTemp("", "icadtone-*.wav")
	if err != nil {
		return Samples{}, &loadError{"failed to create temp output file", err}
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	runCtx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ffmpeg",
		"-y", "-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", targetSampleRate),
		"-f", "wav",
		outPath,
	)

	if err := cmd.Run(); err != nil {
		return Samples{}, &loadError{"ffmpeg transcode failed", err}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return Samples{}, &loadError{"failed to read transcoded output", err}
	}
	samples, rate, err := decodeWAV(data)
	if err != nil {
		return Samples{}, &loadError{"failed to parse transcoded output", err}
	}
	return Samples{Data: samples, SampleRate: rate}, nil
}

type loadError struct {
	message string
	err     error
}

func (e *loadError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("audio_load: %s: %v", e.message, e.err)
	}
	return fmt.Sprintf("audio_load: %s", e.message)
}

func (e *loadError) Unwrap() error { return e.err }

type toolMissingError struct {
	message string
	err     error
}

func (e *toolMissingError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("external_tool_missing: %s: %v", e.message, e.err)
	}
	return fmt.Sprintf("external_tool_missing: %s", e.message)
}

func (e *toolMissingError) Unwrap() error { return e.err }
