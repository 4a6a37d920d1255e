// Package decoders generalizes the engine's external-decoder collaborators
// (MDC1200/FleetSync and DTMF): each is invoked as an opaque subprocess on
// the raw audio segment, piping PCM to stdin and reading newline-delimited
// JSON from stdout. The pattern is grounded directly on the host project's
// own external-decoder spawner, which checks binary availability up front,
// runs the process, and surfaces a non-zero exit as a detection failure.
package decoders

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Spawner invokes a single external decoder binary.
type Spawner struct {
	Name string // human-readable name, used in error messages
	Path string // binary path or name resolved via PATH
	Args []string
}

// NewMDC returns a Spawner configured for the MDC1200/FleetSync decoder.
func NewMDC(path string, extraArgs ...string) *Spawner {
	return &Spawner{Name: "mdc", Path: path, Args: append([]string{"--mode", "mdc"}, extraArgs...)}
}

// NewDTMF returns a Spawner configured for the DTMF decoder.
func NewDTMF(path string, extraArgs ...string) *Spawner {
	return &Spawner{Name: "dtmf", Path: path, Args: append([]string{"--mode", "dtmf"}, extraArgs...)}
}

// CheckAvailability verifies the spawner's binary is present and
// executable, returning an error identifying the missing tool if not.
func (s *Spawner) CheckAvailability() error {
	if _, err := exec.LookPath(s.Path); err != nil {
		return fmt.Errorf("external decoder %q not found at %q: %w", s.Name, s.Path, err)
	}
	return nil
}

// Run pipes pcm to the decoder's stdin and returns one []byte per
// newline-delimited JSON record read from stdout. A non-zero exit status is
// surfaced as an error (ToneDetection, from the caller's point of view).
func (s *Spawner) Run(ctx context.Context, pcm []byte) ([][]byte, error) {
	cmd := exec.CommandContext(ctx, s.Path, s.Args...)
	cmd.Stdin = bytes.NewReader(pcm)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("decoder %q exited with error: %w (stderr: %s)", s.Name, err, stderr.String())
	}

	var lines [][]byte
	scanner := bufio.NewScanner(bytes.NewReader(stdout.Bytes()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		lines = append(lines, cp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decoder %q: failed to read output: %w", s.Name, err)
	}

	return lines, nil
}

// CheckAll checks availability of every given spawner, returning the first
// error encountered.
func CheckAll(spawners ...*Spawner) error {
	for _, s := range spawners {
		if s == nil {
			continue
		}
		if err := s.CheckAvailability(); err != nil {
			return err
		}
	}
	return nil
}
