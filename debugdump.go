package icadtone

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// debugTrace is the verbose per-run record written when Config.Debug is
// set: every frame the frontend produced and every group the grouper
// derived from them, for offline inspection of a run that produced an
// unexpected result.
type debugTrace struct {
	RunID  string  `json:"run_id"`
	Frames []Frame `json:"frames"`
	Groups []Group `json:"groups"`
}

// writeDebugTrace zstd-compresses a JSON dump of frames and groups to
// path. Mirrors the engine's other external-artifact writers: failure to
// write the trace is logged by the caller, never fatal to analysis.
func writeDebugTrace(path, runID string, frames []Frame, groups []Group) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("debug_dump: failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("debug_dump: failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	trace := debugTrace{RunID: runID, Frames: frames, Groups: groups}
	data, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("debug_dump: failed to marshal trace: %w", err)
	}

	if _, err := enc.Write(data); err != nil {
		return fmt.Errorf("debug_dump: failed to write trace: %w", err)
	}
	return nil
}

// readDebugTrace reverses writeDebugTrace, for tooling that inspects a
// previously captured run.
func readDebugTrace(path string) (debugTrace, error) {
	var trace debugTrace

	f, err := os.Open(path)
	if err != nil {
		return trace, fmt.Errorf("debug_dump: failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return trace, fmt.Errorf("debug_dump: failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return trace, fmt.Errorf("debug_dump: failed to read trace: %w", err)
	}
	if err := json.Unmarshal(data, &trace); err != nil {
		return trace, fmt.Errorf("debug_dump: failed to parse trace: %w", err)
	}
	return trace, nil
}
