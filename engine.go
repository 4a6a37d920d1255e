package icadtone

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/TheGreatCodeholio/icad-tone-detection/audioio"
	"github.com/TheGreatCodeholio/icad-tone-detection/decoders"
	"github.com/TheGreatCodeholio/icad-tone-detection/stream"
	"github.com/google/uuid"
)

// Engine is the single entry point described in spec.md §6: it accepts an
// audio source and a configuration record and returns a Result with six
// ordered lists of detections. A zero-value Engine is ready to use; Metrics,
// Publisher, and Stream are optional and nil-safe.
type Engine struct {
	Metrics   *Metrics
	Publisher *Publisher
	Stream    *stream.Server

	MDCSpawner  *decoders.Spawner
	DTMFSpawner *decoders.Spawner
}

// Analyze runs the full pipeline: Frontend -> Grouper -> Cascade, plus any
// enabled external decoders, against a single in-memory clip.
func (e *Engine) Analyze(ctx context.Context, samples audioio.Samples, cfg Config) (*Result, error) {
	runID := uuid.NewString()
	log.Printf("[icadtone] run=%s start samples=%d rate=%d", runID, len(samples.Data), samples.SampleRate)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stop := e.Metrics.startAnalysisTimer()
	defer stop()

	frames, hop, err := extractFrames(samples.Data, samples.SampleRate, cfg)
	if err != nil {
		return nil, errFrequencyExtraction("frontend extraction failed", err)
	}

	groups := groupFrames(frames, hop, samples.SampleRate, cfg)

	if cfg.Debug {
		path := fmt.Sprintf("icadtone-%s.trace.zst", runID)
		if err := writeDebugTrace(path, runID, frames, groups); err != nil {
			log.Printf("[icadtone] run=%s debug trace failed: %v", runID, err)
		}
	}

	hopS := 0.0
	if samples.SampleRate > 0 {
		hopS = float64(hop) / float64(samples.SampleRate)
	}

	pulsed, twoTone, long, hiLow := runCascade(groups, cfg, hopS)

	result := &Result{
		Pulsed:  pulsed,
		TwoTone: twoTone,
		Long:    long,
		HiLow:   hiLow,
	}

	if cfg.DetectMDC && e.MDCSpawner != nil {
		if err := e.MDCSpawner.CheckAvailability(); err != nil {
			return nil, errExternalToolMissing("mdc decoder unavailable", err)
		}
		e.Metrics.incDecoderInvoke("mdc")
		recs, err := e.MDCSpawner.Run(ctx, pcmBytes(samples))
		if err != nil {
			e.Metrics.incDecoderFailure("mdc")
			return nil, errToneDetection("mdc decoder failed", err)
		}
		result.MDC = toDecodeRecords(recs)
	}
	if cfg.DetectDTMF && e.DTMFSpawner != nil {
		if err := e.DTMFSpawner.CheckAvailability(); err != nil {
			return nil, errExternalToolMissing("dtmf decoder unavailable", err)
		}
		e.Metrics.incDecoderInvoke("dtmf")
		recs, err := e.DTMFSpawner.Run(ctx, pcmBytes(samples))
		if err != nil {
			e.Metrics.incDecoderFailure("dtmf")
			return nil, errToneDetection("dtmf decoder failed", err)
		}
		result.DTMF = toDecodeRecords(recs)
	}

	e.Metrics.observeResult(result)
	if e.Publisher != nil {
		e.Publisher.PublishResult(runID, result)
	}
	if e.Stream != nil {
		e.Stream.Publish("result", map[string]interface{}{"run_id": runID, "result": result})
	}

	log.Printf("[icadtone] run=%s done pulsed=%d two_tone=%d long=%d hi_low=%d",
		runID, len(pulsed), len(twoTone), len(long), len(hiLow))

	return result, nil
}

// pcmBytes serializes the clip as 16-bit little-endian mono PCM, the format
// the external decoders expect on stdin (spec.md §6).
func pcmBytes(samples audioio.Samples) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for _, f := range samples.Data {
		clamped := f
		if clamped > 1 {
			clamped = 1
		} else if clamped < -1 {
			clamped = -1
		}
		v := int16(clamped * 32767)
		w.WriteByte(byte(v))
		w.WriteByte(byte(v >> 8))
	}
	w.Flush()
	return buf.Bytes()
}

func toDecodeRecords(lines [][]byte) []DecodeRecord {
	out := make([]DecodeRecord, 0, len(lines))
	for _, l := range lines {
		out = append(out, DecodeRecord{Raw: l})
	}
	return out
}
