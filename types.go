package icadtone

import "encoding/json"

// Frame is the output of one STFT window: a time index (seconds from start
// of the clip) and the dominant frequency in that window, or 0 for a gated
// (silent / below-SNR) frame. Frames are not retained beyond the Frontend.
type Frame struct {
	TimeS float64
	FreqHz float64
}

// Group is a contiguous run of frames sharing ON/OFF polarity and, for ON
// runs, a stable dominant frequency. This is the single explicit
// representation mandated by the design notes — no positional tuples.
type Group struct {
	StartS     float64
	EndS       float64
	DurationS  float64
	Freqs      []float64
	On         bool
}

// medianFreq returns the median of the group's nonzero in-band frequencies,
// or 0 if there are none. It is the group's "representative" frequency used
// throughout the detectors (spec.md §9: median-with-stability, uniformly).
func (g Group) medianFreq(loHz, hiHz float64) float64 {
	vals := make([]float64, 0, len(g.Freqs))
	for _, f := range g.Freqs {
		if f > 0 && f >= loHz && f <= hiHz {
			vals = append(vals, f)
		}
	}
	return median(vals)
}

// PulsedHit is one detected pulsed single-tone sequence.
type PulsedHit struct {
	ToneID       string  `json:"tone_id"`
	DetectedHz   float64 `json:"detected"`
	StartS       float64 `json:"start"`
	EndS         float64 `json:"end"`
	LengthS      float64 `json:"length"`
	Cycles       int     `json:"cycles"`
	OnMsMedian   float64 `json:"on_ms_median"`
	OffMsMedian  float64 `json:"off_ms_median"`
}

// TwoToneHit is one detected Quick Call (two-tone sequential) sequence.
type TwoToneHit struct {
	ToneID        string    `json:"tone_id"`
	Detected      [2]float64 `json:"detected"`
	StartS        float64   `json:"start"`
	EndS          float64   `json:"end"`
	LengthS       float64   `json:"length"`
	ToneALengthS  float64   `json:"tone_a_length"`
	ToneBLengthS  float64   `json:"tone_b_length"`
}

// LongHit is one detected long single tone.
type LongHit struct {
	ToneID     string  `json:"tone_id"`
	DetectedHz float64 `json:"detected"`
	StartS     float64 `json:"start"`
	EndS       float64 `json:"end"`
	LengthS    float64 `json:"length"`
}

// WarbleHit is one detected hi-low warble run.
type WarbleHit struct {
	ToneID        string    `json:"tone_id"`
	Detected      [2]float64 `json:"detected"`
	StartS        float64   `json:"start"`
	EndS          float64   `json:"end"`
	LengthS       float64   `json:"length"`
	Alternations  int       `json:"alternations"`
}

// DecodeRecord is one line of JSON output from an external decoder
// (MDC1200/FleetSync or DTMF), appended verbatim to the corresponding
// result list.
type DecodeRecord struct {
	Raw json.RawMessage `json:"-"`
}

// MarshalJSON re-emits the decoder's own JSON line unmodified.
func (d DecodeRecord) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// Result is the full output of a single Analyze call: six ordered lists of
// detection records, per spec.md §6.
type Result struct {
	Pulsed  []PulsedHit    `json:"pulsed"`
	TwoTone []TwoToneHit   `json:"two_tone"`
	Long    []LongHit      `json:"long"`
	HiLow   []WarbleHit    `json:"hi_low"`
	MDC     []DecodeRecord `json:"mdc"`
	DTMF    []DecodeRecord `json:"dtmf"`
}

// interval is a half-open-ish [start, end] span used by the cascade for
// overlap masking.
type interval struct {
	start, end float64
}

// overlaps reports whether two intervals overlap, allowing a guard band of
// tolerance on each side (spec.md §4.7): they overlap iff NOT
// (e1+guard <= s2 OR e2+guard <= s1).
func (iv interval) overlaps(other interval, guard float64) bool {
	if iv.end+guard <= other.start || other.end+guard <= iv.start {
		return false
	}
	return true
}
