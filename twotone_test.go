package icadtone

import "testing"

func stableGroup(startS, durS, freqHz float64) Group {
	return Group{
		StartS: startS, EndS: startS + durS, DurationS: durS,
		On: true, Freqs: []float64{freqHz, freqHz, freqHz},
	}
}

func TestDetectTwoToneQuickCall(t *testing.T) {
	cfg := DefaultConfig()
	// Tone A: 0.75s+ at 600Hz, Tone B: 2.5s+ at 900Hz, adjoining.
	a := stableGroup(0, 0.8, 600)
	b := stableGroup(0.8, 3.0, 900)

	hits := detectTwoTone([]Group{a, b}, cfg)
	if len(hits) != 1 {
		t.Fatalf("expected one two-tone hit, got %d", len(hits))
	}
	h := hits[0]
	if h.Detected[0] != 600 || h.Detected[1] != 900 {
		t.Errorf("Detected = %v, want [600 900]", h.Detected)
	}
	if h.ToneID != "tone-1" {
		t.Errorf("ToneID = %q, want tone-1", h.ToneID)
	}
}

func TestDetectTwoToneRejectsShortToneA(t *testing.T) {
	cfg := DefaultConfig()
	a := stableGroup(0, 0.2, 600) // shorter than ToneAMinLengthS
	b := stableGroup(0.2, 3.0, 900)

	hits := detectTwoTone([]Group{a, b}, cfg)
	if len(hits) != 0 {
		t.Errorf("expected no hit with an undersized tone A, got %d", len(hits))
	}
}

func TestDetectTwoToneRejectsInsufficientSeparation(t *testing.T) {
	cfg := DefaultConfig()
	a := stableGroup(0, 0.8, 600)
	b := stableGroup(0.8, 3.0, 650) // separation well under MinPairSeparationHz

	hits := detectTwoTone([]Group{a, b}, cfg)
	if len(hits) != 0 {
		t.Errorf("expected no hit with tones too close together, got %d", len(hits))
	}
}

func TestDetectTwoToneRejectsTooLargeGap(t *testing.T) {
	cfg := DefaultConfig()
	a := stableGroup(0, 0.8, 600)
	b := stableGroup(0.8+cfg.TwoTone.MaxGapBetweenABS+1, 3.0, 900)

	hits := detectTwoTone([]Group{a, b}, cfg)
	if len(hits) != 0 {
		t.Errorf("expected no hit when A-B gap exceeds the configured maximum, got %d", len(hits))
	}
}
