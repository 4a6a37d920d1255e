package icadtone

import "testing"

// pulsedGroups builds an alternating ON/OFF group sequence at freqHz for
// the given number of cycles, each cycle onMs long with offMs of silence
// between.
func pulsedGroups(freqHz float64, cycles int, onMs, offMs float64) []Group {
	var groups []Group
	t := 0.0
	for i := 0; i < cycles; i++ {
		onDur := onMs / 1000
		groups = append(groups, Group{
			StartS: t, EndS: t + onDur, DurationS: onDur,
			On: true, Freqs: []float64{freqHz, freqHz, freqHz},
		})
		t += onDur
		offDur := offMs / 1000
		groups = append(groups, Group{
			StartS: t, EndS: t + offDur, DurationS: offDur,
			On: false, Freqs: []float64{0, 0},
		})
		t += offDur
	}
	return groups
}

func TestDetectPulsedFindsSteadyCadence(t *testing.T) {
	cfg := DefaultConfig()
	groups := pulsedGroups(800, 8, 200, 200)

	hits := detectPulsed(groups, cfg)
	if len(hits) != 1 {
		t.Fatalf("expected one pulsed hit, got %d", len(hits))
	}
	h := hits[0]
	if h.Cycles < cfg.Pulsed.MinCycles {
		t.Errorf("hit reports %d cycles, want >= %d", h.Cycles, cfg.Pulsed.MinCycles)
	}
	if h.ToneID != "pulsed-1" {
		t.Errorf("ToneID = %q, want pulsed-1", h.ToneID)
	}
	if h.DetectedHz < 790 || h.DetectedHz > 810 {
		t.Errorf("DetectedHz = %v, want close to 800", h.DetectedHz)
	}
}

func TestDetectPulsedRejectsTooFewCycles(t *testing.T) {
	cfg := DefaultConfig()
	groups := pulsedGroups(800, cfg.Pulsed.MinCycles-1, 200, 200)

	hits := detectPulsed(groups, cfg)
	if len(hits) != 0 {
		t.Errorf("expected no hits below min_cycles, got %d", len(hits))
	}
}

func TestDetectPulsedRejectsOutOfRangeDurations(t *testing.T) {
	cfg := DefaultConfig()
	// on duration far outside [MinOnMs, MaxOnMs]
	groups := pulsedGroups(800, 8, cfg.Pulsed.MaxOnMs+500, 200)

	hits := detectPulsed(groups, cfg)
	if len(hits) != 0 {
		t.Errorf("expected no hits with on-duration outside bounds, got %d", len(hits))
	}
}

func TestClassifyPulsedGroup(t *testing.T) {
	cfg := DefaultConfig()
	on := Group{Freqs: []float64{800, 805, 795}}
	if classifyPulsedGroup(on, 800, cfg) != stateOn {
		t.Error("expected group near center to classify as ON")
	}

	off := Group{Freqs: []float64{0, 0, 0, 0}}
	if classifyPulsedGroup(off, 800, cfg) != stateOff {
		t.Error("expected all-zero group to classify as OFF")
	}

	other := Group{Freqs: []float64{2000, 2010}}
	if classifyPulsedGroup(other, 800, cfg) != stateOther {
		t.Error("expected far-off-center group to classify as OTHER")
	}
}

func TestInferPulsedCenterNoStableGroups(t *testing.T) {
	cfg := DefaultConfig()
	groups := []Group{
		{On: false, Freqs: []float64{0, 0}},
	}
	if got := inferPulsedCenter(groups, cfg); got != 0 {
		t.Errorf("expected 0 center with no usable content, got %v", got)
	}
}
