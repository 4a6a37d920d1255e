package icadtone

import (
	"math"
	"testing"
)

const testSampleRate = 16000

// sineWave generates a pure tone at freqHz for durationS seconds at
// testSampleRate, with a short linear fade to avoid edge-of-window
// spectral leakage from a hard onset.
func sineWave(freqHz, durationS float64) []float64 {
	n := int(durationS * testSampleRate)
	out := make([]float64, n)
	fadeN := testSampleRate / 100 // 10ms fade
	for i := 0; i < n; i++ {
		amp := 1.0
		if i < fadeN {
			amp = float64(i) / float64(fadeN)
		} else if n-i < fadeN {
			amp = float64(n-i) / float64(fadeN)
		}
		out[i] = amp * math.Sin(2*math.Pi*freqHz*float64(i)/testSampleRate)
	}
	return out
}

func silence(durationS float64) []float64 {
	return make([]float64, int(durationS*testSampleRate))
}

func concat(chunks ...[]float64) []float64 {
	var out []float64
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func TestExtractFramesPureSilence(t *testing.T) {
	cfg := DefaultConfig()
	samples := silence(2.0)

	frames, _, err := extractFrames(samples, testSampleRate, cfg)
	if err != nil {
		t.Fatalf("extractFrames failed: %v", err)
	}
	for i, f := range frames {
		if f.FreqHz != 0 {
			t.Errorf("frame %d: expected silence to gate to 0Hz, got %v", i, f.FreqHz)
		}
	}
}

func TestExtractFramesSingleTone(t *testing.T) {
	cfg := DefaultConfig()
	const tone = 1000.0
	samples := sineWave(tone, 2.0)

	frames, hop, err := extractFrames(samples, testSampleRate, cfg)
	if err != nil {
		t.Fatalf("extractFrames failed: %v", err)
	}
	if hop <= 0 {
		t.Fatalf("expected a positive hop, got %d", hop)
	}
	if len(frames) == 0 {
		t.Fatal("expected at least one frame for a 2s tone")
	}

	// Interior frames (away from the fade edges) should land close to the
	// true tone frequency.
	var matched, total int
	for i, f := range frames {
		if i < 2 || i > len(frames)-3 {
			continue
		}
		total++
		if f.FreqHz != 0 && math.Abs(f.FreqHz-tone) < 20 {
			matched++
		}
	}
	if total == 0 || matched < total*9/10 {
		t.Errorf("expected >=90%% of interior frames near %vHz, matched %d/%d", tone, matched, total)
	}
}

func TestExtractFramesEmptyInput(t *testing.T) {
	frames, hop, err := extractFrames(nil, testSampleRate, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frames != nil || hop != 0 {
		t.Errorf("expected (nil, 0) for empty input, got (%v, %d)", frames, hop)
	}
}

func TestExtractFramesBandTooNarrow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frontend.FreqLoHz = 1000
	cfg.Frontend.FreqHiHz = 1000.01
	_, _, err := extractFrames(sineWave(1000, 0.5), testSampleRate, cfg)
	if err == nil {
		t.Fatal("expected an error for a band spanning fewer than two bins")
	}
}

func TestRefineFrequencySymmetricNeighbors(t *testing.T) {
	df := 10.0
	// Symmetric neighbors around the peak: delta should resolve to 0.
	got := refineFrequency([]float64{1, 5, 1}, 1, df)
	want := 1 * df
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("refineFrequency with symmetric neighbors = %v, want %v", got, want)
	}
}

func TestHannWindowEndpoints(t *testing.T) {
	w := hannWindow(8)
	if w[0] != 0 {
		t.Errorf("hannWindow[0] = %v, want 0", w[0])
	}
	if math.Abs(w[len(w)/2]-1) > 0.2 {
		t.Errorf("hannWindow midpoint = %v, want close to 1", w[len(w)/2])
	}
}

func TestNearestPow2Clamped(t *testing.T) {
	cases := []struct{ n, lo, hi, want int }{
		{100, 256, 4096, 256},
		{300, 256, 4096, 256},
		{257, 256, 4096, 256},
		{5000, 256, 4096, 4096},
	}
	for _, c := range cases {
		if got := nearestPow2Clamped(c.n, c.lo, c.hi); got != c.want {
			t.Errorf("nearestPow2Clamped(%d, %d, %d) = %d, want %d", c.n, c.lo, c.hi, got, c.want)
		}
	}
}
