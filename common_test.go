package icadtone

import "testing"

func TestMedian(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := median(append([]float64(nil), c.in...))
			if got != c.want {
				t.Errorf("median(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestQuantile(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	if got := quantile(0, append([]float64(nil), vals...)); got != 1 {
		t.Errorf("quantile(0) = %v, want 1", got)
	}
	if got := quantile(1, append([]float64(nil), vals...)); got != 5 {
		t.Errorf("quantile(1) = %v, want 5", got)
	}
}

func TestIsStable(t *testing.T) {
	if !isStable([]float64{100, 101, 0, 99}, 100, 5) {
		t.Error("expected freqs within bandwidth (ignoring zeros) to be stable")
	}
	if isStable([]float64{100, 200}, 100, 5) {
		t.Error("expected a frequency far outside bandwidth to break stability")
	}
	if isStable([]float64{0, 0}, 100, 5) {
		t.Error("expected an all-zero group to be unstable (no content)")
	}
	if isStable(nil, 0, 5) {
		t.Error("expected med <= 0 to be unstable")
	}
}

func TestZeroRatio(t *testing.T) {
	if got := zeroRatio(nil); got != 1 {
		t.Errorf("zeroRatio(nil) = %v, want 1", got)
	}
	if got := zeroRatio([]float64{0, 0, 100, 100}); got != 0.5 {
		t.Errorf("zeroRatio = %v, want 0.5", got)
	}
}

func TestToneID(t *testing.T) {
	if got := toneID("pulsed", 0); got != "pulsed-1" {
		t.Errorf("toneID = %q, want pulsed-1", got)
	}
	if got := toneID("tone", 2); got != "tone-3" {
		t.Errorf("toneID = %q, want tone-3", got)
	}
}
