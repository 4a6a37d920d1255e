package icadtone

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const frontendEpsilon = 1e-12

// extractFrames runs the STFT frontend over samples at sampleRate, producing
// one Frame per hop per spec.md §4.1. hop and window length are derived
// from cfg.TimeResolutionMs the way spectrum analyzers in the pack size
// their FFT: a power of two near 2*hop, clamped to [256, 4096].
func extractFrames(samples []float64, sampleRate int, cfg Config) ([]Frame, int, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil, 0, nil
	}

	hop := int(math.Round(float64(sampleRate) * cfg.TimeResolutionMs / 1000))
	if hop < 1 {
		hop = 1
	}
	winLen := nearestPow2Clamped(2*hop, 256, 4096)

	window := hannWindow(winLen)
	fft := fourier.NewFFT(winLen)
	df := float64(sampleRate) / float64(winLen)

	loBin := int(math.Ceil(cfg.Frontend.FreqLoHz / df))
	hiBin := int(math.Floor(cfg.Frontend.FreqHiHz / df))
	if loBin < 1 {
		loBin = 1
	}
	maxBin := winLen/2 + 1
	if hiBin >= maxBin {
		hiBin = maxBin - 1
	}
	if hiBin <= loBin {
		return nil, 0, errFrequencyExtraction("frequency band too narrow for chosen window", nil)
	}

	// First pass: compute the band-limited magnitude spectrum of every
	// frame without zero-padding the boundaries (only full windows).
	nFrames := 0
	if len(samples) >= winLen {
		nFrames = (len(samples)-winLen)/hop + 1
	}
	if nFrames == 0 {
		return nil, hop, nil
	}

	type frameSpec struct {
		timeS   float64
		mags    []float64 // full magnitude spectrum, length maxBin
		peakMag float64
		peakBin int
	}

	specs := make([]frameSpec, nFrames)
	buf := make([]float64, winLen)
	global := 0.0

	for i := 0; i < nFrames; i++ {
		start := i * hop
		for j := 0; j < winLen; j++ {
			buf[j] = samples[start+j] * window[j]
		}
		coeffs := fft.Coefficients(nil, buf)

		mags := make([]float64, maxBin)
		peakMag := 0.0
		peakBin := loBin
		for b := loBin; b <= hiBin; b++ {
			re, im := real(coeffs[b]), imag(coeffs[b])
			m := math.Hypot(re, im)
			mags[b] = m
			if m > peakMag {
				peakMag = m
				peakBin = b
			}
		}
		if peakMag > global {
			global = peakMag
		}

		centerSample := start + winLen/2
		specs[i] = frameSpec{
			timeS:   float64(centerSample) / float64(sampleRate),
			mags:    mags,
			peakMag: peakMag,
			peakBin: peakBin,
		}
	}

	if global <= frontendEpsilon {
		return nil, hop, nil
	}

	// Gate: compute rel_db for every frame, then estimate the noise floor
	// as the median of the lowest 20% quantile of rel_db values.
	relDb := make([]float64, nFrames)
	for i, s := range specs {
		p := s.peakMag
		if p <= 0 {
			p = frontendEpsilon
		}
		relDb[i] = 20 * math.Log10(p/global)
	}

	sortedRel := append([]float64(nil), relDb...)
	noiseFloorDb := median(lowestQuantile(sortedRel, 0.2))

	frames := make([]Frame, nFrames)
	for i, s := range specs {
		gated := relDb[i] < cfg.Frontend.SilenceBelowGlobalDb ||
			relDb[i] < noiseFloorDb+cfg.Frontend.SNRAboveNoiseDb

		var freq float64
		if !gated {
			freq = refineFrequency(s.mags, s.peakBin, df)
		}
		frames[i] = Frame{TimeS: s.timeS, FreqHz: freq}
	}

	return frames, hop, nil
}

// lowestQuantile returns the subset of vals falling at or below the p
// quantile of vals (e.g. p=0.2 -> lowest 20%), which the caller then takes
// the median of to estimate the noise floor.
func lowestQuantile(vals []float64, p float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	cut := quantile(p, append([]float64(nil), vals...))
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v <= cut {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return vals
	}
	return out
}

// refineFrequency applies parabolic interpolation around the peak bin to
// recover sub-bin frequency accuracy (spec.md §4.1 step 7).
func refineFrequency(mags []float64, bin int, df float64) float64 {
	if bin <= 0 || bin >= len(mags)-1 {
		return float64(bin) * df
	}
	alpha, beta, gamma := mags[bin-1], mags[bin], mags[bin+1]
	denom := alpha - 2*beta + gamma
	if denom == 0 {
		return float64(bin) * df
	}
	delta := 0.5 * (alpha - gamma) / denom
	if delta < -0.5 {
		delta = -0.5
	}
	if delta > 0.5 {
		delta = 0.5
	}
	return (float64(bin) + delta) * df
}

// hannWindow returns a Hann window of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// nearestPow2Clamped returns the power of two nearest to n, clamped to
// [lo, hi] (both assumed powers of two).
func nearestPow2Clamped(n, lo, hi int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	// p is now the smallest power of two >= n; check if p/2 is nearer.
	if p > lo && p/2 >= lo {
		if float64(n)-float64(p/2) < float64(p)-float64(n) {
			p /= 2
		}
	}
	if p < lo {
		p = lo
	}
	if p > hi {
		p = hi
	}
	return p
}
