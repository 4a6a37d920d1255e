package icadtone

import (
	"math"
	"sort"
)

type groupState int

const (
	stateOff groupState = iota
	stateOn
	stateOther
)

// detectPulsed implements spec.md §4.3: infers a carrier center, classifies
// every group as ON/OFF/OTHER relative to it, and scans for alternating
// ON/OFF cadences.
func detectPulsed(groups []Group, cfg Config) []PulsedHit {
	center := inferPulsedCenter(groups, cfg)
	if center <= 0 {
		return nil
	}

	states := make([]groupState, len(groups))
	for i, g := range groups {
		states[i] = classifyPulsedGroup(g, center, cfg)
	}

	// spec.md §4.3: coalesce consecutive same-state groups into runs before
	// pairing, so a burst the grouper split into two adjacent ON groups
	// (grouper.go's forced split on a frequency jump, with no intervening
	// OFF) still counts as a single ON half-cycle.
	runs := coalescePulseRuns(groups, states)

	var hits []PulsedHit
	i := 0
	for i < len(runs) {
		if runs[i].state == stateOther {
			i++
			continue
		}
		if runs[i].state != stateOn {
			i++
			continue
		}

		// Greedily pair ON->OFF runs starting here.
		cycles := 0
		onMs := []float64{}
		offMs := []float64{}
		j := i
		lastConsumed := i

		for j+1 < len(runs) && runs[j].state == stateOn && runs[j+1].state == stateOff {
			onDurMs := runs[j].durationS * 1000
			offDurMs := runs[j+1].durationS * 1000

			if onDurMs < cfg.Pulsed.MinOnMs || onDurMs > cfg.Pulsed.MaxOnMs {
				break
			}
			if offDurMs < cfg.Pulsed.MinOffMs || offDurMs > cfg.Pulsed.MaxOffMs {
				break
			}

			cycles++
			onMs = append(onMs, onDurMs)
			offMs = append(offMs, offDurMs)
			lastConsumed = j + 1
			j += 2
		}

		if cycles >= cfg.Pulsed.MinCycles {
			hits = append(hits, PulsedHit{
				DetectedHz:  center,
				StartS:      runs[i].startS,
				EndS:        runs[lastConsumed].endS,
				LengthS:     runs[lastConsumed].endS - runs[i].startS,
				Cycles:      cycles,
				OnMsMedian:  median(onMs),
				OffMsMedian: median(offMs),
			})
			i = lastConsumed + 1
			continue
		}

		i++
	}

	for idx := range hits {
		hits[idx].ToneID = toneID("pulsed", idx)
	}
	return hits
}

// pulseRun is one or more consecutive groups sharing the same ON/OFF/OTHER
// classification, merged into a single span for pairing.
type pulseRun struct {
	state     groupState
	startS    float64
	endS      float64
	durationS float64
}

// coalescePulseRuns merges consecutive groups with the same classification
// into single runs (spec.md §4.3), so a single burst split across adjacent
// groups of the same state is paired as one ON or OFF interval.
func coalescePulseRuns(groups []Group, states []groupState) []pulseRun {
	var runs []pulseRun
	for i, g := range groups {
		if i > 0 && states[i] == states[i-1] {
			last := &runs[len(runs)-1]
			last.endS = g.EndS
			last.durationS = last.endS - last.startS
			continue
		}
		runs = append(runs, pulseRun{
			state:     states[i],
			startS:    g.StartS,
			endS:      g.EndS,
			durationS: g.DurationS,
		})
	}
	return runs
}

// inferPulsedCenter implements spec.md §4.3's center-inference procedure.
func inferPulsedCenter(groups []Group, cfg Config) float64 {
	type stableGroup struct {
		med      float64
		duration float64
	}
	var stable []stableGroup
	for _, g := range groups {
		if !g.On {
			continue
		}
		med := g.medianFreq(0, math.MaxFloat64)
		if med <= 0 {
			continue
		}
		if isStable(g.Freqs, med, cfg.Pulsed.AutoCenterBandHz) {
			stable = append(stable, stableGroup{med: med, duration: g.DurationS})
		}
	}

	modeBin := cfg.Pulsed.ModeBinHz
	if modeBin <= 0 {
		modeBin = 10
	}

	if len(stable) > 0 {
		durationByBin := map[int]float64{}
		for _, sg := range stable {
			bin := int(math.Floor(sg.med / modeBin))
			durationByBin[bin] += sg.duration
		}
		bins := make([]int, 0, len(durationByBin))
		for bin := range durationByBin {
			bins = append(bins, bin)
		}
		sort.Ints(bins)
		bestBin, bestDur := 0, -1.0
		for _, bin := range bins {
			if durationByBin[bin] > bestDur {
				bestDur = durationByBin[bin]
				bestBin = bin
			}
		}
		var meds []float64
		for _, sg := range stable {
			if int(math.Floor(sg.med/modeBin)) == bestBin {
				meds = append(meds, sg.med)
			}
		}
		return median(meds)
	}

	// Fallback: modal bin of all in-band nonzero per-frame frequencies.
	countByBin := map[int]int{}
	sumByBin := map[int]float64{}
	for _, g := range groups {
		for _, f := range g.Freqs {
			if f <= 0 {
				continue
			}
			bin := int(math.Floor(f / modeBin))
			countByBin[bin]++
			sumByBin[bin] += f
		}
	}
	bins := make([]int, 0, len(countByBin))
	for bin := range countByBin {
		bins = append(bins, bin)
	}
	sort.Ints(bins)
	bestBin, bestCount := 0, -1
	for _, bin := range bins {
		if countByBin[bin] > bestCount {
			bestCount = countByBin[bin]
			bestBin = bin
		}
	}
	if bestCount <= 0 {
		return 0
	}
	return sumByBin[bestBin] / float64(bestCount)
}

// classifyPulsedGroup implements spec.md §4.3's per-group classification.
func classifyPulsedGroup(g Group, center float64, cfg Config) groupState {
	if zeroRatio(g.Freqs) >= cfg.Pulsed.OffZeroRatio {
		return stateOff
	}
	med := g.medianFreq(0, math.MaxFloat64)
	if med > 0 && med >= center-cfg.Pulsed.BwHz && med <= center+cfg.Pulsed.BwHz {
		return stateOn
	}
	return stateOther
}
