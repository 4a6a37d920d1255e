package icadtone

// detectWarble implements spec.md §4.6: finds maximal runs of stable
// nonzero groups alternating between exactly two distinct tones.
func detectWarble(groups []Group, cfg Config) []WarbleHit {
	var hits []WarbleHit

	type runState struct {
		members   []Group
		firstHz   float64
		secondHz  bool // whether a second tone has been established
		secondVal float64
		lastGroup *Group
	}

	stable := func(g Group) (float64, bool) {
		med := g.medianFreq(0, 1e12)
		if med <= 0 {
			return 0, false
		}
		if !isStable(g.Freqs, med, cfg.HiLow.ToneBwHz) {
			return 0, false
		}
		return med, true
	}

	var run *runState

	flush := func() {
		if run == nil {
			return
		}
		if len(run.members) >= cfg.HiLow.MinAlternations {
			var lowVals, highVals []float64
			for _, m := range run.members {
				med, _ := stable(m)
				if absF(med-run.firstHz) <= absF(med-run.secondVal) {
					lowVals = append(lowVals, med)
				} else {
					highVals = append(highVals, med)
				}
			}
			a := median(lowVals)
			b := median(highVals)
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			hits = append(hits, WarbleHit{
				Detected:     [2]float64{lo, hi},
				StartS:       run.members[0].StartS,
				EndS:         run.members[len(run.members)-1].EndS,
				LengthS:      run.members[len(run.members)-1].EndS - run.members[0].StartS,
				Alternations: len(run.members),
			})
		}
		run = nil
	}

	for i := range groups {
		g := groups[i]
		med, ok := stable(g)

		if run == nil {
			if ok {
				run = &runState{firstHz: med}
				run.members = append(run.members, g)
				last := groups[i]
				run.lastGroup = &last
			}
			continue
		}

		if !ok {
			flush()
			continue
		}

		gap := g.StartS - run.lastGroup.EndS
		if gap < 0 {
			gap = 0
		}
		if gap > cfg.HiLow.IntervalLengthS {
			flush()
			if ok {
				run = &runState{firstHz: med}
				run.members = append(run.members, g)
				last := g
				run.lastGroup = &last
			}
			continue
		}

		prevMed, _ := stable(run.members[len(run.members)-1])
		if absF(med-prevMed) <= cfg.HiLow.ToneBwHz {
			// No alternation happened (repeat of same tone): breaks run.
			flush()
			if ok {
				run = &runState{firstHz: med}
				run.members = append(run.members, g)
				last := g
				run.lastGroup = &last
			}
			continue
		}

		if !run.secondHz {
			if absF(med-run.firstHz) >= cfg.HiLow.MinPairSeparationHz {
				run.secondHz = true
				run.secondVal = med
				run.members = append(run.members, g)
				last := g
				run.lastGroup = &last
				continue
			}
			flush()
			if ok {
				run = &runState{firstHz: med}
				run.members = append(run.members, g)
				last := g
				run.lastGroup = &last
			}
			continue
		}

		if absF(med-run.firstHz) <= cfg.HiLow.ToneBwHz || absF(med-run.secondVal) <= cfg.HiLow.ToneBwHz {
			run.members = append(run.members, g)
			last := g
			run.lastGroup = &last
			continue
		}

		flush()
		if ok {
			run = &runState{firstHz: med}
			run.members = append(run.members, g)
			last := g
			run.lastGroup = &last
		}
	}
	flush()

	for idx := range hits {
		hits[idx].ToneID = toneID("hilow", idx)
	}
	return hits
}
