package icadtone

// detectTwoTone implements spec.md §4.4: finds adjacent stable groups
// matching an A-short/B-long profile with bounded gap and minimum
// frequency separation.
func detectTwoTone(groups []Group, cfg Config) []TwoToneHit {
	var hits []TwoToneHit
	var candidate *Group

	qualifies := func(g Group) bool {
		if !g.On {
			return false
		}
		med := g.medianFreq(0, 1e12)
		return med > 0 && isStable(g.Freqs, med, cfg.TwoTone.ToneBwHz)
	}

	for i := range groups {
		g := groups[i]
		if !g.On {
			// OFF groups are skipped; silence between A and B is bounded by
			// the gap check below.
			continue
		}
		if !qualifies(g) {
			candidate = nil
			continue
		}

		if candidate == nil {
			if g.DurationS >= cfg.TwoTone.ToneAMinLengthS {
				candidate = &groups[i]
			}
			continue
		}

		fa := candidate.medianFreq(0, 1e12)
		fb := g.medianFreq(0, 1e12)
		gap := g.StartS - candidate.EndS
		if gap < 0 {
			gap = 0
		}

		if candidate.DurationS >= cfg.TwoTone.ToneAMinLengthS &&
			g.DurationS >= cfg.TwoTone.ToneBMinLengthS &&
			gap <= cfg.TwoTone.MaxGapBetweenABS &&
			absF(fa-fb) >= cfg.TwoTone.MinPairSeparationHz {

			hits = append(hits, TwoToneHit{
				Detected:     [2]float64{fa, fb},
				StartS:       candidate.StartS,
				EndS:         g.EndS,
				LengthS:      g.EndS - candidate.StartS,
				ToneALengthS: candidate.DurationS,
				ToneBLengthS: g.DurationS,
			})
			candidate = nil
			continue
		}

		if g.DurationS >= cfg.TwoTone.ToneAMinLengthS {
			candidate = &groups[i]
		} else {
			candidate = nil
		}
	}

	for idx := range hits {
		hits[idx].ToneID = toneID("tone", idx)
	}
	return hits
}
