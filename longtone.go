package icadtone

// detectLong implements spec.md §4.5: reports one hit per stable nonzero
// group whose duration is at least the configured minimum and whose median
// frequency is above the configured floor.
func detectLong(groups []Group, cfg Config) []LongHit {
	var hits []LongHit
	for _, g := range groups {
		if !g.On {
			continue
		}
		med := g.medianFreq(0, 1e12)
		if med <= 0 || !isStable(g.Freqs, med, cfg.Long.BwHz) {
			continue
		}
		if g.DurationS < cfg.Long.MinDurationS {
			continue
		}
		if med <= cfg.Long.MinFreqHz {
			continue
		}
		hits = append(hits, LongHit{
			DetectedHz: med,
			StartS:     g.StartS,
			EndS:       g.EndS,
			LengthS:    g.DurationS,
		})
	}
	for idx := range hits {
		hits[idx].ToneID = toneID("long", idx)
	}
	return hits
}
