package icadtone

// runCascade implements spec.md §4.7: runs detectors in the fixed order
// Pulsed -> TwoTone -> Long -> Warble, filtering the group list between
// stages so that later detectors never see groups overlapping an earlier
// detection's masked window. For a two-tone hit that window is the B-tone
// portion only when TwoTone.MaskAOnly is true (the default), and the whole
// A+B span otherwise.
func runCascade(groups []Group, cfg Config, hopS float64) (pulsed []PulsedHit, twoTone []TwoToneHit, long []LongHit, hiLow []WarbleHit) {
	guard := hopS / 2
	visible := groups

	if cfg.DetectPulsed {
		pulsed = detectPulsed(visible, cfg)
		var ivs []interval
		for _, h := range pulsed {
			ivs = append(ivs, interval{h.StartS, h.EndS})
		}
		visible = filterGroups(visible, ivs, guard)
	}

	if cfg.DetectTwoTone {
		twoTone = detectTwoTone(visible, cfg)
		var ivs []interval
		for _, h := range twoTone {
			if cfg.TwoTone.MaskAOnly {
				ivs = append(ivs, interval{h.EndS - h.ToneBLengthS, h.EndS})
			} else {
				ivs = append(ivs, interval{h.StartS, h.EndS})
			}
		}
		visible = filterGroups(visible, ivs, guard)
	}

	if cfg.DetectLong {
		long = detectLong(visible, cfg)
		var ivs []interval
		for _, h := range long {
			ivs = append(ivs, interval{h.StartS, h.EndS})
		}
		visible = filterGroups(visible, ivs, guard)
	}

	if cfg.DetectHiLow {
		hiLow = detectWarble(visible, cfg)
	}

	return
}

// filterGroups discards any group whose interval overlaps one of ivs
// (within guard tolerance), preserving input order.
func filterGroups(groups []Group, ivs []interval, guard float64) []Group {
	if len(ivs) == 0 {
		return groups
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		gi := interval{g.StartS, g.EndS}
		masked := false
		for _, iv := range ivs {
			if gi.overlaps(iv, guard) {
				masked = true
				break
			}
		}
		if !masked {
			out = append(out, g)
		}
	}
	return out
}
