package icadtone

// groupFrames consolidates consecutive frames of stable frequency into
// Groups, per spec.md §4.2. hop/sampleRate gives the half-open interval
// extension (end_s = t_last + hop/fs) for the last frame of each group.
func groupFrames(frames []Frame, hop, sampleRate int, cfg Config) []Group {
	if len(frames) == 0 {
		return nil
	}

	hopS := float64(hop) / float64(sampleRate)
	pctTol := cfg.MatchingThresholdPct
	absCap := cfg.Grouper.AbsCapHz
	forceSplitHz := cfg.Grouper.ForceSplitStepHz
	lookahead := cfg.Grouper.SplitLookaheadN

	var groups []Group
	runStart := 0

	emit := func(endIdx int) {
		first := frames[runStart]
		last := frames[endIdx]
		freqs := make([]float64, 0, endIdx-runStart+1)
		for i := runStart; i <= endIdx; i++ {
			freqs = append(freqs, frames[i].FreqHz)
		}
		g := Group{
			StartS:    first.TimeS,
			EndS:      last.TimeS + hopS,
			Freqs:     freqs,
			On:        first.FreqHz != 0,
		}
		g.DurationS = g.EndS - g.StartS
		groups = append(groups, g)
	}

	for i := 1; i < len(frames); i++ {
		prevOn := frames[i-1].FreqHz != 0
		curOn := frames[i].FreqHz != 0

		if prevOn != curOn {
			emit(i - 1)
			runStart = i
			continue
		}

		if !curOn {
			// both OFF: always extends the same run.
			continue
		}

		prevF, curF := frames[i-1].FreqHz, frames[i].FreqHz
		diff := absF(curF - prevF)
		tol := prevF * pctTol / 100
		if tol > absCap {
			tol = absCap
		}

		forceSplit := forceSplitHz > 0 && diff >= forceSplitHz && forceSplitConfirmed(frames, i, lookahead)

		if diff <= tol && !forceSplit {
			continue
		}

		emit(i - 1)
		runStart = i
	}
	emit(len(frames) - 1)

	if cfg.Grouper.MergeShortGapsMs > 0 {
		groups = mergeShortGaps(groups, cfg.Grouper.MergeShortGapsMs/1000)
	}

	return groups
}

// forceSplitConfirmed reports whether a strict majority of the nonzero
// frames among frames[i] and the lookahead frames after it (i through
// i+lookahead) are closer to frames[i].FreqHz than to frames[i-1].FreqHz,
// confirming a genuine frequency shift rather than jitter.
func forceSplitConfirmed(frames []Frame, i, lookahead int) bool {
	prevF := frames[i-1].FreqHz
	curF := frames[i].FreqHz

	closerToCur := 0
	total := 0
	for k := i; k < len(frames) && k < i+lookahead+1; k++ {
		f := frames[k].FreqHz
		if f == 0 {
			continue
		}
		total++
		if absF(f-curF) < absF(f-prevF) {
			closerToCur++
		}
	}
	if total == 0 {
		return false
	}
	return closerToCur*2 > total
}

// mergeShortGaps merges two consecutive same-polarity groups separated by a
// gap no longer than maxGapS, concatenating their freq lists (spec.md:85).
// Since groupFrames emits a fully contiguous run of groups, the "gap" it
// bridges is most often an explicit opposite-polarity group (e.g. a brief
// dropout splitting one tone into ON-OFF-ON) rather than a true timestamp
// gap between directly adjacent same-polarity groups; both cases are
// handled here, but a zero-length abutment between two same-polarity
// groups (a confirmed force-split on a genuine frequency jump, per
// forceSplitConfirmed) is never merged back together.
func mergeShortGaps(groups []Group, maxGapS float64) []Group {
	if len(groups) == 0 {
		return groups
	}
	out := make([]Group, 0, len(groups))
	out = append(out, groups[0])

	i := 1
	for i < len(groups) {
		last := &out[len(out)-1]
		g := groups[i]

		if i+1 < len(groups) && last.On != g.On && groups[i+1].On == last.On && g.DurationS <= maxGapS {
			next := groups[i+1]
			last.EndS = next.EndS
			last.Freqs = append(last.Freqs, g.Freqs...)
			last.Freqs = append(last.Freqs, next.Freqs...)
			last.DurationS = last.EndS - last.StartS
			i += 2
			continue
		}

		gap := g.StartS - last.EndS
		if last.On == g.On && gap > 0 && gap <= maxGapS {
			last.EndS = g.EndS
			last.Freqs = append(last.Freqs, g.Freqs...)
			last.DurationS = last.EndS - last.StartS
			i++
			continue
		}

		out = append(out, g)
		i++
	}
	return out
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
