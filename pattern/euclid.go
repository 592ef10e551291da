package pattern

// Euclid returns a boolean pattern of n per-cycle steps with k pulses
// distributed via the Björklund algorithm (Toussaint's "Euclidean rhythm"
// construction), filling exactly one cycle.
func Euclid(k, n int) Pattern[bool] {
	steps := bjorklund(k, n)
	pats := make([]Pattern[bool], len(steps))
	for i, on := range steps {
		pats[i] = Pure(on)
	}
	return Fastcat(pats...)
}

// EuclidRot is Euclid(k,n) left-rotated by r steps.
func EuclidRot(k, n, r int) Pattern[bool] {
	steps := bjorklund(k, n)
	if len(steps) == 0 {
		return Silence[bool]()
	}
	rot := make([]bool, len(steps))
	ln := len(steps)
	for i := range steps {
		rot[i] = steps[(i+r%ln+ln)%ln]
	}
	pats := make([]Pattern[bool], len(rot))
	for i, on := range rot {
		pats[i] = Pure(on)
	}
	return Fastcat(pats...)
}

// bjorklund distributes k pulses as evenly as possible across n steps.
// k<=0 yields all-rest, k>=n yields all-hit.
func bjorklund(k, n int) []bool {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		return make([]bool, n)
	}
	if k >= n {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out
	}

	// Standard bucket-based construction: groups of "pulse+" and "pulse only"
	// are repeatedly merged until only one or zero "remainder" groups remain.
	counts := make([]int, 0, k)
	remainders := make([]int, 0, k)

	divisor := n - k
	remainders = append(remainders, k)
	level := 0
	for {
		counts = append(counts, divisor/remainders[level])
		remainders = append(remainders, divisor%remainders[level])
		divisor = remainders[level]
		level++
		if remainders[level] <= 1 {
			break
		}
	}
	counts = append(counts, divisor)

	var build func(level int) []bool
	build = func(level int) []bool {
		if level == -1 {
			return []bool{false}
		}
		if level == -2 {
			return []bool{true}
		}
		var seq []bool
		for i := 0; i < counts[level]; i++ {
			seq = append(seq, build(level-1)...)
		}
		if remainders[level] != 0 {
			seq = append(seq, build(level-2)...)
		}
		return seq
	}

	result := build(level)
	// Rotate so the pattern starts on a pulse, matching the conventional
	// Euclidean-rhythm presentation (e.g. E(3,8) = x..x..x.).
	start := 0
	for i, v := range result {
		if v {
			start = i
			break
		}
	}
	out := make([]bool, len(result))
	for i := range result {
		out[i] = result[(start+i)%len(result)]
	}
	return out
}
