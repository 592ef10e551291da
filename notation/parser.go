package notation

import (
	"strconv"
	"strings"

	"phonon/pattern"
)

// parseStack parses a top-level or bracketed body that may contain
// comma-separated polyrhythmic groups ("a b, c d" => stack). A body with
// no top-level comma is just a single sequence.
func parseStack(body string) (pattern.Pattern[string], error) {
	groups, err := splitTopLevel(body, ",")
	if err != nil {
		return pattern.Pattern[string]{}, err
	}
	if len(groups) == 1 {
		return parseSequence(groups[0])
	}
	pats := make([]pattern.Pattern[string], 0, len(groups))
	for _, g := range groups {
		p, err := parseSequence(g)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		pats = append(pats, p)
	}
	return pattern.Stack(pats...), nil
}

// parseSequence parses whitespace-separated steps into one cycle-filling
// TimeCat, honoring each step's weight ("!" / "@w" modifiers).
func parseSequence(body string) (pattern.Pattern[string], error) {
	tokens, err := splitTopLevelWhitespace(body)
	if err != nil {
		return pattern.Pattern[string]{}, err
	}
	if len(tokens) == 0 {
		return pattern.Silence[string](), nil
	}

	var items []pattern.Weighted[string]
	var lastPat *pattern.Pattern[string]
	var lastWeight pattern.Fraction

	for _, tok := range tokens {
		if tok == "!" {
			if lastPat == nil {
				return pattern.Pattern[string]{}, &ParseError{Input: body, Msg: "'!' with no preceding step"}
			}
			items = append(items, pattern.Weighted[string]{Weight: lastWeight, Pat: *lastPat})
			continue
		}
		p, weight, err := parseTerm(tok)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		items = append(items, pattern.Weighted[string]{Weight: weight, Pat: p})
		pp := p
		lastPat = &pp
		lastWeight = weight
	}
	return pattern.TimeCat(items...), nil
}

// parseTerm parses one sequence step: a base atom/group/alternation,
// optional euclid suffix "(k,n[,r])", optional "*n"/"/n" speed suffix,
// and optional trailing weight suffix "!"/"@w".
func parseTerm(tok string) (pattern.Pattern[string], pattern.Fraction, error) {
	weight := pattern.FromInt(1)

	// Trailing weight modifiers bind loosest, so strip them first.
	if strings.HasSuffix(tok, "!") && tok != "!" {
		tok = strings.TrimSuffix(tok, "!")
		weight = pattern.FromInt(2)
	} else if idx := lastTopLevelIndex(tok, '@'); idx >= 0 {
		wstr := tok[idx+1:]
		tok = tok[:idx]
		f, err := strconv.ParseFloat(wstr, 64)
		if err != nil {
			return pattern.Pattern[string]{}, weight, &ParseError{Input: tok, Msg: "bad weight after @"}
		}
		weight = pattern.FromFloat(f)
	}

	p, err := parseModified(tok)
	return p, weight, err
}

// parseModified parses a base term followed by an optional euclid suffix
// and optional fast/slow suffixes: base, base(k,n[,r]), base*n, base/n,
// base(k,n)*m, etc.
func parseModified(tok string) (pattern.Pattern[string], error) {
	// Euclid suffix: base "(" k "," n [ "," r ] ")"
	if idx := lastTopLevelIndex(tok, '('); idx >= 0 && strings.HasSuffix(tok, ")") {
		base := tok[:idx]
		args := tok[idx+1 : len(tok)-1]
		p, err := parseBase(base)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		return applyEuclid(p, args)
	}

	if idx := lastTopLevelIndex(tok, '*'); idx >= 0 {
		base := tok[:idx]
		nstr := tok[idx+1:]
		p, err := parseModified(base)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		n, err := parseFactor(nstr)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		return pattern.Fast(p, n), nil
	}

	if idx := lastTopLevelIndex(tok, '/'); idx >= 0 {
		base := tok[:idx]
		nstr := tok[idx+1:]
		p, err := parseModified(base)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		n, err := parseFactor(nstr)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		return pattern.Slow(p, n), nil
	}

	return parseBase(tok)
}

func parseFactor(s string) (pattern.Fraction, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return pattern.FromFloat(f), nil
	}
	return pattern.Fraction{}, &ParseError{Input: s, Msg: "bad numeric factor"}
}

func applyEuclid(atom pattern.Pattern[string], args string) (pattern.Pattern[string], error) {
	parts, err := splitTopLevel(args, ",")
	if err != nil {
		return pattern.Pattern[string]{}, err
	}
	ints := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return pattern.Pattern[string]{}, &ParseError{Input: args, Msg: "euclid args must be integers"}
		}
		ints[i] = n
	}
	var bools pattern.Pattern[bool]
	switch len(ints) {
	case 2:
		bools = pattern.Euclid(ints[0], ints[1])
	case 3:
		bools = pattern.EuclidRot(ints[0], ints[1], ints[2])
	default:
		return pattern.Pattern[string]{}, &ParseError{Input: args, Msg: "euclid takes 2 or 3 args"}
	}
	// Structure atom's (single, repeating) value onto the euclid rhythm:
	// keep an event wherever the boolean pattern is true, with that
	// event's own span, and look up the atom's value at that time.
	return pattern.New(func(st pattern.State) []pattern.Hap[string] {
		boolHaps := bools.Query(st)
		var out []pattern.Hap[string]
		for _, bh := range boolHaps {
			if !bh.Value || !bh.HasOnset() {
				continue
			}
			var onsetSpan pattern.TimeSpan
			if bh.Whole != nil {
				onsetSpan = *bh.Whole
			} else {
				onsetSpan = bh.Part
			}
			atomHaps := atom.Query(st.WithSpan(onsetSpan))
			for _, ah := range atomHaps {
				out = append(out, pattern.Hap[string]{Whole: &onsetSpan, Part: bh.Part, Value: ah.Value})
			}
		}
		return out
	}), nil
}

// parseBase parses an atom, "~", a bracketed sequence/stack group, or an
// angle-bracketed alternation, with no modifiers attached.
func parseBase(tok string) (pattern.Pattern[string], error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return pattern.Pattern[string]{}, &ParseError{Input: tok, Msg: "empty step"}
	}
	if tok == "~" {
		return pattern.Silence[string](), nil
	}
	if inner, ok := stripOuter(tok, '[', ']'); ok {
		return parseStack(inner)
	}
	if inner, ok := stripOuter(tok, '<', '>'); ok {
		items, err := splitTopLevelWhitespace(inner)
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		pats := make([]pattern.Pattern[string], 0, len(items))
		for _, it := range items {
			p, _, err := parseTerm(it)
			if err != nil {
				return pattern.Pattern[string]{}, err
			}
			pats = append(pats, p)
		}
		return pattern.Slowcat(pats...), nil
	}
	return pattern.Pure(tok), nil
}

// lastTopLevelIndex returns the index of the last occurrence of r in s at
// bracket depth 0, or -1 if none.
func lastTopLevelIndex(s string, r byte) int {
	depthSquare, depthAngle, depthParen := 0, 0, 0
	last := -1
	for i := 0; i < len(s); i++ {
		if s[i] == r && depthSquare == 0 && depthAngle == 0 && depthParen == 0 {
			last = i
		}
		switch s[i] {
		case '[':
			depthSquare++
		case ']':
			depthSquare--
		case '<':
			depthAngle++
		case '>':
			depthAngle--
		case '(':
			depthParen++
		case ')':
			depthParen--
		}
	}
	return last
}
