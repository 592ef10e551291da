// Package notation compiles the mini-notation rhythm grammar (spec.md
// §4.2) into pattern.Pattern[string]. It never materializes events; a
// compiled pattern is just a closure, the same as any other
// pattern.Pattern value.
package notation

import (
	"fmt"
	"strings"
)

// ParseError reports a fatal mini-notation compile failure. Per spec.md
// §4.2, unbalanced brackets (and other malformed input) abort the graph
// build while the previous graph keeps running — the caller decides that
// policy, this package only reports the location and reason.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("notation: %s (in %q)", e.Msg, e.Input)
}

// splitTopLevel splits s on every rune in seps that occurs outside [...],
// <...> and (...) nesting.
func splitTopLevel(s string, seps string) ([]string, error) {
	var out []string
	var b strings.Builder
	depthSquare, depthAngle, depthParen := 0, 0, 0
	for _, r := range s {
		switch r {
		case '[':
			depthSquare++
		case ']':
			depthSquare--
			if depthSquare < 0 {
				return nil, &ParseError{Input: s, Msg: "unbalanced ]"}
			}
		case '<':
			depthAngle++
		case '>':
			depthAngle--
			if depthAngle < 0 {
				return nil, &ParseError{Input: s, Msg: "unbalanced >"}
			}
		case '(':
			depthParen++
		case ')':
			depthParen--
			if depthParen < 0 {
				return nil, &ParseError{Input: s, Msg: "unbalanced )"}
			}
		}
		atDepth0 := depthSquare == 0 && depthAngle == 0 && depthParen == 0
		if atDepth0 && strings.ContainsRune(seps, r) {
			out = append(out, b.String())
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	if depthSquare != 0 {
		return nil, &ParseError{Input: s, Msg: "unbalanced ["}
	}
	if depthAngle != 0 {
		return nil, &ParseError{Input: s, Msg: "unbalanced <"}
	}
	if depthParen != 0 {
		return nil, &ParseError{Input: s, Msg: "unbalanced ("}
	}
	out = append(out, b.String())
	return out, nil
}

// splitTopLevelWhitespace splits s into whitespace-separated terms at
// bracket depth 0, dropping empty tokens produced by runs of whitespace.
func splitTopLevelWhitespace(s string) ([]string, error) {
	raw, err := splitTopLevel(s, " \t\n")
	if err != nil {
		return nil, err
	}
	out := raw[:0:0]
	for _, t := range raw {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// stripOuter removes a single layer of open/close if s is fully wrapped
// by it (e.g. "[a b]" -> "a b"). Returns s unchanged and ok=false
// otherwise.
func stripOuter(s string, open, close byte) (string, bool) {
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 && i != len(s)-1 {
				return s, false
			}
		}
	}
	return s[1 : len(s)-1], true
}
