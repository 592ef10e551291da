package notation

import "phonon/pattern"

// Compile parses a mini-notation source string into a Pattern[string].
// Per spec.md §4.2, a malformed input (unbalanced brackets, bad numeric
// argument) returns a *ParseError and no pattern; the caller's graph-build
// step is expected to reject the new graph and keep the previous one
// running rather than propagate a panic.
func Compile(src string) (pattern.Pattern[string], error) {
	return parseStack(src)
}

// MustCompile is Compile but panics on error; useful for constant
// mini-notation strings embedded in Go code (tests, demos).
func MustCompile(src string) pattern.Pattern[string] {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}
