// SPDX-License-Identifier: BSD-3-Clause

// Package corestate implements the three-state finite automaton shared by
// every minification kernel (scalar, SIMD, streaming, chunk- and
// pipeline-parallel). Keeping the automaton in one place means every kernel
// agrees, by construction, on what "inside a string" means at a given byte
// offset -- the property the chunk-parallel split-point search and the
// pipeline's cross-seam string tracking both depend on.
package corestate

// State is one of the three automaton states. The zero value is Outside,
// which is both the initial and the only terminal state.
type State int

const (
	// Outside is the initial/terminal state: not inside a JSON string literal.
	Outside State = iota
	// InsideString is positioned inside a string literal, previous byte was
	// not an unresolved backslash.
	InsideString
	// InsideStringAfterBackslash is inside a string literal, immediately
	// after an escape-introducing backslash; the next byte is always
	// swallowed unconditionally.
	InsideStringAfterBackslash
)

func (s State) String() string {
	switch s {
	case Outside:
		return "outside_string"
	case InsideString:
		return "inside_string"
	case InsideStringAfterBackslash:
		return "inside_string_after_backslash"
	default:
		return "unknown"
	}
}

const (
	Quote     byte = 0x22
	Backslash byte = 0x5C
	Space     byte = 0x20
	Tab       byte = 0x09
	LF        byte = 0x0A
	CR        byte = 0x0D
)

// IsWhitespace reports whether b is one of the four JSON insignificant
// whitespace bytes. A 256-entry table, not a switch, so the hot path is a
// single indexed load; the scalar kernel's branchless emit depends on
// this being O(1) with no branches.
var IsWhitespace [256]bool

func init() {
	IsWhitespace[Space] = true
	IsWhitespace[Tab] = true
	IsWhitespace[LF] = true
	IsWhitespace[CR] = true
}

// Step advances the automaton by one input byte b, returning the next state.
// It does not decide whether b should be copied to the output; that is a
// function of the *current* state, not the next one (see scalarkernel).
func Step(current State, b byte) State {
	switch current {
	case Outside:
		if b == Quote {
			return InsideString
		}
		return Outside
	case InsideString:
		switch b {
		case Quote:
			return Outside
		case Backslash:
			return InsideStringAfterBackslash
		default:
			return InsideString
		}
	case InsideStringAfterBackslash:
		// Unconditional return to InsideString after exactly one byte.
		return InsideString
	default:
		return Outside
	}
}

// BracketDepth tracks the `{[`/`}]` nesting counter used by the validator.
// Underflow is reported through Apply's return value; the counter itself is
// not clamped and keeps decreasing if the caller goes on applying bytes.
type BracketDepth struct {
	depth int
}

// Apply folds one byte into the depth counter when st is Outside (brackets
// inside a string literal are just bytes, not structure). Returns false if
// the byte would take the depth negative (unbalanced close).
func (d *BracketDepth) Apply(st State, b byte) bool {
	if st != Outside {
		return true
	}
	switch b {
	case '{', '[':
		d.depth++
	case '}', ']':
		d.depth--
		if d.depth < 0 {
			return false
		}
	}
	return true
}

func (d BracketDepth) Value() int { return d.depth }
