// SPDX-License-Identifier: BSD-3-Clause

// Package validate implements the lightweight structural validator. It is
// deliberately not a JSON grammar validator: it only confirms balanced
// bracket/brace nesting and legal quote/escape pairing, the two
// properties every kernel's correctness depends on. Numbers, literals and
// key ordering are not checked.
package validate

import "turbomin/internal/corestate"

// ErrorKind enumerates the structural input errors.
type ErrorKind string

const (
	UnterminatedString ErrorKind = "unterminated_string"
	UnbalancedBracket  ErrorKind = "unbalanced_bracket"
	InvalidEscape      ErrorKind = "invalid_escape"
	TruncatedInput     ErrorKind = "truncated_input"
)

// Error reports a validation failure with the byte offset it was
// detected at.
type Error struct {
	Kind       ErrorKind
	ByteOffset int
}

func (e *Error) Error() string {
	return string(e.Kind)
}

// legalEscape marks the bytes allowed to follow a backslash inside a
// string literal (RFC 8259 §7).
var legalEscape [256]bool

func init() {
	for _, b := range []byte(`"\/bfnrtu`) {
		legalEscape[b] = true
	}
}

// Validate runs a single pass of the string automaton plus a
// bracket/brace depth counter. Success requires ending in Outside with
// depth zero.
func Validate(input []byte) *Error {
	return run(input, true)
}

// ValidateChunk runs the same single pass as Validate but with no bracket
// accounting at all: it is meant for a single chunk of a larger document,
// where a chunk boundary legitimately falls in the middle of an open
// object or array. A chunk routinely contains closing brackets whose
// opens live in an earlier chunk, so neither a negative running depth nor
// a nonzero final depth means anything chunk-locally; whole-document
// balance is Validate's job. What IS a per-chunk fault is an unterminated
// string, a truncated escape, or an illegal escape introducer, since
// chunks are cut only at points outside any string.
func ValidateChunk(input []byte) *Error {
	return run(input, false)
}

func run(input []byte, wholeDocument bool) *Error {
	st := corestate.Outside
	var depth corestate.BracketDepth
	for i, b := range input {
		if st == corestate.InsideString && b == corestate.Backslash {
			// About to enter InsideStringAfterBackslash; there must be a
			// following byte for the escape to resolve against, and it
			// must be one of the legal escape introducers.
			if i+1 >= len(input) {
				return &Error{Kind: TruncatedInput, ByteOffset: i}
			}
			if !legalEscape[input[i+1]] {
				return &Error{Kind: InvalidEscape, ByteOffset: i + 1}
			}
		}
		if wholeDocument && !depth.Apply(st, b) {
			return &Error{Kind: UnbalancedBracket, ByteOffset: i}
		}
		st = corestate.Step(st, b)
	}
	if st == corestate.InsideString || st == corestate.InsideStringAfterBackslash {
		return &Error{Kind: UnterminatedString, ByteOffset: len(input)}
	}
	if wholeDocument && depth.Value() != 0 {
		return &Error{Kind: UnbalancedBracket, ByteOffset: len(input)}
	}
	return nil
}
