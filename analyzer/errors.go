package analyzer

import "fmt"

// NameError is raised by a reference to an undefined variable or function.
type NameError struct {
	Name string
}

func (e NameError) Error() string {
	return fmt.Sprintf("💥 bitforge name error:\nunknown name: %s", e.Name)
}

// OperatorError is raised when a binary operator outside the implemented
// set reaches the analyzer, or when a shift/rotate's right-hand side is not
// a data literal (spec §9: "treat this as an error in a faithful
// redesign").
type OperatorError struct {
	Message string
}

func (e OperatorError) Error() string {
	return "💥 bitforge operator error:\n" + e.Message
}

// RangeError is raised by an out-of-bounds or reversed index/slice.
type RangeError struct {
	Message string
}

func (e RangeError) Error() string {
	return "💥 bitforge range error:\n" + e.Message
}

// CallError is raised by a call naming a function not present in the
// function table.
type CallError struct {
	Message string
}

func (e CallError) Error() string {
	return "💥 bitforge call error:\n" + e.Message
}

// EntryError is raised when no 'main' function is present, or when its
// declared argument bit-width is missing or non-positive.
type EntryError struct {
	Message string
}

func (e EntryError) Error() string {
	return "💥 bitforge entry error:\n" + e.Message
}

// DeveloperError marks an internal invariant violation - a code path the
// grammar should make unreachable. Kept distinct from the program-facing
// errors above, in the same spirit as the teacher's own 🤖-prefixed
// internal error type.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return "🤖 bitforge internal error:\n" + e.Message
}
