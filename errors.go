package typedjson

import (
	"fmt"
	"reflect"
)

// NotSupportedError is returned when a declared type or a runtime value shape
// can not be handled at all, e.g. a channel, a map with non string keys or a
// pointer to a pointer.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// DecodeError describes a structural mismatch between a JSON value and the
// descriptor it was decoded against. Loc identifies the offending subtree
// within the document, rendered root to leaf, e.g. ".[2].name".
type DecodeError struct {
	// Msg is the unformatted mismatch description.
	Msg string

	// Loc is the location in the json document where decoding failed.
	Loc string

	// Cause holds the underlying error, if any.
	Cause error

	// set for kind mismatches so that an enclosing optional can
	// re-report them with its full type
	mismatch bool
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: at location %s", e.Msg, e.Loc)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// SyntaxError reports malformed input text. It wraps the error of the
// underlying JSON parser.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid json: %s", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
