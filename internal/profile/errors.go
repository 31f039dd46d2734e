package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports empty text, an empty profile source or a
	// directory without profiles.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedProfile reports a profile line that is not an n-gram
	// followed by a weight.
	ErrMalformedProfile = errors.New("malformed profile")
)

// MalformedProfileError identifies the offending line of a profile source.
type MalformedProfileError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *MalformedProfileError) Error() string {
	msg := fmt.Sprintf("invalid ngram entry %q at %s:%d", e.Text, e.Path, e.Line)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedProfileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedProfile}
	}
	return []error{ErrMalformedProfile, e.Err}
}
