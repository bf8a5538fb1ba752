package service

import (
	"errors"
	"fmt"
)

// The error kinds the HTTP boundary maps to status codes. RateLimited is
// handled inside the transcription adapter and is not normally surfaced.
type ErrorKind int

const (
	KindInvalidInput ErrorKind = iota
	KindNotFound
	KindUpstream
	KindParse
	KindRateLimited
)

// Error is the typed failure returned by adapters and the pipeline.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Msg, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewInvalidInput reports unusable caller-supplied data.
func NewInvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

// NewNotFound reports an absent resource, local or remote.
func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// NewUpstream reports a non-success response from a remote dependency. The
// raw response body is kept for diagnostics.
func NewUpstream(msg string, status int, body string) *Error {
	return &Error{
		Kind:   KindUpstream,
		Msg:    msg,
		Detail: fmt.Sprintf("status %d: %s", status, body),
	}
}

// NewParse reports a success response this system cannot interpret.
func NewParse(msg string, err error) *Error {
	return &Error{Kind: KindParse, Msg: msg, Err: err}
}

// NewRateLimited reports transient upstream throttling.
func NewRateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Msg: msg}
}

// KindOf extracts the error kind, defaulting to KindUpstream for errors that
// carry no classification.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
