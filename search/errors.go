package search

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed query. Neither kind is retried in place; the
// batch moves on to the next query.
type ErrorKind string

const (
	Transient ErrorKind = "transient" // timeout, connection failure, 5xx
	Upstream  ErrorKind = "upstream"  // API error payload, bad status, malformed body
)

type QueryError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *QueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// KindOf returns the taxonomy label for err. Errors that are not a
// QueryError are treated as transient.
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return Transient
}

func transportError(err error) *QueryError {
	return &QueryError{Kind: Transient, Err: err}
}

func statusError(status int, body string) *QueryError {
	kind := Upstream
	if status >= 500 {
		kind = Transient
	}
	return &QueryError{Kind: kind, Status: status, Err: errors.New(body)}
}
