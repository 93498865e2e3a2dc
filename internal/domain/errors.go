package domain

import "fmt"

// ValidationError marks malformed caller input: out-of-range rating,
// non-positive weight, missing required field.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

// ConfigError marks an unusable weight configuration.
type ConfigError struct {
	Msg string
}

func (e ConfigError) Error() string {
	return e.Msg
}

// UpstreamError marks an inference backend that was unreachable or returned
// an unusable payload.
type UpstreamError struct {
	Msg string
	Err error
}

func (e UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}
	return e.Msg
}

func (e UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError is the UpstreamError subset for replies that violate the
// required six-aspect schema.
type ParseError struct {
	Msg string
	Err error
}

func (e ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}
	return e.Msg
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError marks a referenced record or variant that does not exist.
type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

// PersistenceError marks a store write that failed after an otherwise
// successful computation. In-memory state may already reflect the change.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s failed: %s", e.Op, e.Err.Error())
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}
