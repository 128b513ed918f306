// Package errs defines the error kinds shared across the style-analysis
// pipeline, grouped by handling policy rather than by producing package.
package errs

import "fmt"

// Kind classifies an error by how the caller should handle it.
type Kind string

// Error kind constants, mirroring the handling policy table.
const (
	KindValidation         Kind = "validation"
	KindConfig             Kind = "config"
	KindToolkit            Kind = "toolkit"
	KindRule               Kind = "rule"
	KindRewrite            Kind = "rewrite"
	KindStorageUnavailable Kind = "storage_unavailable"
)

// Error is a typed error carrying a stable machine-readable code alongside
// a human message. HTTP-layer adapters (outside this module) map Kind to a
// status class.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given kind, code, and message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Validation builds a KindValidation error, used for malformed client input.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// Config builds a KindConfig error.
func Config(code, message string, err error) *Error {
	return Wrap(KindConfig, code, message, err)
}

// Toolkit builds a KindToolkit error for a failed toolkit call.
func Toolkit(code, message string, err error) *Error {
	return Wrap(KindToolkit, code, message, err)
}

// Rule builds a KindRule error for a rule that raised during analysis.
func Rule(code, message string, err error) *Error {
	return Wrap(KindRule, code, message, err)
}

// Rewrite builds a KindRewrite error for a failed rewrite station.
func Rewrite(code, message string, err error) *Error {
	return Wrap(KindRewrite, code, message, err)
}

// StorageUnavailable builds a KindStorageUnavailable error.
func StorageUnavailable(code, message string, err error) *Error {
	return Wrap(KindStorageUnavailable, code, message, err)
}
