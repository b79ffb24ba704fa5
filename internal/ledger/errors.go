package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProviderNotFound = errors.New("ledger: provider not found")
	ErrInvoiceNotFound  = errors.New("ledger: invoice not found")
	ErrInvalidAmount    = errors.New("ledger: payment amount must be positive")
	ErrEmptyInvoice     = errors.New("ledger: invoice has no items")
	ErrInvalidInput     = errors.New("ledger: invalid input")
	ErrAmbiguousAmount  = errors.New("ledger: ambiguous amount, add a decimal part")
)

// ErrorKind classifies a failed Result.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindBackend      ErrorKind = "backend"
	KindPrecondition ErrorKind = "precondition"
)

// Result is the outcome of a store mutation. Failures never panic; the
// message is meant for the user and Kind for the caller's branching.
type Result[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Kind    ErrorKind         `json:"kind,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`

	cause error
}

// Err returns nil on success, otherwise the underlying cause.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	if r.cause != nil {
		return r.cause
	}
	return errors.New(r.Error)
}

func ok[T any](v T) Result[T] {
	return Result[T]{Success: true, Data: v}
}

func fail[T any](kind ErrorKind, cause error, msg string) Result[T] {
	return Result[T]{Kind: kind, Error: msg, cause: cause}
}

func invalid[T any](cause error, fields map[string]string) Result[T] {
	r := fail[T](KindValidation, cause, describeFields(fields))
	r.Fields = fields
	return r
}

// serverDetailer is implemented by transport errors that carry a
// server-supplied message.
type serverDetailer interface {
	ServerDetail() string
}

// backendFailure converts a Backend API error into a Result, preferring the
// server's own message over the transport description.
func backendFailure[T any](op string, err error) Result[T] {
	kind := KindBackend
	if errors.Is(err, ErrProviderNotFound) {
		kind = KindNotFound
	}
	msg := err.Error()
	var sd serverDetailer
	if errors.As(err, &sd) && sd.ServerDetail() != "" {
		msg = sd.ServerDetail()
	}
	return fail[T](kind, fmt.Errorf("%s: %w", op, err), msg)
}

func describeFields(fields map[string]string) string {
	if len(fields) == 0 {
		return "invalid input"
	}
	parts := make([]string, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
