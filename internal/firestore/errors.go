package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a failed Firestore call.
type Kind uint8

const (
	KindOther Kind = iota
	KindNotFound
	// KindUnavailable marks outages worth retrying on the next request.
	KindUnavailable
)

// Error is a Firestore failure annotated with the collection operation,
// e.g. "praxis_settings.get".
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == KindNotFound
	}
	return status.Code(err) == codes.NotFound
}

func IsUnavailable(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindUnavailable
}

// WrapError annotates err with op. Cancellation is returned as the plain
// context error so callers can compare with errors.Is.
func WrapError(op string, err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	kind := KindOther
	switch status.Code(err) {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	case codes.NotFound:
		kind = KindNotFound
	case codes.Unavailable, codes.ResourceExhausted, codes.Internal:
		kind = KindUnavailable
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
