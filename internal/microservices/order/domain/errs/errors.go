package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidOrder      Kind = "InvalidOrder"
	KindNotFound          Kind = "NotFound"
	KindInvalidTransition Kind = "InvalidTransition"
	KindStore             Kind = "StoreError"
)

// Sentinels for errors.Is; every *Error matches the sentinel of its kind.
var (
	ErrInvalidOrder      = errors.New("invalid order")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStore             = errors.New("order store failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidOrder:
		return ErrInvalidOrder
	case KindNotFound:
		return ErrNotFound
	case KindInvalidTransition:
		return ErrInvalidTransition
	case KindStore:
		return ErrStore
	}
	return nil
}

// Error is the structured failure returned by the order store and the
// lifecycle engine. Current and Requested are only set for InvalidTransition.
type Error struct {
	Kind      Kind
	Message   string
	ID        string
	Current   string
	Requested string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func InvalidOrder(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidOrder, Message: fmt.Sprintf(format, args...)}
}

func NotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("order %s not found", id), ID: id}
}

func InvalidTransition(id, current, requested string) *Error {
	return &Error{
		Kind:      KindInvalidTransition,
		Message:   fmt.Sprintf("cannot move from '%s' to '%s'", current, requested),
		ID:        id,
		Current:   current,
		Requested: requested,
	}
}

func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, Err: err}
}

// KindOf extracts the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
