package lending

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected lending operation. The zero value is not a
// valid kind.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBookNotAvailable
	KindBookAlreadyReturned
	KindBorrowingLimitExceeded
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBookNotAvailable:
		return "book_not_available"
	case KindBookAlreadyReturned:
		return "book_already_returned"
	case KindBorrowingLimitExceeded:
		return "borrowing_limit_exceeded"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a business rule rejection. Callers switch on Kind; Message is
// meant for the end user.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrBookNotAvailable       = &Error{Kind: KindBookNotAvailable}
	ErrBookAlreadyReturned    = &Error{Kind: KindBookAlreadyReturned}
	ErrBorrowingLimitExceeded = &Error{Kind: KindBorrowingLimitExceeded}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func BookNotAvailable(format string, args ...any) *Error {
	return newError(KindBookNotAvailable, format, args...)
}

func BookAlreadyReturned(format string, args ...any) *Error {
	return newError(KindBookAlreadyReturned, format, args...)
}

func BorrowingLimitExceeded(format string, args ...any) *Error {
	return newError(KindBorrowingLimitExceeded, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
