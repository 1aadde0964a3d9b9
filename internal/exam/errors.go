package exam

import (
	"errors"
	"fmt"
)

// Kind classifies every failure that aborts a run.
type Kind int

const (
	KindMalformedFilename Kind = iota + 1
	KindUnrecognizedDescription
	KindInvalidDate
	KindUnknownCourse
	KindDuplicateLanguage
	KindTokenNotFound
	KindLoginFailed
	KindSubmissionFailed
)

func (k Kind) String() string {
	switch k {
	case KindMalformedFilename:
		return "malformed filename"
	case KindUnrecognizedDescription:
		return "unrecognized description"
	case KindInvalidDate:
		return "invalid date"
	case KindUnknownCourse:
		return "unknown course"
	case KindDuplicateLanguage:
		return "duplicate language"
	case KindTokenNotFound:
		return "csrf token not found"
	case KindLoginFailed:
		return "login failed"
	case KindSubmissionFailed:
		return "submission failed"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type of the whole pipeline. Subject names the offending
// file or condition.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
	// Hint is an optional suggestion shown to the user, ex. a similar course code.
	Hint string
}

func NewError(kind Kind, subject string, err error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Subject)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Hint)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err* values below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMalformedFilename       = &Error{Kind: KindMalformedFilename}
	ErrUnrecognizedDescription = &Error{Kind: KindUnrecognizedDescription}
	ErrInvalidDate             = &Error{Kind: KindInvalidDate}
	ErrUnknownCourse           = &Error{Kind: KindUnknownCourse}
	ErrDuplicateLanguage       = &Error{Kind: KindDuplicateLanguage}
	ErrTokenNotFound           = &Error{Kind: KindTokenNotFound}
	ErrLoginFailed             = &Error{Kind: KindLoginFailed}
	ErrSubmissionFailed        = &Error{Kind: KindSubmissionFailed}
)

// KindOf returns the kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
