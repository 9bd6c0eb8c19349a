// Package apperr defines the error kinds shared by the booking and flight
// services and their mapping onto gRPC status codes.
package apperr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind int

const (
	KindService Kind = iota
	KindValidation
	KindNotFound
	KindUnavailable
	KindCriticalInconsistency
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindCriticalInconsistency:
		return "critical_inconsistency"
	case KindBusy:
		return "busy"
	default:
		return "service"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, apperr.ErrNotFound) and friends match on kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrUnavailable           = &Error{Kind: KindUnavailable}
	ErrService               = &Error{Kind: KindService}
	ErrCriticalInconsistency = &Error{Kind: KindCriticalInconsistency}
	ErrBusy                  = &Error{Kind: KindBusy}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unavailable(msg string, cause error) error {
	return &Error{Kind: KindUnavailable, Msg: msg, Err: cause}
}

func Service(msg string, cause error) error {
	return &Error{Kind: KindService, Msg: msg, Err: cause}
}

func CriticalInconsistency(msg string, cause error) error {
	return &Error{Kind: KindCriticalInconsistency, Msg: msg, Err: cause}
}

// Busy reports lost contention on a single record. Callers may retry at once;
// it says nothing about the health of the service that returned it.
func Busy(msg string, cause error) error {
	return &Error{Kind: KindBusy, Msg: msg, Err: cause}
}

// KindOf reports the kind of err. Errors outside the taxonomy are service errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindService
}

// Message returns the top-level message without the wrapped cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

func GRPCCode(k Kind) codes.Code {
	switch k {
	case KindValidation:
		return codes.FailedPrecondition
	case KindNotFound:
		return codes.NotFound
	case KindUnavailable:
		return codes.Unavailable
	case KindCriticalInconsistency:
		return codes.DataLoss
	case KindBusy:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error carrying its kind as the code.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return status.Error(GRPCCode(e.Kind), e.Msg)
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, err.Error())
}
