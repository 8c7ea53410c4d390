package remote

import (
	"context"
	"fmt"

	"github.com/mbolis/survey-publisher/log"
)

type ErrorKind string

const (
	// NetworkError is a transport failure: the backend never answered.
	NetworkError ErrorKind = "NETWORK_ERROR"
	// ApiError is a failure envelope or a non-2xx status from the backend.
	ApiError ErrorKind = "API_ERROR"
	// ValidationError is a request refused before it was sent.
	ValidationError ErrorKind = "VALIDATION_ERROR"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
	// Status is the HTTP status, 0 when there was no response.
	Status int `json:"status,omitempty"`
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is either Ok(Data) or Fail(Err). Fallback is set when Data is
// substitute data and holds the failure it replaced.
type Result[T any] struct {
	OK       bool
	Data     T
	Err      *Error
	Fallback *Error
}

func Ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func Fail[T any](kind ErrorKind, code, message string) Result[T] {
	return Result[T]{Err: &Error{Kind: kind, Code: code, Message: message}}
}

func failWith[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

// Unwrap turns the result into Go's usual pair.
func (r Result[T]) Unwrap() (T, error) {
	if !r.OK {
		return r.Data, r.Err
	}
	return r.Data, nil
}

// UsedFallback reports whether Data is substitute data.
func (r Result[T]) UsedFallback() bool {
	return r.Fallback != nil
}

// WithFallback runs call and always returns a successful result. When call
// fails or panics, the result carries fallback as its data and the failure
// in Fallback, for callers that want to warn about it.
func WithFallback[T any](ctx context.Context, call func(context.Context) Result[T], fallback T) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("remote call panicked, using fallback data: %v", r)
			res = Result[T]{
				OK:       true,
				Data:     fallback,
				Fallback: &Error{Kind: NetworkError, Code: "NETWORK_ERROR", Message: fmt.Sprint(r)},
			}
		}
	}()

	res = call(ctx)
	if res.OK {
		return res
	}

	failure := res.Err
	if failure == nil {
		failure = &Error{Kind: ApiError, Message: "unknown error"}
	}
	log.Warnf("remote call failed, using fallback data: %s", failure)
	return Result[T]{OK: true, Data: fallback, Fallback: failure}
}
