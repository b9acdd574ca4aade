package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/meguminnnnnnnnn/go-openai"
	ollama "github.com/ollama/ollama/api"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind separates failures worth retrying from failures that will
// repeat on every attempt
type ErrorKind int

const (
	Transient ErrorKind = iota
	Permanent
)

// String returns a string representation of the error kind
func (k ErrorKind) String() string {
	if k == Permanent {
		return "permanent"
	}
	return "transient"
}

// ServiceError is a classified embedding failure
type ServiceError struct {
	Kind     ErrorKind
	Op       string
	Attempts int
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s: %s error after %d attempts: %v", e.Op, e.Kind, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is a permanent ServiceError
func IsPermanent(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == Permanent
}

// IsTransient reports whether err is a transient ServiceError
func IsTransient(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == Transient
}

// Classify wraps err in a ServiceError. Errors that are already classified
// keep their kind.
func Classify(op string, err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Kind: kindOf(err), Op: op, Err: err}
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, ErrDimensionMismatch) || errors.Is(err, ErrEmptyInput) {
		return Permanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}

	var ollamaErr ollama.StatusError
	if errors.As(err, &ollamaErr) {
		return httpKind(ollamaErr.StatusCode)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return httpKind(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return httpKind(reqErr.HTTPStatusCode)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return httpKind(gErr.Code)
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return grpcKind(s.Code())
	}

	// network errors and anything unrecognized
	return Transient
}

// httpKind classifies an HTTP status. 400 means a bad model or request
// configuration and will not succeed on retry.
func httpKind(code int) ErrorKind {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return Transient
	case code >= 400:
		return Permanent
	default:
		return Transient
	}
}

func grpcKind(code codes.Code) ErrorKind {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument,
		codes.NotFound, codes.FailedPrecondition, codes.Unimplemented:
		return Permanent
	default:
		return Transient
	}
}
