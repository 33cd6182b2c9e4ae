package modelapi

import "fmt"

// ClientError is the base error type shared by all modelapi errors.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ConfigurationError indicates missing or invalid client configuration,
// such as an absent credential. Never retried.
type ConfigurationError struct{ ClientError }

// UnsupportedModelTypeError indicates a model-type tag outside the set an
// adapter can dispatch on. Programmer error, never retried.
type UnsupportedModelTypeError struct {
	ClientError
	ModelType ModelType
}

// NewUnsupportedModelTypeError builds the error for the given tag.
func NewUnsupportedModelTypeError(t ModelType) *UnsupportedModelTypeError {
	return &UnsupportedModelTypeError{
		ClientError: ClientError{Message: fmt.Sprintf("model type %q is not supported", t.String())},
		ModelType:   t,
	}
}

// InvalidInputError indicates the call input does not have the shape the
// selected model type requires. Caller error, never retried.
type InvalidInputError struct{ ClientError }

// ProviderError is an error returned by a model provider. Retryable reflects
// the provider client's own classification and is honored by IsRetryable.
type ProviderError struct {
	ClientError
	Provider   string
	StatusCode int
	ErrorCode  string
	Retryable  bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Concrete provider error kinds.

type BadRequestError struct{ ProviderError }
type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type NotFoundError struct{ ProviderError }
type UnprocessableEntityError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ServerError struct{ ProviderError }

// RequestTimeoutError covers both HTTP 408 and transport-level timeouts of an
// in-flight attempt.
type RequestTimeoutError struct{ ClientError }

// AbortError indicates the caller's context was cancelled while waiting to
// retry.
type AbortError struct{ ClientError }

// ErrorFromStatusCode maps an HTTP status code to the matching error kind.
// 400 and 422 are classified retryable, matching the client this replaces.
func ErrorFromStatusCode(statusCode int, message, provider, errorCode string) error {
	pe := ProviderError{
		ClientError: ClientError{Message: message},
		Provider:    provider,
		StatusCode:  statusCode,
		ErrorCode:   errorCode,
	}

	switch statusCode {
	case 400:
		pe.Retryable = true
		return &BadRequestError{ProviderError: pe}
	case 401:
		return &AuthenticationError{ProviderError: pe}
	case 403:
		return &AccessDeniedError{ProviderError: pe}
	case 404:
		return &NotFoundError{ProviderError: pe}
	case 408:
		return &RequestTimeoutError{ClientError: ClientError{Message: message}}
	case 422:
		pe.Retryable = true
		return &UnprocessableEntityError{ProviderError: pe}
	case 429:
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case 500, 502, 503, 504:
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	default:
		return &pe
	}
}

// IsRetryable reports whether err is one of the transient kinds a retry
// policy may re-attempt: request timeout, server error, rate limit,
// unprocessable entity, and bad request. Everything else, including unknown
// error kinds, propagates on first occurrence.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *RequestTimeoutError:
		return true
	case *ServerError:
		return true
	case *RateLimitError:
		return true
	case *UnprocessableEntityError:
		return true
	case *BadRequestError:
		return true
	case *ProviderError:
		return e.Retryable
	default:
		return false
	}
}
