package gollmclient

import (
	"strings"

	"github.com/MaTriXy/modelbridge/modelapi"
)

// translateError classifies a gollm error into the modelapi taxonomy. gollm
// surfaces provider failures as plain errors, so classification is by message
// content. Unrecognized errors are returned unchanged and are not retried.
func translateError(provider string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	provErr := func(status int, retryable bool) modelapi.ProviderError {
		return modelapi.ProviderError{
			ClientError: modelapi.ClientError{Message: msg, Cause: err},
			Provider:    provider,
			StatusCode:  status,
			Retryable:   retryable,
		}
	}

	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "invalid api key"), strings.Contains(lower, "invalid key"):
		return &modelapi.AuthenticationError{ProviderError: provErr(401, false)}
	case strings.Contains(lower, "403"), strings.Contains(lower, "forbidden"):
		return &modelapi.AccessDeniedError{ProviderError: provErr(403, false)}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &modelapi.NotFoundError{ProviderError: provErr(404, false)}
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return &modelapi.RateLimitError{ProviderError: provErr(429, true)}
	case strings.Contains(lower, "500"), strings.Contains(lower, "internal server"),
		strings.Contains(lower, "502"), strings.Contains(lower, "503"):
		return &modelapi.ServerError{ProviderError: provErr(500, true)}
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return &modelapi.RequestTimeoutError{ClientError: modelapi.ClientError{Message: msg, Cause: err}}
	default:
		return err
	}
}
