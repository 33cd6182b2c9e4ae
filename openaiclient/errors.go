package openaiclient

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/MaTriXy/modelbridge/modelapi"
)

// translateError converts an SDK error into the modelapi taxonomy so the
// retry policy can classify it. Errors it does not recognize are returned
// unchanged and propagate to the caller on the first occurrence.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprintf("%v", apiErr.Code)
		}
		return modelapi.ErrorFromStatusCode(apiErr.HTTPStatusCode, apiErr.Message, ProviderName, code)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return modelapi.ErrorFromStatusCode(reqErr.HTTPStatusCode, reqErr.Error(), ProviderName, "")
	}

	// Transport-level timeouts of an in-flight attempt count against the
	// retry budget as request timeouts.
	if errors.Is(err, context.DeadlineExceeded) {
		return &modelapi.RequestTimeoutError{ClientError: modelapi.ClientError{
			Message: "request timed out",
			Cause:   err,
		}}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &modelapi.RequestTimeoutError{ClientError: modelapi.ClientError{
			Message: "request timed out",
			Cause:   err,
		}}
	}

	return err
}
