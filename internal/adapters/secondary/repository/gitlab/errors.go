package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"

	"github.com/denchenko/mrdigest/internal/core/domain"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const maxErrorBody = 200

// classify turns a client-go failure into the domain error taxonomy.
// resp may be nil when no HTTP response was received.
func classify(resp *gitlab.Response, err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	var errResp *gitlab.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return domain.NewStatusError(errResp.Response.StatusCode, resource, errorBody(errResp))
	}

	if resp != nil && resp.Response != nil && !isSuccess(resp.StatusCode) {
		return domain.NewStatusError(resp.StatusCode, resource, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.Error{Kind: domain.ErrTimeout, Resource: resource, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.Error{Kind: domain.ErrTimeout, Resource: resource, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &domain.Error{Kind: domain.ErrParse, Resource: resource, Err: err}
	}

	return &domain.Error{Kind: domain.ErrNetwork, Resource: resource, Err: err}
}

func errorBody(errResp *gitlab.ErrorResponse) string {
	body := errResp.Message
	if body == "" {
		body = string(errResp.Body)
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	return body
}

func isSuccess(status int) bool {
	return status >= 200 && status < 400
}
