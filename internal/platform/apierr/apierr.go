package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/games-aggregator/internal/domain/aggregates"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies err for a response. An *Error anywhere in the chain wins; otherwise the
// package sentinels and the aggregate error codes decide. Unknown errors are 500s.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrConfirmationRequired):
		return New(http.StatusPreconditionRequired, "confirmation_required", err)
	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "timeout", err)
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, string(domainagg.CodeValidation), err)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, string(domainagg.CodeNotFound), err)
	case domainagg.CodeConflict:
		return New(http.StatusConflict, string(domainagg.CodeConflict), err)
	case domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
		return New(http.StatusPreconditionFailed, string(domainagg.CodeOf(err)), err)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, string(domainagg.CodeRetryable), err)
	}
	return New(http.StatusInternalServerError, "internal", err)
}
