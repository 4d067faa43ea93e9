// Package apierror defines the JSON error body shared by every endpoint:
//
//	{"error": "<message>", "details": "<optional>"}
package apierror

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// Error is an HTTP error with a user-facing message.
type Error struct {
	status  int
	Message string `doc:"Human readable error message" json:"error"`
	Details string `doc:"Optional diagnostic detail"   json:"details,omitempty"`
}

// New creates an error with the given status and message.
func New(status int, msg string) *Error {
	return &Error{status: status, Message: msg}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details

	return &c
}

func (e *Error) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *Error) GetStatus() int {
	return e.status
}

func BadRequest(msg string) *Error { return New(http.StatusBadRequest, msg) }

func NotFound(msg string) *Error { return New(http.StatusNotFound, msg) }

func TooManyRequests(msg string) *Error { return New(http.StatusTooManyRequests, msg) }

func Internal(msg string) *Error { return New(http.StatusInternalServerError, msg) }

var installOnce sync.Once

// Install makes huma build its own errors (validation failures, middleware
// rejections written with huma.WriteErr) in this package's shape.
func Install() {
	installOnce.Do(func() {
		huma.NewError = fromHuma
	})
}

func fromHuma(status int, msg string, errs ...error) huma.StatusError {
	details := make([]string, 0, len(errs))

	for _, err := range errs {
		if err == nil {
			continue
		}

		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			details = append(details, detail.Error())

			continue
		}

		details = append(details, err.Error())
	}

	return &Error{
		status:  status,
		Message: msg,
		Details: strings.Join(details, "; "),
	}
}

var _ huma.StatusError = (*Error)(nil)
