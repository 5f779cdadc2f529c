package errors

import (
	stderrors "errors"
	"net/http"
)

// Codes follow the GraphQL extension codes the web client already understands.
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// ToHTTP maps a service error to an HTTP status and an error code.
// Unknown errors are reported as internal errors.
func ToHTTP(err error) (int, string) {
	switch {
	case stderrors.Is(err, ErrEmptyContent),
		stderrors.Is(err, ErrContentTooLong),
		stderrors.Is(err, ErrNotMember),
		stderrors.Is(err, ErrInvalidInput),
		stderrors.Is(err, ErrInvalidPassword),
		stderrors.Is(err, ErrUnknownOperation):
		return http.StatusBadRequest, CodeBadUserInput
	case stderrors.Is(err, ErrUnauthenticated),
		stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeUnauthenticated
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case stderrors.Is(err, ErrProfileNotFound),
		stderrors.Is(err, ErrChatNotFound):
		return http.StatusNotFound, CodeNotFound
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
