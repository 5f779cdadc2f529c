package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrEmptyContent   = fmt.Errorf("content must not be empty")
	ErrContentTooLong = fmt.Errorf("content is too long")
	ErrNotMember      = fmt.Errorf("profile is not a member of the organization")
	ErrInvalidInput   = fmt.Errorf("invalid input")

	ErrProfileNotFound = fmt.Errorf("profile not found")
	ErrChatNotFound    = fmt.Errorf("chat not found")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnauthenticated    = fmt.Errorf("unauthenticated")
	ErrForbidden          = fmt.Errorf("forbidden")

	ErrUnknownOperation   = fmt.Errorf("unknown subscription operation")
	ErrSubscriptionClosed = fmt.Errorf("subscription closed")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)
