package stryve

import (
	"errors"
	"fmt"
)

var ErrInvalidArgument = errors.New("either order id or merchant reference is required")

// AuthenticationError is returned when /payment-gateway/authenticate does not
// yield a usable token.
type AuthenticationError struct {
	Message    string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return "stryve authentication failed: " + describe(e.Message, e.StatusCode)
}

// OrderCreationError is returned when /payment-gateway/create-order rejects
// the order or answers without a payment URL.
type OrderCreationError struct {
	Message    string
	StatusCode int
}

func (e *OrderCreationError) Error() string {
	return "stryve order creation failed: " + describe(e.Message, e.StatusCode)
}

// VerificationError is returned when /payment-gateway/get-order fails.
type VerificationError struct {
	Message    string
	StatusCode int
}

func (e *VerificationError) Error() string {
	return "stryve get order failed: " + describe(e.Message, e.StatusCode)
}

// UpstreamMessage reports the description of a protocol error, including the
// message Stryve sent back. ok is false for any other error.
func UpstreamMessage(err error) (string, bool) {
	var authErr *AuthenticationError
	var createErr *OrderCreationError
	var verifyErr *VerificationError
	switch {
	case errors.As(err, &authErr):
		return authErr.Error(), true
	case errors.As(err, &createErr):
		return createErr.Error(), true
	case errors.As(err, &verifyErr):
		return verifyErr.Error(), true
	}
	return "", false
}

func describe(message string, status int) string {
	if message != "" {
		return message
	}
	if status != 0 {
		return fmt.Sprintf("HTTP %d", status)
	}
	return "unknown error"
}
