package errors

import (
	"errors"
	"fmt"
)

// APIError is an error with a declared HTTP status. Handlers map these to
// the wire envelope directly; anything else becomes a generic 500.
type APIError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Sentinel errors for programmatic matching across packages.
var (
	// ErrMissingSecret indicates the deployment has no crosspost signing
	// secret configured. This is a deployment misconfiguration, not a
	// runtime failure.
	ErrMissingSecret = errors.New("missing crosspost signing secret")

	// ErrRequestTimedOut indicates an outbound cross-site call exceeded
	// its deadline. The remote side may still have completed the
	// operation; callers must treat this as "outcome unknown", not as
	// "did not happen".
	ErrRequestTimedOut = errors.New("cross-site request timed out")

	// ErrConnectionRefused indicates the remote site refused the TCP
	// connection outright.
	ErrConnectionRefused = errors.New("cross-site connection refused")
)

// NewUnauthorized is raised when an endpoint requires a local login session
// and none is present.
func NewUnauthorized() *APIError {
	return &APIError{Code: 403, Message: "You must login to do this"}
}

// NewMissingSecret wraps the missing-secret condition for the HTTP envelope.
func NewMissingSecret() *APIError {
	return &APIError{Code: 500, Message: "Missing crosspost signing secret"}
}

// NewMissingParameters names the expected field list and the payload
// actually received. Diagnostic only, never used for security decisions.
func NewMissingParameters(expected []string, received any) *APIError {
	return &APIError{
		Code:    400,
		Message: fmt.Sprintf("Missing parameters: expected %v but received %v", expected, received),
	}
}

// NewInvalidUser is raised when the crosspost handler's locally-derived
// trust check fails: the token's claimed link does not match the link
// recorded in local storage.
func NewInvalidUser() *APIError {
	return &APIError{Code: 400, Message: "Invalid user"}
}

// NewInvalidPayload is raised when a token's signature verifies but its
// decoded payload does not match the schema the endpoint expects, i.e. a
// token minted for one operation was presented to another.
func NewInvalidPayload(reason string) *APIError {
	return &APIError{Code: 400, Message: fmt.Sprintf("Invalid token payload: %s", reason)}
}

// NewCrosspostError wraps a cross-site exchange failure with a
// locally-meaningful message.
func NewCrosspostError(message string) *APIError {
	return &APIError{Code: 500, Message: message}
}
