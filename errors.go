package ash

import "errors"

// ErrNoVerifier is returned when NewOrchestrator is given a nil Verifier.
var ErrNoVerifier = errors.New("ash: verifier must not be nil")

// Error is a request rejection. Every rejection produced by the
// orchestrator is an *Error carrying the protocol code, a human-readable
// message, and any scope diagnostics for the caller's response body.
type Error struct {
	Code    Code
	Message string

	// RequiredScope is populated on SCOPE_POLICY_REQUIRED rejections with
	// the policy's field set.
	RequiredScope []string

	// Expected and Received are populated on SCOPE_POLICY_VIOLATION
	// rejections with the policy fields and the client-declared fields.
	Expected []string
	Received []string
}

func (e *Error) Error() string {
	return "ash: " + string(e.Code) + ": " + e.Message
}

// RejectionError extracts the *Error from err, or wraps a non-protocol
// error as a generic VERIFICATION_FAILED rejection.
func RejectionError(err error) *Error {
	var rejection *Error
	if errors.As(err, &rejection) {
		return rejection
	}

	return &Error{Code: CodeVerificationFailed, Message: err.Error()}
}
