package ash

// Code identifies a protocol-level rejection reason. Codes are part of the
// wire contract: they appear verbatim in the "error" member of rejection
// bodies.
type Code string

const (
	// CodeMissingContextID rejects a request without a context identifier.
	CodeMissingContextID Code = "MISSING_CONTEXT_ID"

	// CodeMissingProof rejects a request without a proof token.
	CodeMissingProof Code = "MISSING_PROOF"

	// CodeScopePolicyRequired rejects a request that declared no scope for
	// a binding the server has a scope policy for.
	CodeScopePolicyRequired Code = "SCOPE_POLICY_REQUIRED"

	// CodeScopePolicyViolation rejects a request whose declared scope does
	// not match the server policy's field set.
	CodeScopePolicyViolation Code = "SCOPE_POLICY_VIOLATION"

	// CodeScopeMismatch reports an integrity failure attributed to the
	// scoped payload content or scope hash.
	CodeScopeMismatch Code = "SCOPE_MISMATCH"

	// CodeChainBroken reports an integrity failure attributed to the
	// request chain linkage.
	CodeChainBroken Code = "CHAIN_BROKEN"

	// CodeVerificationFailed is the generic rejection for any failure not
	// covered by a more specific code.
	CodeVerificationFailed Code = "VERIFICATION_FAILED"
)

// FailureCode is the structured failure classification a Verifier returns.
// The orchestrator maps these onto protocol Codes using request context;
// Verifier implementations must never signal failure kind through message
// text alone.
type FailureCode string

const (
	// FailureIntegrity means the proof did not match the canonical content
	// it was checked against.
	FailureIntegrity FailureCode = "INTEGRITY_MISMATCH"

	// FailureExpired means the proof fell outside the accepted time window.
	FailureExpired FailureCode = "PROOF_EXPIRED"

	// FailureReplay means the proof was already consumed.
	FailureReplay FailureCode = "PROOF_REPLAYED"

	// FailureMalformed means the proof token could not be decoded.
	FailureMalformed FailureCode = "PROOF_MALFORMED"

	// FailureInternal means the verifier itself failed.
	FailureInternal FailureCode = "INTERNAL"
)
