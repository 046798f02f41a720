package ash

// ProofRequest is the bundle handed to a Verifier for cryptographic
// validation: the canonical binding, the payload, and the client's
// declared hashes, together with the effective protection scope the
// orchestrator resolved.
type ProofRequest struct {
	// ContextID identifies the proof context (key handle, session, or
	// whatever the Verifier's key management uses).
	ContextID string

	// Proof is the opaque proof token from the request.
	Proof string

	// Binding is the canonical "METHOD|PATH|QUERY" identity the proof
	// was computed against.
	Binding string

	// Payload is the raw request body.
	Payload []byte

	// ContentType is the request body's media type.
	ContentType string

	// Timestamp is the client-supplied proof timestamp, passed through
	// for replay-window enforcement.
	Timestamp string

	// Scope is the effective protection scope: the ordered field names
	// whose canonical content the proof covers. Empty means the whole
	// payload.
	Scope []string

	// ScopeHash is the client-declared hash over its scope selection.
	ScopeHash string

	// ChainHash links this proof to a prior one, when the client uses
	// request chaining.
	ChainHash string
}

// ProofResult is a Verifier's decision.
type ProofResult struct {
	// Valid reports whether the proof verified.
	Valid bool

	// Code classifies the failure when Valid is false.
	Code FailureCode

	// Message is an optional human-readable failure description.
	Message string

	// Metadata is opaque data the Verifier wants attached to accepted
	// requests (key identifiers, proof age, etc.).
	Metadata map[string]string
}

// Verifier is the external cryptographic capability: it validates a proof
// token against the canonical request identity and payload. Timestamp and
// replay-window enforcement, key management, and the proof construction
// itself all live behind this interface.
type Verifier interface {
	VerifyProof(req ProofRequest) ProofResult
}
