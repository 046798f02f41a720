package ashhttp

// Wire headers of the ASH protocol. Names are part of the protocol
// contract and must match on both sides byte for byte.
const (
	// HeaderContextID identifies the proof context.
	HeaderContextID = "X-ASH-Context-ID"

	// HeaderProof carries the opaque proof token.
	HeaderProof = "X-ASH-Proof"

	// HeaderTimestamp carries the proof issuance time (unix seconds).
	HeaderTimestamp = "X-ASH-Timestamp"

	// HeaderScope declares the protected payload fields, comma-separated.
	HeaderScope = "X-ASH-Scope"

	// HeaderScopeHash carries the client's hash over its scope selection.
	HeaderScopeHash = "X-ASH-Scope-Hash"

	// HeaderChainHash links this request's proof to a prior proof.
	HeaderChainHash = "X-ASH-Chain-Hash"
)
