package ash

import (
	"strings"

	"github.com/vitalvas/ash/canonical"
	"github.com/vitalvas/ash/policy"
)

// Request carries everything the orchestrator needs from one inbound
// request. The transport layer fills it from the wire headers and request
// line; see the ashhttp package for the net/http shim.
type Request struct {
	ContextID string
	Proof     string

	Method string
	Path   string
	Query  string

	// ScopeHeader is the raw client-declared scope: comma-separated field
	// names, possibly empty.
	ScopeHeader string

	ScopeHash string
	ChainHash string
	Timestamp string

	Payload     []byte
	ContentType string
}

// Result is returned for accepted requests.
type Result struct {
	// Binding is the canonical request identity the proof verified
	// against.
	Binding string

	// EffectiveScope is the protection scope used for verification: the
	// server policy's field order when a policy applied, otherwise the
	// client's declared scope.
	EffectiveScope []string

	// PolicyScope is the resolved server policy's field set, nil when no
	// policy applied.
	PolicyScope []string

	// ChainHash echoes the client's chain hash for downstream chaining.
	ChainHash string

	// Metadata is whatever the Verifier attached.
	Metadata map[string]string
}

// Orchestrator combines binding normalization, scope policy resolution,
// and proof verification into one accept/reject decision per request.
type Orchestrator struct {
	verifier Verifier
	policies *policy.Registry
}

// NewOrchestrator builds an Orchestrator. The verifier is required; a nil
// registry means no server scope policies.
func NewOrchestrator(verifier Verifier, policies *policy.Registry) (*Orchestrator, error) {
	if verifier == nil {
		return nil, ErrNoVerifier
	}

	return &Orchestrator{verifier: verifier, policies: policies}, nil
}

// Verify runs the per-request decision. It returns a *Result on
// acceptance; every rejection is an *Error. Canonicalization failures
// reject the request rather than escaping as raw errors.
func (o *Orchestrator) Verify(req Request) (*Result, error) {
	if req.ContextID == "" {
		return nil, &Error{Code: CodeMissingContextID, Message: "context identifier is required"}
	}

	if req.Proof == "" {
		return nil, &Error{Code: CodeMissingProof, Message: "proof token is required"}
	}

	binding, err := canonical.NormalizeBinding(req.Method, req.Path, req.Query)
	if err != nil {
		return nil, &Error{Code: CodeVerificationFailed, Message: "request binding could not be canonicalized: " + err.Error()}
	}

	var policyScope []string
	hasPolicy := false

	if o.policies != nil {
		policyScope = o.policies.Get(binding)
		hasPolicy = o.policies.Has(binding)
	}

	declared := ParseScope(req.ScopeHeader)

	var effective []string

	switch {
	case hasPolicy && len(declared) == 0:
		return nil, &Error{
			Code:          CodeScopePolicyRequired,
			Message:       "a scope policy applies to this binding; the request must declare a matching scope",
			RequiredScope: policyScope,
		}

	case hasPolicy && !sameFieldSet(policyScope, declared):
		return nil, &Error{
			Code:     CodeScopePolicyViolation,
			Message:  "declared scope does not match the server scope policy",
			Expected: policyScope,
			Received: declared,
		}

	case hasPolicy:
		// The server's field order drives downstream hashing, so a client
		// cannot influence it by reordering its declaration.
		effective = policyScope

	default:
		effective = declared
	}

	res := o.verifier.VerifyProof(ProofRequest{
		ContextID:   req.ContextID,
		Proof:       req.Proof,
		Binding:     binding,
		Payload:     req.Payload,
		ContentType: req.ContentType,
		Timestamp:   req.Timestamp,
		Scope:       effective,
		ScopeHash:   req.ScopeHash,
		ChainHash:   req.ChainHash,
	})

	if !res.Valid {
		return nil, &Error{
			Code:    remapFailure(res.Code, declared, req.ScopeHash, req.ChainHash),
			Message: failureMessage(res),
		}
	}

	result := &Result{
		Binding:        binding,
		EffectiveScope: effective,
		ChainHash:      req.ChainHash,
		Metadata:       res.Metadata,
	}

	if hasPolicy {
		result.PolicyScope = policyScope
	}

	return result, nil
}

// remapFailure attributes a generic integrity failure to the scope or
// chain mechanism when the request used one. Scope attribution is checked
// first; the precedence is observable through error codes and must not
// change.
func remapFailure(code FailureCode, declared []string, scopeHash, chainHash string) Code {
	if code != FailureIntegrity {
		return CodeVerificationFailed
	}

	if len(declared) > 0 && scopeHash != "" {
		return CodeScopeMismatch
	}

	if chainHash != "" {
		return CodeChainBroken
	}

	return CodeVerificationFailed
}

func failureMessage(res ProofResult) string {
	if res.Message != "" {
		return res.Message
	}

	return "proof verification failed"
}

// ParseScope splits a declared scope header into trimmed, non-empty field
// names. Duplicates pass through; order is preserved.
func ParseScope(header string) []string {
	if header == "" {
		return nil
	}

	var fields []string

	for _, field := range strings.Split(header, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}

// sameFieldSet compares two field lists as sets: order and duplicates are
// ignored.
func sameFieldSet(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, f := range a {
		setA[f] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, f := range b {
		setB[f] = struct{}{}
	}

	if len(setA) != len(setB) {
		return false
	}

	for f := range setA {
		if _, ok := setB[f]; !ok {
			return false
		}
	}

	return true
}
