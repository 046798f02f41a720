// Package ash implements the verification-side orchestration of the ASH
// request-integrity protocol.
//
// A client (or proof issuer) computes an opaque cryptographic proof over a
// request's canonical identity — the "METHOD|PATH|QUERY" binding — plus
// the payload content it chose to protect. The server reproduces the same
// canonical strings independently and asks an external Verifier whether
// the proof holds. This package owns the decision flow; the canonical
// encodings live in the canonical package, server scope policies in the
// policy package, and the cryptography behind the Verifier interface.
//
// # Verifying a request
//
//	reg := policy.New()
//	reg.Register("POST|/api/users|**", []string{"email", "username"})
//
//	orch, err := ash.NewOrchestrator(verifier, reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := orch.Verify(ash.Request{
//	    ContextID:   r.Header.Get("X-ASH-Context-ID"),
//	    Proof:       r.Header.Get("X-ASH-Proof"),
//	    Method:      r.Method,
//	    Path:        r.URL.Path,
//	    Query:       r.URL.RawQuery,
//	    ScopeHeader: r.Header.Get("X-ASH-Scope"),
//	    Payload:     body,
//	})
//
// On rejection, err is an *ash.Error carrying the protocol Code and the
// scope diagnostics the transport layer should include in its response.
// The ashhttp package packages exactly this as net/http middleware.
//
// # Scope resolution
//
// When a server scope policy matches the request's binding, the client
// must declare the same field set (order-independent) in its scope header;
// the effective scope handed to the Verifier is then always the policy's
// field order. Without a policy, the client's declared scope is used as
// is, and an empty scope means the whole payload is protected.
//
// # Failure attribution
//
// Verifiers report structured FailureCodes. A generic integrity failure is
// re-attributed using request context: to SCOPE_MISMATCH when the client
// supplied a scope and scope hash, else to CHAIN_BROKEN when it supplied a
// chain hash. Scope attribution is deliberately checked first; callers
// depend on which code they see.
package ash
