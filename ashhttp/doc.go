// Package ashhttp adapts the ASH verification core to net/http.
//
// The middleware reads the X-ASH-* wire headers and the request body,
// hands them to an ash.Orchestrator, and either rejects the request with
// an HTTP 403 and the protocol's JSON error body or passes it to the next
// handler with the verification result in the request context:
//
//	reg := policy.New()
//	if err := reg.LoadYAMLFile("policies.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	orch, err := ash.NewOrchestrator(verifier, reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mw, err := ashhttp.Middleware(ashhttp.MiddlewareConfig{
//	    Orchestrator: orch,
//	    Logger:       logger,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    result := ashhttp.ResultFromContext(r.Context())
//	    _ = result.EffectiveScope
//	}))
//
// Rejection bodies have the shape
//
//	{"error": "SCOPE_POLICY_VIOLATION", "message": "...",
//	 "expected": [...], "received": [...], "requestId": "..."}
//
// where requestId is a correlation ID that also appears in the rejection
// log entry. Every rejection defined by the protocol uses status 403.
package ashhttp
