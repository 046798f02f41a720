// Package policy implements the server-declared scope policy registry for
// the ASH request-integrity protocol.
//
// A scope policy names the payload fields that a proof must protect for
// requests matching a binding pattern. Patterns are binding-shaped strings
// ("METHOD|PATH|QUERY") where "*" matches within a single path segment or
// binding field and "**" matches across "/" and "|" boundaries:
//
//	reg := policy.New()
//	reg.Register("POST|/api/users|**", []string{"email", "username"})
//	reg.Register("PUT|/api/items/*|", []string{"name", "price"})
//
//	fields := reg.Get("POST|/api/users|a=1")
//	// fields == ["email", "username"]
//
// An exact pattern match always wins over a wildcard match. Among wildcard
// patterns, the first registered match wins, so registration order is part
// of the contract. A binding with no applicable policy yields an empty
// field list, which the verification layer reads as "the whole payload is
// protected, no field-level scoping".
//
// Policies are expected to be registered at process start, either in code
// or from YAML configuration via LoadYAML, and left untouched while
// traffic is flowing. Clear exists for test teardown.
package policy
