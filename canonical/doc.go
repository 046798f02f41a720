// Package canonical implements the deterministic encodings at the heart of
// the ASH request-integrity protocol: structured values, form-encoded
// key/value data, and the method|path|query request binding.
//
// Proof issuance and verification happen on different machines, often in
// different implementations. Both sides must derive byte-identical
// canonical strings from semantically equal inputs: reordered JSON keys,
// differently percent-encoded URLs, and composed versus decomposed Unicode
// must all collapse to one representation. Every function in this package
// is pure and deterministic.
//
// # Values
//
// A Value is a closed union over null, bool, integer, float, string,
// ordered list, and string-keyed object. Build one with the constructors
// or adapt native Go data with FromAny, then render it with Encode:
//
//	v := canonical.Map(
//	    canonical.Field("amount", canonical.Float(2.50)),
//	    canonical.Field("currency", canonical.String("USD")),
//	)
//
//	s, err := canonical.Encode(v)
//	// s == `{"amount":2.5,"currency":"USD"}`
//
// Object keys sort bytewise, strings are NFC-normalized, numbers render in
// plain decimal with no exponent, and whole floats render as integers.
// The Absent marker removes a field entirely, which is different from a
// field holding Null.
//
// # Forms
//
// EncodeForm canonicalizes a query string or urlencoded form body:
//
//	s, err := canonical.EncodeForm("b=2&a=hello+world")
//	// s == "a=hello%20world&b=2"
//
// Pairs are stable-sorted by key, so repeated keys keep their relative
// order, and re-encoding always uses uppercase hex.
//
// # Bindings
//
// NormalizeBinding produces the "METHOD|PATH|QUERY" identity string a
// proof is computed against:
//
//	b, err := canonical.NormalizeBinding("post", "//api//update/", "b=2&a=1")
//	// b == "POST|/api/update|a=1&b=2"
package canonical
