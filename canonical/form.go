package canonical

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Pair is a decoded key/value item from a query string or form body.
type Pair struct {
	Key   string
	Value string
}

// EncodeForm canonicalizes percent-encoded key/value data (a URL query
// string or an application/x-www-form-urlencoded body).
//
// The input is split on "&", each segment on its first "=" (a segment
// with no "=" is a key with an empty value), "+" decodes to space, and
// percent-escapes are resolved. Decoded keys and values are
// NFC-normalized, stable-sorted by key bytewise, and re-encoded with
// uppercase percent-escapes. Empty input produces the empty string.
//
// It returns ErrNormalization on invalid percent-encoding or when the
// decoded text is not valid UTF-8.
func EncodeForm(raw string) (string, error) {
	pairs, err := parseForm(raw)
	if err != nil {
		return "", err
	}

	return EncodeFormPairs(pairs)
}

// EncodeFormPairs canonicalizes already-decoded key/value pairs: NFC
// normalization, stable sort by key, uppercase percent-encoding. Pairs
// sharing a key keep their relative input order.
func EncodeFormPairs(pairs []Pair) (string, error) {
	if len(pairs) == 0 {
		return "", nil
	}

	normalized := make([]Pair, len(pairs))

	for i, p := range pairs {
		key, err := normalizeString(p.Key)
		if err != nil {
			return "", err
		}

		value, err := normalizeString(p.Value)
		if err != nil {
			return "", err
		}

		normalized[i] = Pair{Key: key, Value: value}
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Key < normalized[j].Key
	})

	var b strings.Builder

	for i, p := range normalized {
		if i > 0 {
			b.WriteByte('&')
		}

		writePercentEncoded(&b, p.Key)
		b.WriteByte('=')
		writePercentEncoded(&b, p.Value)
	}

	return b.String(), nil
}

// parseForm splits and percent-decodes raw form data. Empty segments
// (from "a=1&&b=2" or a bare "&") are skipped.
func parseForm(raw string) ([]Pair, error) {
	if raw == "" {
		return nil, nil
	}

	var pairs []Pair

	for _, seg := range strings.Split(raw, "&") {
		if seg == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(seg, "=")

		key, err := decodeComponent(rawKey)
		if err != nil {
			return nil, err
		}

		value, err := decodeComponent(rawValue)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	return pairs, nil
}

// decodeComponent applies form-encoding percent-decoding ("+" is a space)
// followed by NFC normalization.
func decodeComponent(s string) (string, error) {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid percent-encoding in %q", ErrNormalization, s)
	}

	return normalizeString(decoded)
}

// writePercentEncoded percent-encodes s with uppercase hex digits.
// Unreserved characters per RFC 3986 Section 2.3 pass through.
func writePercentEncoded(b *strings.Builder, s string) {
	const upperhex = "0123456789ABCDEF"

	for i := 0; i < len(s); i++ {
		c := s[i]

		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}

		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	default:
		return false
	}
}
