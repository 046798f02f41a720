package policy

import (
	"regexp"
	"strings"
)

// matcher is a compiled binding pattern. Matching is anchored: the whole
// binding must match.
type matcher struct {
	re *regexp.Regexp
}

func (m *matcher) matchString(s string) bool {
	return m.re.MatchString(s)
}

func hasWildcard(pattern string) bool {
	return strings.ContainsRune(pattern, '*')
}

// compilePattern translates a binding pattern to an anchored regexp.
// "**" matches any run of characters, including "/" and "|"; a lone "*"
// matches any run confined to one path segment or binding field.
func compilePattern(pattern string) *matcher {
	var b strings.Builder

	// (?s) so "**" spans any byte, newlines included.
	b.WriteString(`(?s)^`)

	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(`.*`)
			i += 2

		case pattern[i] == '*':
			b.WriteString(`[^|/]*`)
			i++

		default:
			next := strings.IndexByte(pattern[i:], '*')
			if next < 0 {
				next = len(pattern) - i
			}

			b.WriteString(regexp.QuoteMeta(pattern[i : i+next]))
			i += next
		}
	}

	b.WriteByte('$')

	return &matcher{re: regexp.MustCompile(b.String())}
}
