package policy

import "sort"

// Registry maps binding patterns to the ordered field names that must be
// protected for requests matching that pattern.
//
// The registry is not internally synchronized. It is meant to be populated
// once at process start and treated as read-only during traffic; concurrent
// readers are safe against each other, but registration or Clear during
// live reads must be serialized by the embedding application.
type Registry struct {
	exact    map[string]entry
	wildcard []entry
}

type entry struct {
	pattern string
	fields  []string
	match   *matcher
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{exact: make(map[string]entry)}
}

// Register adds a scope policy for the given binding pattern. The pattern
// may contain "*" (any characters within one path segment or binding
// field) and "**" (any characters, crossing "/" and "|" boundaries).
// Registering the same pattern again replaces its fields.
//
// Wildcard patterns are consulted in registration order; when several
// could match one binding, the earliest registration wins. This ordering
// is part of the contract, not an accident of implementation.
func (r *Registry) Register(pattern string, fields []string) {
	e := entry{pattern: pattern, fields: append([]string(nil), fields...)}

	if hasWildcard(pattern) {
		e.match = compilePattern(pattern)

		for i, existing := range r.wildcard {
			if existing.pattern == pattern {
				r.wildcard[i] = e
				return
			}
		}

		r.wildcard = append(r.wildcard, e)

		return
	}

	r.exact[pattern] = e
}

// RegisterMany registers every pattern in the mapping. Go map iteration
// order is unspecified, so patterns are registered in sorted order to keep
// wildcard precedence deterministic across runs. Use Register directly (or
// LoadYAML) when a specific precedence is needed.
func (r *Registry) RegisterMany(policies map[string][]string) {
	patterns := make([]string, 0, len(policies))
	for pattern := range policies {
		patterns = append(patterns, pattern)
	}

	sort.Strings(patterns)

	for _, pattern := range patterns {
		r.Register(pattern, policies[pattern])
	}
}

// Get returns the protected field names for the binding: an exact pattern
// match wins, otherwise the first wildcard pattern (in registration order)
// that matches. The result is a copy; an empty slice means no policy.
func (r *Registry) Get(binding string) []string {
	if e, ok := r.lookup(binding); ok {
		return append([]string(nil), e.fields...)
	}

	return nil
}

// Has reports whether any policy (exact or wildcard) applies to the binding.
func (r *Registry) Has(binding string) bool {
	_, ok := r.lookup(binding)
	return ok
}

// All returns a snapshot of every registered pattern and its fields.
func (r *Registry) All() map[string][]string {
	out := make(map[string][]string, len(r.exact)+len(r.wildcard))

	for pattern, e := range r.exact {
		out[pattern] = append([]string(nil), e.fields...)
	}

	for _, e := range r.wildcard {
		out[e.pattern] = append([]string(nil), e.fields...)
	}

	return out
}

// Clear removes every registered policy. Intended for test teardown.
func (r *Registry) Clear() {
	r.exact = make(map[string]entry)
	r.wildcard = nil
}

func (r *Registry) lookup(binding string) (entry, bool) {
	if e, ok := r.exact[binding]; ok {
		return e, true
	}

	// A binding containing a literal "*" can equal a wildcard pattern
	// string; exact equality still wins over pattern matching.
	for _, e := range r.wildcard {
		if e.pattern == binding {
			return e, true
		}
	}

	for _, e := range r.wildcard {
		if e.match.matchString(binding) {
			return e, true
		}
	}

	return entry{}, false
}
