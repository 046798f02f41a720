package canonical

import "strings"

// NormalizeBinding derives the canonical request identity string
// "METHOD|PATH|QUERY" from a method, path, and raw query string.
//
// The method is uppercased. Any fragment or embedded query suffix still
// present in path is stripped as noise, a leading "/" is forced, runs of
// "/" collapse to one, and a trailing "/" is removed unless the path is
// exactly "/". The query is canonicalized with EncodeForm; it is the only
// part that can fail (invalid percent-encoding or Unicode).
func NormalizeBinding(method, path, query string) (string, error) {
	canonQuery, err := EncodeForm(query)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(method) + "|" + normalizePath(path) + "|" + canonQuery, nil
}

// NormalizeBindingTarget derives a binding from a method and a request
// target of the form "/path?query". The fragment, if any, is stripped
// before the target is split on the first "?".
func NormalizeBindingTarget(method, target string) (string, error) {
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}

	path, query, _ := strings.Cut(target, "?")

	return NormalizeBinding(method, path, query)
}

func normalizePath(path string) string {
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}

	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return path
}
