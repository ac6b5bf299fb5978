// Package xpath resolves the constrained subset of XPath path references used
// in form logic (absolute paths and ./ or ../ relative paths) against the set
// of element paths declared by a form's primary instance.
package xpath

import (
	"regexp"
	"strings"
)

const (
	parentPrefix  = "../"
	currentPrefix = "./"
)

// pathToken matches a path-like token. The left boundary (start of input or a
// non-word character) is checked separately in ExtractPaths.
var pathToken = regexp.MustCompile(`(?:\.\./|\./|/)[\w/.]+`)

// PathSet is a set of absolute instance paths.
type PathSet map[string]struct{}

// Add inserts path into the set
func (s PathSet) Add(path string) {
	s[path] = struct{}{}
}

// Has reports whether path is in the set
func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Resolve converts fragment into an absolute path using base (the nodeset of
// the bind that owns the expression) as the context node.
//
// Absolute fragments are returned unchanged. Each leading "../" pops one step
// from base and a single leading "./" is dropped; what remains is appended as
// the final step. When the fragment climbs above the root the result has no
// leading slash, so it never matches an instance path.
func Resolve(base, fragment string) string {
	if strings.HasPrefix(fragment, "/") {
		return fragment
	}

	steps := Steps(base)
	rest := fragment
	overflow := false

	for strings.HasPrefix(rest, parentPrefix) {
		rest = rest[len(parentPrefix):]
		if len(steps) == 0 {
			overflow = true
			continue
		}

		steps = steps[:len(steps)-1]
	}

	rest = strings.TrimPrefix(rest, currentPrefix)

	if overflow {
		return rest
	}

	return "/" + strings.Join(append(steps, rest), "/")
}

// Exists reports whether path names an element of the instance
func Exists(path string, known PathSet) bool {
	return known.Has(path)
}

// ExtractPaths returns the path-like tokens of expr in order of appearance.
// A token must start at the beginning of expr or right after a non-word
// character, so "abc/def" yields nothing while "a../b" yields "./b".
func ExtractPaths(expr string) []string {
	var paths []string

	offset := 0
	for offset < len(expr) {
		loc := pathToken.FindStringIndex(expr[offset:])
		if loc == nil {
			break
		}

		start, end := offset+loc[0], offset+loc[1]
		if start > 0 && IsWordByte(expr[start-1]) {
			// A valid token may still begin inside the rejected one
			offset = start + 1
			continue
		}

		paths = append(paths, expr[start:end])
		offset = end
	}

	return paths
}

// Steps splits an absolute path into its non-empty steps
func Steps(path string) []string {
	parts := strings.Split(path, "/")

	steps := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			steps = append(steps, part)
		}
	}

	return steps
}

// LocalName returns the last step of path
func LocalName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}

	return path
}

// Ancestors returns the paths of every element on the way from the root to
// path, ending with path itself: "/a/b/c" -> ["/a", "/a/b", "/a/b/c"].
func Ancestors(path string) []string {
	steps := Steps(path)

	result := make([]string, 0, len(steps))
	current := ""

	for _, step := range steps {
		current += "/" + step
		result = append(result, current)
	}

	return result
}

// IsWordByte reports whether b is an ASCII word character ([A-Za-z0-9_])
func IsWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
