// Package refmatch finds references to a form field inside logic expressions
// and tells apart the ones guarded by coalesce() from the live ones.
package refmatch

import (
	"strings"

	"github.com/jkuester/cht-upgrade-helper/xpath"
)

// GuardFunction is the null-coalescing function whose first argument is
// considered safe from the unanswered value hazard.
const GuardFunction = "coalesce"

// IsLiveReference reports whether key occurs in expr at least once outside
// the first-argument position of a coalesce() call.
//
// key is either a full nodeset path or, for legacy matching, its local name.
func IsLiveReference(expr, key string) bool {
	total, guarded := count(expr, key)
	return total > guarded
}

// Occurrences returns the number of whole-token occurrences of key in expr
func Occurrences(expr, key string) int {
	total, _ := count(expr, key)
	return total
}

// GuardedOccurrences returns the number of occurrences of key that are the
// first argument of a coalesce() call
func GuardedOccurrences(expr, key string) int {
	_, guarded := count(expr, key)
	return guarded
}

func count(expr, key string) (total, guarded int) {
	if key == "" {
		return 0, 0
	}

	from := 0
	for {
		i := strings.Index(expr[from:], key)
		if i < 0 {
			return total, guarded
		}

		start := from + i
		end := start + len(key)
		from = start + 1

		if !isToken(expr, start, end) {
			continue
		}

		total++

		if isGuarded(expr[:start]) {
			guarded++
		}
	}
}

// isToken checks the boundaries around expr[start:end]. A field is not
// matched as the prefix of a longer sibling name or as an ancestor step of
// a longer path.
func isToken(expr string, start, end int) bool {
	if start > 0 && xpath.IsWordByte(expr[start-1]) {
		return false
	}

	if end < len(expr) && (xpath.IsWordByte(expr[end]) || expr[end] == '/') {
		return false
	}

	return true
}

// isGuarded reports whether the text before a match ends with coalesce(.
// A local-name match inside a longer path such as coalesce(/f/n is judged by
// the start of that path.
func isGuarded(before string) bool {
	if strings.HasSuffix(before, "/") {
		before = strings.TrimRightFunc(before, isPathRune)
	}

	before = strings.TrimRight(before, " \t\r\n")
	if !strings.HasSuffix(before, GuardFunction+"(") {
		return false
	}

	// Reject longer function names such as my_coalesce(
	rest := before[:len(before)-len(GuardFunction)-1]

	return rest == "" || !xpath.IsWordByte(rest[len(rest)-1])
}

func isPathRune(r rune) bool {
	return r == '/' || r == '.' || (r < 0x80 && xpath.IsWordByte(byte(r)))
}
