package refmatch

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestIsLiveReference(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		key      string
		expected bool
	}{
		{"one unguarded occurrence", "coalesce(/data/age, 0) + /data/age", "/data/age", true},
		{"only guarded", "coalesce(/data/age, 0)", "/data/age", false},
		{"guard with whitespace", "coalesce( /data/age , 0) > 1", "/data/age", false},
		{"second argument is not guarded", "coalesce(/data/other, /data/age)", "/data/age", true},
		{"plain reference", " /data/age ", "/data/age", true},
		{"reference at end", "1 + /data/age", "/data/age", true},
		{"longer sibling name", "/data/age_months > 1", "/data/age", false},
		{"longer path", "/data/age/years > 1", "/data/age", false},
		{"embedded in longer path", "/other/data/age", "/data/age", false},
		{"not present", "concat(1, 2)", "/data/age", false},
		{"other guard function", "my_coalesce(/data/age, 0)", "/data/age", true},
		{"local name", "/f/n + 1", "n", true},
		{"local name inside word", "/f/nn + 1", "n", false},
		{"local name guarded", "coalesce(/f/n, 0)", "n", false},
		{"local name guarded relative path", "coalesce(../g/n, 0) + 1", "n", false},
		{"local name guarded and live", "coalesce(/f/n, 0) + /f/n", "n", true},
		{"local name in second argument", "coalesce(/f/m, /f/n)", "n", true},
		{"empty key", "/f/n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLiveReference(tt.expr, tt.key))
		})
	}
}

func TestOccurrenceCounts(t *testing.T) {
	expr := "coalesce(/data/age, 0) + /data/age * coalesce(/data/age,1)"

	assert.Equal(t, 3, Occurrences(expr, "/data/age"))
	assert.Equal(t, 2, GuardedOccurrences(expr, "/data/age"))
	assert.True(t, IsLiveReference(expr, "/data/age"))
}
