package validation

import (
	"regexp"
	"strings"
)

// Limits applied to user-supplied search input.
const (
	MaxKeywordLength  = 100
	MaxKeywords       = 20
	MinNumResults     = 1
	MaxNumResults     = 50
	DefaultNumResults = 20

	// DefaultUserSearchResults is used when a user search omits num_results.
	DefaultUserSearchResults = 10
)

// BrandPattern defines the valid brand name format: letters, digits, spaces, hyphens, ampersands, dots.
var BrandPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} &.\-]*$`)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeKeyword trims a search keyword and collapses inner whitespace.
// Returns "" if the keyword is empty or too long.
func NormalizeKeyword(keyword string) string {
	k := whitespace.ReplaceAllString(strings.TrimSpace(keyword), " ")
	if len(k) > MaxKeywordLength {
		return ""
	}
	return k
}

// NormalizeKeywords cleans a keyword list: empty or oversized entries are dropped,
// duplicates are removed case-insensitively keeping the first spelling, and the
// list is capped at MaxKeywords.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, raw := range keywords {
		k := NormalizeKeyword(raw)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// SplitKeywords parses comma-separated form input into a normalized keyword list.
func SplitKeywords(input string) []string {
	return NormalizeKeywords(strings.Split(input, ","))
}

// ClampNumResults bounds the per-keyword result count. Zero or negative
// values select fallback, which is itself clamped.
func ClampNumResults(n, fallback int) int {
	if n <= 0 {
		n = fallback
	}
	if n < MinNumResults {
		return MinNumResults
	}
	if n > MaxNumResults {
		return MaxNumResults
	}
	return n
}

// ValidateBrand checks if a brand name is usable as a report label.
func ValidateBrand(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "Brand name is required"
	}
	if len(name) > MaxKeywordLength {
		return false, "Brand name is too long"
	}
	if !BrandPattern.MatchString(name) {
		return false, "Brand name contains invalid characters"
	}
	return true, ""
}
