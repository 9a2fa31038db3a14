package skill

import "strings"

const (
	typeWildcard = "*/*"
	wildcard     = "*"
)

// MatchType tests a requested MIME type against a declared one.
// "*/*" on either side matches anything; a trailing "*" turns the
// comparison into a prefix test against the other side.
func MatchType(requested, declared string) bool {
	if requested == typeWildcard || declared == typeWildcard {
		return true
	}
	if requested == "" || declared == "" {
		return requested == declared
	}
	if prefix, ok := strings.CutSuffix(requested, wildcard); ok {
		return strings.HasPrefix(declared, prefix)
	}
	if prefix, ok := strings.CutSuffix(declared, wildcard); ok {
		return strings.HasPrefix(requested, prefix)
	}
	return requested == declared
}
