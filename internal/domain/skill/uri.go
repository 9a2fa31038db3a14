package skill

import (
	"regexp"
	"strings"
	"sync"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

const (
	schemeSeparator = "://"
	portSeparator   = ":"
	pathSeparator   = "/"
)

// regexCache holds compiled path regexes keyed by pattern text.
// Invalid patterns are cached as nil and never match.
var regexCache sync.Map

// MatchURI reports whether uri satisfies the data pattern's scheme, host, port and path
func MatchURI(p *types.SkillURI, uri string) bool {
	if p.Scheme == "" {
		return uri == ""
	}
	if p.Host == "" {
		return uri == p.Scheme || strings.HasPrefix(uri, p.Scheme+portSeparator)
	}

	prefix := p.Scheme + schemeSeparator + p.Host
	if p.Port != "" {
		prefix += portSeparator + p.Port
	}

	if p.Path == "" && p.PathStartWith == "" && p.PathRegex == "" {
		if uri == prefix || strings.HasPrefix(uri, prefix+pathSeparator) {
			return true
		}
		if p.Port == "" {
			return strings.HasPrefix(uri, prefix+portSeparator)
		}
		return false
	}

	rest, ok := strings.CutPrefix(uri, prefix+pathSeparator)
	if !ok {
		return false
	}
	if p.Path != "" && rest == p.Path {
		return true
	}
	if p.PathStartWith != "" && strings.HasPrefix(rest, p.PathStartWith) {
		return true
	}
	if p.PathRegex != "" {
		if re := compilePath(p.PathRegex); re != nil && re.MatchString(rest) {
			return true
		}
	}
	return false
}

func compilePath(pattern string) *regexp.Regexp {
	if cached, ok := regexCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		re = nil
	}
	regexCache.Store(pattern, re)
	return re
}
