package skill

import (
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// Want describes a requested intent
type Want struct {
	Action   string
	Entities []string
	URI      string
	Type     string
}

// Match reports whether the skill accepts the requested intent
func Match(s *types.Skill, want Want) bool {
	if s == nil {
		return false
	}
	return MatchAction(s.Actions, want.Action) &&
		MatchEntities(s.Entities, want.Entities) &&
		MatchURIAndType(s.URIs, want.URI, want.Type)
}

// MatchAction tests a requested action against the declared actions
func MatchAction(declared []string, action string) bool {
	if len(declared) == 0 {
		return false
	}
	if action == "" {
		return true
	}
	for _, d := range declared {
		if d == action || isHomeAlias(d, action) {
			return true
		}
	}
	return false
}

func isHomeAlias(a, b string) bool {
	return (a == types.ActionHome && b == types.WantActionHome) ||
		(a == types.WantActionHome && b == types.ActionHome)
}

// MatchEntities reports whether every requested entity is declared
func MatchEntities(declared, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	if len(declared) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(declared))
	for _, e := range declared {
		set[e] = struct{}{}
	}
	for _, e := range requested {
		if _, ok := set[e]; !ok {
			return false
		}
	}
	return true
}

// MatchURIAndType tests the requested uri and type against the declared data patterns
func MatchURIAndType(patterns []types.SkillURI, uri, mime string) bool {
	switch {
	case uri == "" && mime == "":
		if len(patterns) == 0 {
			return true
		}
		for i := range patterns {
			if patterns[i].Scheme == "" && patterns[i].Type == "" {
				return true
			}
		}
		return false
	case uri != "" && mime == "":
		for i := range patterns {
			if patterns[i].Type == "" && MatchURI(&patterns[i], uri) {
				return true
			}
		}
		return false
	case uri == "" && mime != "":
		for i := range patterns {
			if patterns[i].Scheme == "" && MatchType(mime, patterns[i].Type) {
				return true
			}
		}
		return false
	default:
		for i := range patterns {
			if MatchURI(&patterns[i], uri) && MatchType(mime, patterns[i].Type) {
				return true
			}
		}
		return false
	}
}
