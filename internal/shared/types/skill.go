package types

import "slices"

// Well-known action and entity tokens
const (
	// ActionHome and WantActionHome are two spellings of the home action and match each other
	ActionHome     = "action.system.home"
	WantActionHome = "ohos.want.action.home"
	EntityHome     = "entity.system.home"
)

// SkillURI is one data pattern of a skill
type SkillURI struct {
	Scheme        string `json:"scheme,omitempty"`
	Host          string `json:"host,omitempty"`
	Port          string `json:"port,omitempty"`
	Path          string `json:"path,omitempty"`
	PathStartWith string `json:"path_start_with,omitempty"`
	PathRegex     string `json:"path_regex,omitempty"`
	Type          string `json:"type,omitempty"`
}

// Skill is the capability declaration of an ability or extension
type Skill struct {
	Key      AbilityKey `json:"key"`
	Actions  []string   `json:"actions"`
	Entities []string   `json:"entities,omitempty"`
	URIs     []SkillURI `json:"uris,omitempty"`
}

// IsHome reports whether the skill declares the home action and entity
func (s *Skill) IsHome() bool {
	action := false
	for _, a := range s.Actions {
		if a == ActionHome || a == WantActionHome {
			action = true
			break
		}
	}
	if !action {
		return false
	}
	for _, e := range s.Entities {
		if e == EntityHome {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the skill
func (s *Skill) Clone() Skill {
	out := *s
	out.Actions = slices.Clone(s.Actions)
	out.Entities = slices.Clone(s.Entities)
	out.URIs = slices.Clone(s.URIs)
	return out
}
