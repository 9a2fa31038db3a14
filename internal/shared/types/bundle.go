package types

import "slices"

// ModuleType represents the kind of package module
type ModuleType string

const (
	ModuleTypeEntry   ModuleType = "entry"
	ModuleTypeFeature ModuleType = "feature"
	ModuleTypeShared  ModuleType = "shared"
)

// Valid reports whether t is a known module type
func (t ModuleType) Valid() bool {
	switch t {
	case ModuleTypeEntry, ModuleTypeFeature, ModuleTypeShared:
		return true
	}
	return false
}

// Dependency names a module this module depends on
type Dependency struct {
	Module string `json:"module"`
	Bundle string `json:"bundle,omitempty"`
}

// RequestPermission is a permission a module asks for
type RequestPermission struct {
	Name      string `json:"name"`
	Reason    string `json:"reason,omitempty"`
	UsedScene string `json:"used_scene,omitempty"`
}

// DefinePermission is a permission a module declares for others to request
type DefinePermission struct {
	Name           string `json:"name"`
	GrantMode      string `json:"grant_mode,omitempty"`
	AvailableLevel string `json:"available_level,omitempty"`
}

// Metadata is a single key-value pair attached to a module or component
type Metadata struct {
	Name     string `json:"name"`
	Value    string `json:"value,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// ModuleEntry represents one module of a bundle.
// Abilities and Skills hold the keys the module owns, in declaration order.
type ModuleEntry struct {
	Name               string              `json:"name"`
	Type               ModuleType          `json:"type"`
	SrcEntrance        string              `json:"src_entrance,omitempty"`
	Description        string              `json:"description,omitempty"`
	MainElement        string              `json:"main_element,omitempty"`
	EntryAbility       string              `json:"entry_ability,omitempty"`
	Abilities          []string            `json:"abilities"`
	Skills             []AbilityKey        `json:"skills"`
	Dependencies       []Dependency        `json:"dependencies"`
	Removable          map[UserID]bool     `json:"removable,omitempty"`
	RouterMap          []RouteEntry        `json:"router_map,omitempty"`
	LibIsolation       bool                `json:"lib_isolation"`
	RequestPermissions []RequestPermission `json:"request_permissions,omitempty"`
	DefinePermissions  []DefinePermission  `json:"define_permissions,omitempty"`
	Metadata           []Metadata          `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the module entry
func (m *ModuleEntry) Clone() ModuleEntry {
	out := *m
	out.Abilities = slices.Clone(m.Abilities)
	out.Skills = slices.Clone(m.Skills)
	out.Dependencies = slices.Clone(m.Dependencies)
	out.RequestPermissions = slices.Clone(m.RequestPermissions)
	out.DefinePermissions = slices.Clone(m.DefinePermissions)
	out.Metadata = slices.Clone(m.Metadata)
	if m.Removable != nil {
		out.Removable = make(map[UserID]bool, len(m.Removable))
		for user, removable := range m.Removable {
			out.Removable[user] = removable
		}
	}
	if m.RouterMap != nil {
		out.RouterMap = make([]RouteEntry, len(m.RouterMap))
		for i := range m.RouterMap {
			out.RouterMap[i] = m.RouterMap[i].Clone()
		}
	}
	return out
}

// AppInfo holds the bundle-wide fields taken from the manifest app object
type AppInfo struct {
	BundleName       string `json:"bundle_name"`
	VersionCode      uint32 `json:"version_code"`
	VersionName      string `json:"version_name"`
	MinAPIVersion    uint32 `json:"min_api_version"`
	TargetAPIVersion uint32 `json:"target_api_version"`
	Vendor           string `json:"vendor,omitempty"`
	Label            string `json:"label,omitempty"`
	Icon             string `json:"icon,omitempty"`
	Certificate      string `json:"certificate,omitempty"`
	AppIdentifier    string `json:"app_identifier,omitempty"`
}
