package projection

import (
	"time"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// Source is the read surface of a bundle aggregate used by projection
type Source interface {
	App() types.AppInfo
	Modules() []types.ModuleEntry
	Abilities(module string) []types.AbilityEntry
	AbilitySkills(key types.AbilityKey) []types.Skill
	Skills(module string) []types.Skill
	EntryAbility() (types.AbilityKey, bool)
	PrimaryModule() string
	User(user types.UserID) (types.UserOverlay, bool)
	IsAbilityEnabled(key types.AbilityKey, user types.UserID) bool
	RouterMap() []types.RouteEntry
}

// PackageView is the projected view of a whole bundle
type PackageView struct {
	Name         string            `json:"name"`
	VersionCode  uint32            `json:"version_code"`
	VersionName  string            `json:"version_name"`
	EntryModule  string            `json:"entry_module,omitempty"`
	EntryAbility *types.AbilityKey `json:"entry_ability,omitempty"`

	Application          *ApplicationView    `json:"application,omitempty"`
	Modules              []ModuleView        `json:"modules,omitempty"`
	Abilities            []AbilityView       `json:"abilities,omitempty"`
	Extensions           []AbilityView       `json:"extensions,omitempty"`
	RequestedPermissions []string            `json:"requested_permissions,omitempty"`
	DefinedPermissions   []string            `json:"defined_permissions,omitempty"`
	Metadata             []ComponentMetadata `json:"metadata,omitempty"`
	Disabled             *DisabledView       `json:"disabled,omitempty"`
	Signature            *SignatureView      `json:"signature,omitempty"`
	RouterMap            []types.RouteEntry  `json:"router_map,omitempty"`
	Skills               []types.Skill       `json:"skills,omitempty"`
}

// ApplicationView holds the bundle-wide application fields
type ApplicationView struct {
	Name             string    `json:"name"`
	VersionCode      uint32    `json:"version_code"`
	VersionName      string    `json:"version_name"`
	MinAPIVersion    uint32    `json:"min_api_version"`
	TargetAPIVersion uint32    `json:"target_api_version"`
	Vendor           string    `json:"vendor,omitempty"`
	Label            string    `json:"label,omitempty"`
	Icon             string    `json:"icon,omitempty"`
	Enabled          bool      `json:"enabled"`
	UID              int32     `json:"uid,omitempty"`
	GIDs             []int32   `json:"gids,omitempty"`
	AccessTokenID    string    `json:"access_token_id,omitempty"`
	InstallTime      time.Time `json:"install_time,omitempty"`
	UpdateTime       time.Time `json:"update_time,omitempty"`

	Permissions []string            `json:"permissions,omitempty"`
	Metadata    []ComponentMetadata `json:"metadata,omitempty"`
	Signature   *SignatureView      `json:"signature,omitempty"`
}

// ModuleView is the projected view of one module
type ModuleView struct {
	Name         string             `json:"name"`
	Type         types.ModuleType   `json:"type"`
	SrcEntrance  string             `json:"src_entrance,omitempty"`
	Description  string             `json:"description,omitempty"`
	MainElement  string             `json:"main_element,omitempty"`
	EntryAbility string             `json:"entry_ability,omitempty"`
	Dependencies []types.Dependency `json:"dependencies,omitempty"`
	LibIsolation bool               `json:"lib_isolation"`
	Removable    bool               `json:"removable"`

	Abilities            []AbilityView      `json:"abilities,omitempty"`
	Extensions           []AbilityView      `json:"extensions,omitempty"`
	RequestedPermissions []string           `json:"requested_permissions,omitempty"`
	DefinedPermissions   []string           `json:"defined_permissions,omitempty"`
	Metadata             []types.Metadata   `json:"metadata,omitempty"`
	RouterMap            []types.RouteEntry `json:"router_map,omitempty"`
	Skills               []types.Skill      `json:"skills,omitempty"`
}

// AbilityView is the projected view of an ability or extension
type AbilityView struct {
	Name          string                  `json:"name"`
	Module        string                  `json:"module"`
	Kind          types.ComponentKind     `json:"kind"`
	ExtensionType string                  `json:"extension_type,omitempty"`
	SrcEntrance   string                  `json:"src_entrance,omitempty"`
	Description   string                  `json:"description,omitempty"`
	LaunchType    types.LaunchType        `json:"launch_type,omitempty"`
	Visible       bool                    `json:"visible"`
	Window        types.WindowConstraints `json:"window"`
	Enabled       bool                    `json:"enabled"`

	Permissions []string         `json:"permissions,omitempty"`
	Metadata    []types.Metadata `json:"metadata,omitempty"`
	Skills      []types.Skill    `json:"skills,omitempty"`
}

// ComponentMetadata is the metadata of one module (Ability empty) or component
type ComponentMetadata struct {
	Module   string           `json:"module"`
	Ability  string           `json:"ability,omitempty"`
	Metadata []types.Metadata `json:"metadata"`
}

// DisabledView is the per-user enablement overlay
type DisabledView struct {
	Enabled           bool     `json:"enabled"`
	DisabledAbilities []string `json:"disabled_abilities"`
}

// SignatureView holds signing information
type SignatureView struct {
	Fingerprint   string `json:"fingerprint"`
	AppIdentifier string `json:"app_identifier,omitempty"`
}
