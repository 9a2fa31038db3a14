package types

import "slices"

// ComponentKind distinguishes abilities from extension abilities
type ComponentKind string

const (
	KindAbility   ComponentKind = "ability"
	KindExtension ComponentKind = "extension"
)

// LaunchType is the launch policy of an ability
type LaunchType string

const (
	LaunchSingleton LaunchType = "singleton"
	LaunchMultiton  LaunchType = "multiton"
	LaunchSpecified LaunchType = "specified"
)

// ParseLaunchType maps a manifest launchType token to a LaunchType.
// An empty token yields the singleton default.
func ParseLaunchType(token string) (LaunchType, bool) {
	switch token {
	case "", "singleton":
		return LaunchSingleton, true
	case "multiton", "standard":
		return LaunchMultiton, true
	case "specified":
		return LaunchSpecified, true
	}
	return "", false
}

// AbilityKey identifies an ability or extension within a bundle
type AbilityKey struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

// String renders the key for logs
func (k AbilityKey) String() string {
	return k.Module + "/" + k.Name
}

// AbilityRef identifies an ability across bundles
type AbilityRef struct {
	Bundle string `json:"bundle"`
	Module string `json:"module"`
	Name   string `json:"name"`
}

// WindowConstraints limit the window an ability may be displayed in
type WindowConstraints struct {
	Modes     []string `json:"modes,omitempty"`
	MinWidth  uint32   `json:"min_width,omitempty"`
	MaxWidth  uint32   `json:"max_width,omitempty"`
	MinHeight uint32   `json:"min_height,omitempty"`
	MaxHeight uint32   `json:"max_height,omitempty"`
}

// AbilityEntry represents an ability or extension ability exposed by a module
type AbilityEntry struct {
	Name          string            `json:"name"`
	Module        string            `json:"module"`
	Kind          ComponentKind     `json:"kind"`
	ExtensionType string            `json:"extension_type,omitempty"`
	SrcEntrance   string            `json:"src_entrance,omitempty"`
	Description   string            `json:"description,omitempty"`
	Permissions   []string          `json:"permissions,omitempty"`
	LaunchType    LaunchType        `json:"launch_type,omitempty"`
	Visible       bool              `json:"visible"`
	Window        WindowConstraints `json:"window"`
	Metadata      []Metadata        `json:"metadata,omitempty"`
}

// Key returns the composite key of the ability
func (a *AbilityEntry) Key() AbilityKey {
	return AbilityKey{Module: a.Module, Name: a.Name}
}

// Clone returns a deep copy of the ability entry
func (a *AbilityEntry) Clone() AbilityEntry {
	out := *a
	out.Permissions = slices.Clone(a.Permissions)
	out.Metadata = slices.Clone(a.Metadata)
	out.Window.Modes = slices.Clone(a.Window.Modes)
	return out
}
