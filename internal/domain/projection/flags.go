package projection

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag selects field groups of a projected view.
// Values are part of the external API and never change.
type Flag uint32

const (
	WithApplication Flag = 0x001
	WithModule      Flag = 0x002
	WithAbility     Flag = 0x004
	WithExtension   Flag = 0x008
	WithPermission  Flag = 0x010
	WithMetadata    Flag = 0x020
	WithDisabled    Flag = 0x040
	WithSignature   Flag = 0x080
	WithRouterMap   Flag = 0x200
	WithSkill       Flag = 0x800

	// AllFlags is the union of every recognized bit
	AllFlags = WithApplication | WithModule | WithAbility | WithExtension | WithPermission |
		WithMetadata | WithDisabled | WithSignature | WithRouterMap | WithSkill
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{WithApplication, "application"},
	{WithModule, "module"},
	{WithAbility, "ability"},
	{WithExtension, "extension"},
	{WithPermission, "permission"},
	{WithMetadata, "metadata"},
	{WithDisabled, "disabled"},
	{WithSignature, "signature"},
	{WithRouterMap, "router_map"},
	{WithSkill, "skill"},
}

// Has reports whether every bit of bit is set in f
func (f Flag) Has(bit Flag) bool {
	return f&bit == bit
}

// String lists the set flag names joined by '|'
func (f Flag) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if unknown := f &^ AllFlags; unknown != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(unknown)))
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseFlags parses a bitmask written in decimal or 0x-prefixed hex,
// or as flag names joined by '|' or ','. Unknown bits are ignored by projection.
func ParseFlags(s string) (Flag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Flag(v), nil
	}

	var f Flag
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(part)
		found := false
		for _, fn := range flagNames {
			if fn.name == part {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown projection flag %q", part)
		}
	}
	return f, nil
}
