package projection

import (
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

type abilityGroup struct {
	flag Flag
	fill func(*AbilityView, *query, *types.AbilityEntry)
}

// abilityGroups maps each flag to the field group it populates in an AbilityView
var abilityGroups = []abilityGroup{
	{WithPermission, func(v *AbilityView, _ *query, ab *types.AbilityEntry) {
		v.Permissions = sortedUnique(ab.Permissions)
	}},
	{WithMetadata, func(v *AbilityView, _ *query, ab *types.AbilityEntry) {
		v.Metadata = nonNil(ab.Metadata)
	}},
	{WithDisabled, func(v *AbilityView, q *query, ab *types.AbilityEntry) {
		v.Enabled = q.src.IsAbilityEnabled(ab.Key(), q.user)
	}},
	{WithSkill, func(v *AbilityView, q *query, ab *types.AbilityEntry) {
		v.Skills = nonNil(q.src.AbilitySkills(ab.Key()))
	}},
}

// Ability projects one ability or extension for user. It reports false when the key is unknown.
func Ability(src Source, key types.AbilityKey, flags Flag, user types.UserID) (AbilityView, bool) {
	for _, ab := range src.Abilities(key.Module) {
		if ab.Name == key.Name {
			return abilityView(&query{src: src, flags: flags, user: user}, &ab), true
		}
	}
	return AbilityView{}, false
}

func abilityView(q *query, ab *types.AbilityEntry) AbilityView {
	v := AbilityView{
		Name:          ab.Name,
		Module:        ab.Module,
		Kind:          ab.Kind,
		ExtensionType: ab.ExtensionType,
		SrcEntrance:   ab.SrcEntrance,
		Description:   ab.Description,
		LaunchType:    ab.LaunchType,
		Visible:       ab.Visible,
		Window:        ab.Window,
	}
	for _, g := range abilityGroups {
		if q.flags.Has(g.flag) {
			g.fill(&v, q, ab)
		}
	}
	return v
}
