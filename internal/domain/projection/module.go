package projection

import (
	"slices"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

type moduleGroup struct {
	flag Flag
	fill func(*ModuleView, *query, *types.ModuleEntry)
}

// moduleGroups maps each flag to the field group it populates in a ModuleView
var moduleGroups = []moduleGroup{
	{WithAbility, func(v *ModuleView, q *query, m *types.ModuleEntry) {
		v.Abilities = q.moduleComponents(m.Name, types.KindAbility)
	}},
	{WithExtension, func(v *ModuleView, q *query, m *types.ModuleEntry) {
		v.Extensions = q.moduleComponents(m.Name, types.KindExtension)
	}},
	{WithPermission, func(v *ModuleView, _ *query, m *types.ModuleEntry) {
		var req, def []string
		for _, p := range m.RequestPermissions {
			req = append(req, p.Name)
		}
		for _, p := range m.DefinePermissions {
			def = append(def, p.Name)
		}
		v.RequestedPermissions = sortedUnique(req)
		v.DefinedPermissions = sortedUnique(def)
	}},
	{WithMetadata, func(v *ModuleView, _ *query, m *types.ModuleEntry) {
		v.Metadata = nonNil(slices.Clone(m.Metadata))
	}},
	{WithRouterMap, func(v *ModuleView, _ *query, m *types.ModuleEntry) {
		v.RouterMap = nonNil(m.RouterMap)
	}},
	{WithDisabled, func(v *ModuleView, q *query, m *types.ModuleEntry) {
		v.Removable = m.Removable[q.user]
	}},
	{WithSkill, func(v *ModuleView, q *query, m *types.ModuleEntry) {
		v.Skills = nonNil(q.src.Skills(m.Name))
	}},
}

// Module projects one module for user. It reports false when the module is unknown.
func Module(src Source, module string, flags Flag, user types.UserID) (ModuleView, bool) {
	for _, m := range src.Modules() {
		if m.Name == module {
			return moduleView(&query{src: src, flags: flags, user: user}, &m), true
		}
	}
	return ModuleView{}, false
}

func moduleView(q *query, m *types.ModuleEntry) ModuleView {
	v := ModuleView{
		Name:         m.Name,
		Type:         m.Type,
		SrcEntrance:  m.SrcEntrance,
		Description:  m.Description,
		MainElement:  m.MainElement,
		EntryAbility: m.EntryAbility,
		Dependencies: m.Dependencies,
		LibIsolation: m.LibIsolation,
	}
	for _, g := range moduleGroups {
		if q.flags.Has(g.flag) {
			g.fill(&v, q, m)
		}
	}
	return v
}

func (q *query) moduleComponents(module string, kind types.ComponentKind) []AbilityView {
	out := []AbilityView{}
	for _, ab := range q.src.Abilities(module) {
		if ab.Kind == kind {
			out = append(out, abilityView(q, &ab))
		}
	}
	return out
}
