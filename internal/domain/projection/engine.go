package projection

import (
	"slices"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
	"github.com/GriffinCanCode/bundlekit/internal/shared/utils"
)

// query carries the inputs of one projection
type query struct {
	src   Source
	flags Flag
	user  types.UserID
}

type packageGroup struct {
	flag Flag
	fill func(*PackageView, *query)
}

// packageGroups maps each flag to the field group it populates in a PackageView
var packageGroups = []packageGroup{
	{WithApplication, func(v *PackageView, q *query) { v.Application = q.applicationBase() }},
	{WithModule, func(v *PackageView, q *query) { v.Modules = q.modules() }},
	{WithAbility, func(v *PackageView, q *query) { v.Abilities = q.components(types.KindAbility) }},
	{WithExtension, func(v *PackageView, q *query) { v.Extensions = q.components(types.KindExtension) }},
	{WithPermission, func(v *PackageView, q *query) {
		v.RequestedPermissions = q.requestedPermissions()
		v.DefinedPermissions = q.definedPermissions()
	}},
	{WithMetadata, func(v *PackageView, q *query) { v.Metadata = q.metadata(true) }},
	{WithDisabled, func(v *PackageView, q *query) { v.Disabled = q.disabled() }},
	{WithSignature, func(v *PackageView, q *query) { v.Signature = q.signature() }},
	{WithRouterMap, func(v *PackageView, q *query) { v.RouterMap = nonNil(q.src.RouterMap()) }},
	{WithSkill, func(v *PackageView, q *query) { v.Skills = q.skills() }},
}

// Package projects the whole bundle for user
func Package(src Source, flags Flag, user types.UserID) PackageView {
	q := &query{src: src, flags: flags, user: user}
	app := src.App()

	v := PackageView{
		Name:        app.BundleName,
		VersionCode: app.VersionCode,
		VersionName: app.VersionName,
		EntryModule: src.PrimaryModule(),
	}
	if key, ok := src.EntryAbility(); ok {
		v.EntryAbility = &key
	}

	for _, g := range packageGroups {
		if flags.Has(g.flag) {
			g.fill(&v, q)
		}
	}

	if flags.Has(WithApplication | WithModule) {
		v.Application.Permissions = q.requestedPermissions()
	}
	return v
}

type applicationGroup struct {
	flag Flag
	fill func(*ApplicationView, *query)
}

// applicationGroups maps each flag to the field group it populates in an ApplicationView
var applicationGroups = []applicationGroup{
	{WithPermission, func(v *ApplicationView, q *query) { v.Permissions = q.requestedPermissions() }},
	{WithMetadata, func(v *ApplicationView, q *query) { v.Metadata = q.metadata(false) }},
	{WithSignature, func(v *ApplicationView, q *query) { v.Signature = q.signature() }},
}

// Application projects the bundle-wide application fields for user
func Application(src Source, flags Flag, user types.UserID) ApplicationView {
	q := &query{src: src, flags: flags, user: user}
	v := q.applicationBase()
	for _, g := range applicationGroups {
		if flags.Has(g.flag) {
			g.fill(v, q)
		}
	}
	return *v
}

func (q *query) applicationBase() *ApplicationView {
	app := q.src.App()
	v := &ApplicationView{
		Name:             app.BundleName,
		VersionCode:      app.VersionCode,
		VersionName:      app.VersionName,
		MinAPIVersion:    app.MinAPIVersion,
		TargetAPIVersion: app.TargetAPIVersion,
		Vendor:           app.Vendor,
		Label:            app.Label,
		Icon:             app.Icon,
	}
	if q.user == types.NoUser {
		v.Enabled = true
		return v
	}
	if o, ok := q.src.User(q.user); ok {
		v.Enabled = o.Enabled
		v.UID = o.UID
		v.GIDs = o.GIDs
		v.AccessTokenID = o.AccessTokenID
		v.InstallTime = o.InstallTime
		v.UpdateTime = o.UpdateTime
	}
	return v
}

func (q *query) modules() []ModuleView {
	mods := q.src.Modules()
	out := make([]ModuleView, 0, len(mods))
	for i := range mods {
		out = append(out, moduleView(q, &mods[i]))
	}
	return out
}

func (q *query) components(kind types.ComponentKind) []AbilityView {
	out := []AbilityView{}
	for _, m := range q.src.Modules() {
		for _, ab := range q.src.Abilities(m.Name) {
			if ab.Kind == kind {
				out = append(out, abilityView(q, &ab))
			}
		}
	}
	return out
}

func (q *query) requestedPermissions() []string {
	var names []string
	for _, m := range q.src.Modules() {
		for _, p := range m.RequestPermissions {
			names = append(names, p.Name)
		}
	}
	return sortedUnique(names)
}

func (q *query) definedPermissions() []string {
	var names []string
	for _, m := range q.src.Modules() {
		for _, p := range m.DefinePermissions {
			names = append(names, p.Name)
		}
	}
	return sortedUnique(names)
}

// metadata collects module metadata, and component metadata when components is set
func (q *query) metadata(components bool) []ComponentMetadata {
	out := []ComponentMetadata{}
	for _, m := range q.src.Modules() {
		if len(m.Metadata) > 0 {
			out = append(out, ComponentMetadata{Module: m.Name, Metadata: slices.Clone(m.Metadata)})
		}
		if !components {
			continue
		}
		for _, ab := range q.src.Abilities(m.Name) {
			if len(ab.Metadata) > 0 {
				out = append(out, ComponentMetadata{Module: m.Name, Ability: ab.Name, Metadata: ab.Metadata})
			}
		}
	}
	return out
}

func (q *query) disabled() *DisabledView {
	v := &DisabledView{DisabledAbilities: []string{}}
	if q.user == types.NoUser {
		v.Enabled = true
		return v
	}
	if o, ok := q.src.User(q.user); ok {
		v.Enabled = o.Enabled
		v.DisabledAbilities = sortedUnique(o.DisabledAbilities)
	}
	return v
}

func (q *query) signature() *SignatureView {
	app := q.src.App()
	return &SignatureView{
		Fingerprint:   utils.DefaultHasher().Fingerprint(app.Certificate),
		AppIdentifier: app.AppIdentifier,
	}
}

func (q *query) skills() []types.Skill {
	out := []types.Skill{}
	for _, m := range q.src.Modules() {
		out = append(out, q.src.Skills(m.Name)...)
	}
	return out
}

// sortedUnique returns the distinct values in lexicographic order, never nil
func sortedUnique(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
