package bundle

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/domain/router"
	"github.com/GriffinCanCode/bundlekit/internal/domain/skill"
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// moduleNode is a module together with the components it owns
type moduleNode struct {
	entry     types.ModuleEntry
	abilities map[string]*types.AbilityEntry
	skills    map[string][]*types.Skill // keyed by ability name, declaration order
}

// Aggregate is the queryable model of one bundle
type Aggregate struct {
	app          types.AppInfo
	modules      map[string]*moduleNode
	order        []string
	users        map[types.UserID]*types.UserOverlay
	entryAbility *types.AbilityKey
	primary      string
	logger       *zap.Logger
}

// New creates an empty aggregate for the bundle described by app
func New(app types.AppInfo, logger *zap.Logger) *Aggregate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregate{
		app:     app,
		modules: make(map[string]*moduleNode),
		users:   make(map[types.UserID]*types.UserOverlay),
		logger:  logger.With(zap.String("bundle", app.BundleName)),
	}
}

// Name returns the bundle name
func (a *Aggregate) Name() string {
	return a.app.BundleName
}

// App returns the bundle-wide application fields
func (a *Aggregate) App() types.AppInfo {
	return a.app
}

// SetApp replaces the bundle-wide application fields.
// The bundle name is immutable.
func (a *Aggregate) SetApp(app types.AppInfo) {
	app.BundleName = a.app.BundleName
	a.app = app
}

// AddModule inserts a module with its abilities and skills as one unit.
// Nothing is inserted when any part of the input is rejected.
func (a *Aggregate) AddModule(entry types.ModuleEntry, abilities []types.AbilityEntry, skills []types.Skill) error {
	if _, exists := a.modules[entry.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, entry.Name)
	}
	node, err := buildNode(entry, abilities, skills)
	if err != nil {
		return err
	}
	a.insert(node)
	return nil
}

// UpdateModule replaces a module wholesale. It behaves as RemoveModule
// followed by AddModule, but a rejected input leaves the old module in place.
// The module keeps its position and its per-user removable flags.
func (a *Aggregate) UpdateModule(entry types.ModuleEntry, abilities []types.AbilityEntry, skills []types.Skill) error {
	node, err := buildNode(entry, abilities, skills)
	if err != nil {
		return err
	}
	old, exists := a.modules[entry.Name]
	if !exists {
		a.insert(node)
		return nil
	}

	if len(old.entry.Removable) > 0 {
		node.entry.Removable = maps.Clone(old.entry.Removable)
	}
	slot := slices.Index(a.order, entry.Name)
	a.remove(entry.Name)
	a.insert(node)
	// insert appended the name; move it back to its old slot
	a.order = slices.Insert(a.order[:len(a.order)-1], slot, entry.Name)
	return nil
}

// RemoveModule removes a module and every component it owns.
// It returns false when the module is not present.
func (a *Aggregate) RemoveModule(name string) bool {
	if _, exists := a.modules[name]; !exists {
		a.logger.Debug("Remove of unknown module", zap.String("module", name))
		return false
	}
	a.remove(name)
	return true
}

// buildNode validates the input and assembles a module node without touching the aggregate
func buildNode(entry types.ModuleEntry, abilities []types.AbilityEntry, skills []types.Skill) (*moduleNode, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("%w: module name is required", ErrInvalidModule)
	}
	if entry.Type == "" {
		entry.Type = types.ModuleTypeFeature
	}
	if !entry.Type.Valid() {
		return nil, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidModule, entry.Name, entry.Type)
	}

	node := &moduleNode{
		entry:     entry.Clone(),
		abilities: make(map[string]*types.AbilityEntry, len(abilities)),
		skills:    make(map[string][]*types.Skill, len(skills)),
	}
	node.entry.Abilities = make([]string, 0, len(abilities))
	node.entry.Skills = make([]types.AbilityKey, 0, len(skills))
	node.entry.EntryAbility = ""

	for i := range abilities {
		ab := abilities[i].Clone()
		if ab.Module == "" {
			ab.Module = entry.Name
		}
		if ab.Name == "" || ab.Module != entry.Name {
			return nil, fmt.Errorf("%w: ability %q does not belong to module %s", ErrInvalidModule, ab.Key(), entry.Name)
		}
		if ab.Kind == "" {
			ab.Kind = types.KindAbility
		}
		if _, dup := node.abilities[ab.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAbility, ab.Key())
		}
		node.abilities[ab.Name] = &ab
		node.entry.Abilities = append(node.entry.Abilities, ab.Name)
	}

	for i := range skills {
		s := skills[i].Clone()
		if s.Key.Module == "" {
			s.Key.Module = entry.Name
		}
		if s.Key.Module != entry.Name {
			return nil, fmt.Errorf("%w: skill %s does not belong to module %s", ErrInvalidModule, s.Key, entry.Name)
		}
		if _, ok := node.abilities[s.Key.Name]; !ok {
			return nil, fmt.Errorf("%w: skill declared for %s", ErrAbilityNotFound, s.Key)
		}
		if _, seen := node.skills[s.Key.Name]; !seen {
			node.entry.Skills = append(node.entry.Skills, s.Key)
		}
		node.skills[s.Key.Name] = append(node.skills[s.Key.Name], &s)
		if node.entry.EntryAbility == "" && s.IsHome() {
			node.entry.EntryAbility = s.Key.Name
		}
	}

	for i := range node.entry.RouterMap {
		node.entry.RouterMap[i].Module = entry.Name
	}
	return node, nil
}

func (a *Aggregate) insert(node *moduleNode) {
	name := node.entry.Name
	for i := range node.entry.RouterMap {
		if node.entry.RouterMap[i].Bundle == "" {
			node.entry.RouterMap[i].Bundle = a.app.BundleName
		}
	}
	a.modules[name] = node
	a.order = append(a.order, name)

	if node.entry.EntryAbility != "" && a.entryAbility == nil {
		a.entryAbility = &types.AbilityKey{Module: name, Name: node.entry.EntryAbility}
		a.logger.Debug("Entry ability resolved", zap.Stringer("ability", a.entryAbility))
	}
	if node.entry.Type == types.ModuleTypeEntry {
		if a.primary != "" && a.primary != name {
			a.logger.Info("Primary module replaced",
				zap.String("previous", a.primary),
				zap.String("module", name),
			)
		}
		a.primary = name
	}
}

func (a *Aggregate) remove(name string) {
	delete(a.modules, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	if a.entryAbility != nil && a.entryAbility.Module == name {
		a.entryAbility = nil
	}
	if a.primary == name {
		a.primary = ""
	}
}

// Len returns the number of modules
func (a *Aggregate) Len() int {
	return len(a.modules)
}

// ModuleNames returns module names in insertion order
func (a *Aggregate) ModuleNames() []string {
	return append([]string(nil), a.order...)
}

// FindModule returns a copy of the named module
func (a *Aggregate) FindModule(name string) (types.ModuleEntry, bool) {
	node, ok := a.modules[name]
	if !ok {
		return types.ModuleEntry{}, false
	}
	return node.entry.Clone(), true
}

// Modules returns copies of all modules in insertion order
func (a *Aggregate) Modules() []types.ModuleEntry {
	out := make([]types.ModuleEntry, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.modules[name].entry.Clone())
	}
	return out
}

// FindAbility returns a copy of the ability or extension with the given key
func (a *Aggregate) FindAbility(module, name string) (types.AbilityEntry, bool) {
	node, ok := a.modules[module]
	if !ok {
		return types.AbilityEntry{}, false
	}
	ab, ok := node.abilities[name]
	if !ok {
		return types.AbilityEntry{}, false
	}
	return ab.Clone(), true
}

// Abilities returns the abilities and extensions of a module in declaration order
func (a *Aggregate) Abilities(module string) []types.AbilityEntry {
	node, ok := a.modules[module]
	if !ok {
		return nil
	}
	out := make([]types.AbilityEntry, 0, len(node.entry.Abilities))
	for _, name := range node.entry.Abilities {
		out = append(out, node.abilities[name].Clone())
	}
	return out
}

// Keys returns the composite keys of every component, in order
func (a *Aggregate) Keys() []types.AbilityKey {
	var out []types.AbilityKey
	for _, name := range a.order {
		for _, ab := range a.modules[name].entry.Abilities {
			out = append(out, types.AbilityKey{Module: name, Name: ab})
		}
	}
	return out
}

// SkillKeys returns the keys of every skill, in order
func (a *Aggregate) SkillKeys() []types.AbilityKey {
	var out []types.AbilityKey
	for _, name := range a.order {
		out = append(out, a.modules[name].entry.Skills...)
	}
	return out
}

// AbilitySkills returns copies of the skills declared for key, in declaration order
func (a *Aggregate) AbilitySkills(key types.AbilityKey) []types.Skill {
	node, ok := a.modules[key.Module]
	if !ok {
		return nil
	}
	return cloneSkills(nil, node.skills[key.Name])
}

// Skills returns the skills of a module grouped by ability, each group in declaration order
func (a *Aggregate) Skills(module string) []types.Skill {
	node, ok := a.modules[module]
	if !ok {
		return nil
	}
	out := make([]types.Skill, 0, len(node.entry.Skills))
	for _, key := range node.entry.Skills {
		out = cloneSkills(out, node.skills[key.Name])
	}
	return out
}

func cloneSkills(out []types.Skill, skills []*types.Skill) []types.Skill {
	for _, s := range skills {
		out = append(out, s.Clone())
	}
	return out
}

// EntryAbility returns the designated entry ability of the bundle
func (a *Aggregate) EntryAbility() (types.AbilityKey, bool) {
	if a.entryAbility == nil {
		return types.AbilityKey{}, false
	}
	return *a.entryAbility, true
}

// PrimaryModule returns the module currently designated primary, or ""
func (a *Aggregate) PrimaryModule() string {
	return a.primary
}

// FindAbilitiesByIntent returns the components with at least one skill accepting want
func (a *Aggregate) FindAbilitiesByIntent(want skill.Want) []types.AbilityEntry {
	return a.collect(func(s *types.Skill) bool {
		return skill.Match(s, want)
	})
}

// FindAbilitiesByData returns the components with at least one skill whose data patterns accept uri and mime
func (a *Aggregate) FindAbilitiesByData(uri, mime string) []types.AbilityEntry {
	return a.collect(func(s *types.Skill) bool {
		return skill.MatchURIAndType(s.URIs, uri, mime)
	})
}

func (a *Aggregate) collect(match func(*types.Skill) bool) []types.AbilityEntry {
	var out []types.AbilityEntry
	for _, name := range a.order {
		node := a.modules[name]
		for _, key := range node.entry.Skills {
			if slices.ContainsFunc(node.skills[key.Name], match) {
				out = append(out, node.abilities[key.Name].Clone())
			}
		}
	}
	return out
}

// RouteEntries returns the unmerged route fragments of every module
func (a *Aggregate) RouteEntries() []types.RouteEntry {
	var out []types.RouteEntry
	for _, name := range a.order {
		for i := range a.modules[name].entry.RouterMap {
			out = append(out, a.modules[name].entry.RouterMap[i].Clone())
		}
	}
	return out
}

// PrimarySet returns the module names that win route version ties.
// Only the designated primary module is in it.
func (a *Aggregate) PrimarySet() map[string]bool {
	set := make(map[string]bool, 1)
	if a.primary != "" {
		set[a.primary] = true
	}
	return set
}

// RouterMap returns the merged route table of the bundle
func (a *Aggregate) RouterMap() []types.RouteEntry {
	return router.Merge(a.RouteEntries(), a.PrimarySet())
}
