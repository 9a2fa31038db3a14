package bundle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// ModuleSnapshot is one module with its owned components
type ModuleSnapshot struct {
	Entry     types.ModuleEntry    `json:"entry"`
	Abilities []types.AbilityEntry `json:"abilities"`
	Skills    []types.Skill        `json:"skills"`
}

// Snapshot is a serializable copy of an aggregate
type Snapshot struct {
	App          types.AppInfo       `json:"app"`
	Modules      []ModuleSnapshot    `json:"modules"`
	Users        []types.UserOverlay `json:"users"`
	EntryAbility *types.AbilityKey   `json:"entry_ability,omitempty"`
	Primary      string              `json:"primary,omitempty"`
}

// Snapshot returns a deep copy of the aggregate state
func (a *Aggregate) Snapshot() Snapshot {
	snap := Snapshot{
		App:     a.app,
		Modules: make([]ModuleSnapshot, 0, len(a.order)),
		Users:   make([]types.UserOverlay, 0, len(a.users)),
		Primary: a.primary,
	}
	for _, name := range a.order {
		snap.Modules = append(snap.Modules, ModuleSnapshot{
			Entry:     a.modules[name].entry.Clone(),
			Abilities: a.Abilities(name),
			Skills:    a.Skills(name),
		})
	}
	for _, user := range a.Users() {
		snap.Users = append(snap.Users, a.users[user].Clone())
	}
	if a.entryAbility != nil {
		key := *a.entryAbility
		snap.EntryAbility = &key
	}
	return snap
}

// Restore rebuilds an aggregate from a snapshot.
// Designations are taken from the snapshot rather than re-resolved.
func Restore(snap Snapshot, logger *zap.Logger) (*Aggregate, error) {
	a := New(snap.App, logger)
	for _, m := range snap.Modules {
		if err := a.AddModule(m.Entry, m.Abilities, m.Skills); err != nil {
			return nil, fmt.Errorf("failed to restore module %s: %w", m.Entry.Name, err)
		}
	}
	for _, o := range snap.Users {
		a.AddUser(o)
	}

	a.entryAbility = nil
	if snap.EntryAbility != nil {
		if _, ok := a.FindAbility(snap.EntryAbility.Module, snap.EntryAbility.Name); ok {
			key := *snap.EntryAbility
			a.entryAbility = &key
		}
	}
	a.primary = ""
	if _, ok := a.modules[snap.Primary]; ok {
		a.primary = snap.Primary
	}
	return a, nil
}
