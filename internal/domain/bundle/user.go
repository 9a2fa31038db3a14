package bundle

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// AddUser records the first observation of a user.
// It returns false and keeps the existing overlay when the user is already known.
func (a *Aggregate) AddUser(overlay types.UserOverlay) bool {
	if _, ok := a.users[overlay.User]; ok {
		return false
	}
	o := overlay.Clone()
	a.users[overlay.User] = &o
	a.logger.Debug("User overlay created", zap.Stringer("user", overlay.User))
	return true
}

// User returns a copy of the user's overlay
func (a *Aggregate) User(user types.UserID) (types.UserOverlay, bool) {
	o, ok := a.users[user]
	if !ok {
		return types.UserOverlay{}, false
	}
	return o.Clone(), true
}

// Users returns the known user ids in ascending order
func (a *Aggregate) Users() []types.UserID {
	out := make([]types.UserID, 0, len(a.users))
	for user := range a.users {
		out = append(out, user)
	}
	slices.Sort(out)
	return out
}

// ResetUser restores the user's enablement state while keeping identity and timestamps
func (a *Aggregate) ResetUser(user types.UserID) error {
	o, err := a.overlay(user)
	if err != nil {
		return err
	}
	o.Enabled = true
	o.DisabledAbilities = nil
	return nil
}

// RemoveUser deletes the user's overlay and the user's removability flag on every module.
// It returns false when the user is unknown.
func (a *Aggregate) RemoveUser(user types.UserID) bool {
	if _, ok := a.users[user]; !ok {
		return false
	}
	delete(a.users, user)
	for _, node := range a.modules {
		delete(node.entry.Removable, user)
	}
	return true
}

// SetEnabled sets whether the bundle is enabled for user
func (a *Aggregate) SetEnabled(user types.UserID, enabled bool) error {
	o, err := a.overlay(user)
	if err != nil {
		return err
	}
	o.Enabled = enabled
	return nil
}

// IsEnabled reports whether the bundle is enabled for user.
// NoUser is always enabled.
func (a *Aggregate) IsEnabled(user types.UserID) (bool, error) {
	if user == types.NoUser {
		return true, nil
	}
	o, err := a.overlay(user)
	if err != nil {
		return false, err
	}
	return o.Enabled, nil
}

// SetAbilityEnabled enables or disables one ability for user
func (a *Aggregate) SetAbilityEnabled(module, ability string, user types.UserID, enabled bool) error {
	node, ok := a.modules[module]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, module)
	}
	if _, ok := node.abilities[ability]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrAbilityNotFound, module, ability)
	}
	o, err := a.overlay(user)
	if err != nil {
		return err
	}

	i := slices.Index(o.DisabledAbilities, ability)
	switch {
	case enabled && i >= 0:
		o.DisabledAbilities = slices.Delete(o.DisabledAbilities, i, i+1)
	case !enabled && i < 0:
		o.DisabledAbilities = append(o.DisabledAbilities, ability)
	}
	return nil
}

// IsAbilityEnabled reports whether the ability is enabled for user.
//
// NoUser is a special case: it returns true without consulting any overlay,
// so callers without a user context see every ability as enabled. For any
// other user a missing overlay reports false.
func (a *Aggregate) IsAbilityEnabled(key types.AbilityKey, user types.UserID) bool {
	if user == types.NoUser {
		return true
	}
	o, ok := a.users[user]
	if !ok {
		return false
	}
	return !slices.Contains(o.DisabledAbilities, key.Name)
}

// SetModuleRemovable records whether user may remove the module
func (a *Aggregate) SetModuleRemovable(module string, user types.UserID, removable bool) error {
	node, ok := a.modules[module]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, module)
	}
	if _, err := a.overlay(user); err != nil {
		return err
	}
	if node.entry.Removable == nil {
		node.entry.Removable = make(map[types.UserID]bool)
	}
	node.entry.Removable[user] = removable
	return nil
}

// IsModuleRemovable reports whether user may remove the module; unset flags read as false
func (a *Aggregate) IsModuleRemovable(module string, user types.UserID) (bool, error) {
	node, ok := a.modules[module]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrModuleNotFound, module)
	}
	return node.entry.Removable[user], nil
}

func (a *Aggregate) overlay(user types.UserID) (*types.UserOverlay, error) {
	o, ok := a.users[user]
	if !ok {
		return nil, fmt.Errorf("%w: bundle %s user %d", ErrUserOverlayMissing, a.app.BundleName, user)
	}
	return o, nil
}
