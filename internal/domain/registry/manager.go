package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/domain/bundle"
	"github.com/GriffinCanCode/bundlekit/internal/domain/manifest"
	"github.com/GriffinCanCode/bundlekit/internal/domain/projection"
	"github.com/GriffinCanCode/bundlekit/internal/domain/skill"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/bundlekit/internal/shared/id"
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// Options configures a Manager. Every field is optional.
type Options struct {
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Store   *Store
	Parser  *manifest.Parser
	Now     func() time.Time
}

// entry is one bundle guarded by its own lock.
// removed is set under mu when the bundle leaves the map.
type entry struct {
	mu      sync.RWMutex
	agg     *bundle.Aggregate
	removed bool
}

// Manager is the entry point for callers: it turns manifests into bundle
// mutations and serves projections and intent queries. Mutations of one
// bundle are serialized; reads run concurrently.
type Manager struct {
	mu      sync.RWMutex // guards bundles
	bundles map[string]*entry

	parser  *manifest.Parser
	store   *Store
	metrics *monitoring.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates an empty manager
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Parser == nil {
		opts.Parser = manifest.NewParser(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		bundles: make(map[string]*entry),
		parser:  opts.Parser,
		store:   opts.Store,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// lookup returns the bundle entry locked for reading
func (m *Manager) lookup(name string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.bundles[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, name)
	}
	e.mu.RLock()
	return e, nil
}

// acquire returns the bundle entry locked for writing. When create is set a
// missing bundle is created from it.
func (m *Manager) acquire(name string, create func() *bundle.Aggregate) (*entry, error) {
	for {
		m.mu.RLock()
		e, ok := m.bundles[name]
		m.mu.RUnlock()

		if !ok {
			if create == nil {
				return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, name)
			}
			m.mu.Lock()
			if e, ok = m.bundles[name]; !ok {
				e = &entry{agg: create()}
				m.bundles[name] = e
			}
			m.mu.Unlock()
		}

		e.mu.Lock()
		if !e.removed {
			return e, nil
		}
		// Lost a race with the removal of the last module; look again
		e.mu.Unlock()
	}
}

// drop removes an emptied bundle from the map. e.mu must be held.
func (m *Manager) drop(name string, e *entry) {
	e.removed = true
	m.mu.Lock()
	if m.bundles[name] == e {
		delete(m.bundles, name)
	}
	count := len(m.bundles)
	m.mu.Unlock()
	m.setBundleCount(count)
}

// Install adds the record's module to its bundle, creating the bundle on
// first sight and replacing the module when it is already installed.
func (m *Manager) Install(ctx context.Context, rec *manifest.Record) (err error) {
	defer func() { m.recordMutation("install", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	name := rec.Bundle()
	e, err := m.acquire(name, func() *bundle.Aggregate {
		return bundle.New(rec.App, m.logger)
	})
	if err != nil {
		return err
	}

	before := m.checkpoint(e)
	agg := e.agg
	_, exists := agg.FindModule(rec.Module.Name)
	if exists {
		err = agg.UpdateModule(rec.Module, rec.Abilities, rec.Skills)
	} else {
		err = agg.AddModule(rec.Module, rec.Abilities, rec.Skills)
	}
	if err != nil {
		if agg.Len() == 0 {
			m.drop(name, e)
		}
		e.mu.Unlock()
		return fmt.Errorf("failed to install module %s of %s: %w", rec.Module.Name, name, err)
	}

	if rec.App.VersionCode >= agg.App().VersionCode {
		agg.SetApp(rec.App)
	}
	err = m.commit(ctx, name, e, before)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	m.setBundleCount(m.Count())
	m.logger.Info("Module installed",
		zap.String("bundle", name),
		zap.String("module", rec.Module.Name),
		zap.Bool("replaced", exists),
		zap.Int("abilities", len(rec.Abilities)),
		zap.Int("dropped", len(rec.Warnings)),
	)
	return nil
}

// InstallManifest parses a manifest document and installs it
func (m *Manager) InstallManifest(ctx context.Context, data []byte, format manifest.Format) (*manifest.Record, error) {
	rec, err := m.parser.Parse(data, format)
	if err != nil {
		m.recordMutation("install", err)
		return nil, err
	}
	if err := m.Install(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RemoveModule uninstalls one module. Removing the last module removes the bundle.
func (m *Manager) RemoveModule(ctx context.Context, name, module string) (err error) {
	defer func() { m.recordMutation("remove_module", err) }()

	e, err := m.acquire(name, nil)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if _, ok := e.agg.FindModule(module); !ok {
		return fmt.Errorf("%w: %s in %s", bundle.ErrModuleNotFound, module, name)
	}

	if e.agg.Len() == 1 {
		// The snapshot goes first so a failed delete leaves the bundle installed
		if m.store != nil {
			if err := m.store.Delete(ctx, name); err != nil {
				m.logger.Error("Snapshot delete failed", zap.String("bundle", name), zap.Error(err))
				return err
			}
		}
		e.agg.RemoveModule(module)
		m.drop(name, e)
		m.logger.Info("Bundle removed", zap.String("bundle", name))
		return nil
	}

	before := m.checkpoint(e)
	e.agg.RemoveModule(module)
	if err := m.commit(ctx, name, e, before); err != nil {
		return err
	}
	m.logger.Info("Module removed", zap.String("bundle", name), zap.String("module", module))
	return nil
}

// Bundles returns the installed bundle names in ascending order
func (m *Manager) Bundles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.bundles))
	for name := range m.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of installed bundles
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bundles)
}

// checkUser reports ErrUserOverlayMissing for an unknown user other than NoUser
func checkUser(agg *bundle.Aggregate, user types.UserID) error {
	if user == types.NoUser {
		return nil
	}
	if _, ok := agg.User(user); !ok {
		return fmt.Errorf("%w: user %s of %s", bundle.ErrUserOverlayMissing, user, agg.Name())
	}
	return nil
}

// Project returns the package view of a bundle for user
func (m *Manager) Project(name string, flags projection.Flag, user types.UserID) (projection.PackageView, error) {
	e, err := m.lookup(name)
	if err != nil {
		return projection.PackageView{}, err
	}
	defer e.mu.RUnlock()

	if err := checkUser(e.agg, user); err != nil {
		return projection.PackageView{}, err
	}
	m.recordProjection("package")
	return projection.Package(e.agg, flags, user), nil
}

// ProjectModule returns the view of one module
func (m *Manager) ProjectModule(name, module string, flags projection.Flag, user types.UserID) (projection.ModuleView, error) {
	e, err := m.lookup(name)
	if err != nil {
		return projection.ModuleView{}, err
	}
	defer e.mu.RUnlock()

	if err := checkUser(e.agg, user); err != nil {
		return projection.ModuleView{}, err
	}
	v, ok := projection.Module(e.agg, module, flags, user)
	if !ok {
		return v, fmt.Errorf("%w: %s in %s", bundle.ErrModuleNotFound, module, name)
	}
	m.recordProjection("module")
	return v, nil
}

// ProjectAbility returns the view of one ability or extension
func (m *Manager) ProjectAbility(name string, key types.AbilityKey, flags projection.Flag, user types.UserID) (projection.AbilityView, error) {
	e, err := m.lookup(name)
	if err != nil {
		return projection.AbilityView{}, err
	}
	defer e.mu.RUnlock()

	if err := checkUser(e.agg, user); err != nil {
		return projection.AbilityView{}, err
	}
	if _, ok := e.agg.FindModule(key.Module); !ok {
		return projection.AbilityView{}, fmt.Errorf("%w: %s in %s", bundle.ErrModuleNotFound, key.Module, name)
	}
	v, ok := projection.Ability(e.agg, key, flags, user)
	if !ok {
		return v, fmt.Errorf("%w: %s in %s", bundle.ErrAbilityNotFound, key, name)
	}
	m.recordProjection("ability")
	return v, nil
}

// ProjectApplication returns the application view of a bundle
func (m *Manager) ProjectApplication(name string, flags projection.Flag, user types.UserID) (projection.ApplicationView, error) {
	e, err := m.lookup(name)
	if err != nil {
		return projection.ApplicationView{}, err
	}
	defer e.mu.RUnlock()

	if err := checkUser(e.agg, user); err != nil {
		return projection.ApplicationView{}, err
	}
	m.recordProjection("application")
	return projection.Application(e.agg, flags, user), nil
}

// RouterMap returns the merged route table of a bundle
func (m *Manager) RouterMap(name string) ([]types.RouteEntry, error) {
	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	defer e.mu.RUnlock()
	return e.agg.RouterMap(), nil
}

// FindByIntent resolves want against every bundle in name order. For a real
// user only enabled bundles and abilities the user has not disabled are returned.
func (m *Manager) FindByIntent(want skill.Want, user types.UserID) []types.AbilityRef {
	return m.query(user, func(agg *bundle.Aggregate) []types.AbilityEntry {
		return agg.FindAbilitiesByIntent(want)
	})
}

// FindAbilitiesByData resolves a data URI and MIME type against every bundle
func (m *Manager) FindAbilitiesByData(uri, mime string, user types.UserID) []types.AbilityRef {
	return m.query(user, func(agg *bundle.Aggregate) []types.AbilityEntry {
		return agg.FindAbilitiesByData(uri, mime)
	})
}

func (m *Manager) query(user types.UserID, find func(*bundle.Aggregate) []types.AbilityEntry) []types.AbilityRef {
	timer := monitoring.NewTimer(m.metrics)
	defer timer.Stop()

	refs := []types.AbilityRef{}
	for _, name := range m.Bundles() {
		e, err := m.lookup(name)
		if err != nil {
			continue
		}
		if enabled, err := e.agg.IsEnabled(user); err != nil || !enabled {
			e.mu.RUnlock()
			continue
		}
		for _, ab := range find(e.agg) {
			if !e.agg.IsAbilityEnabled(ab.Key(), user) {
				continue
			}
			refs = append(refs, types.AbilityRef{Bundle: name, Module: ab.Module, Name: ab.Name})
		}
		e.mu.RUnlock()
	}
	return refs
}

// AddUser records a user's installation of a bundle. Zero timestamps are set
// to now and a missing access token id is generated. It returns false when the
// user was already known; the existing overlay is kept.
func (m *Manager) AddUser(ctx context.Context, name string, overlay types.UserOverlay) (added bool, err error) {
	defer func() { m.recordMutation("add_user", err) }()

	if overlay.User < 0 {
		return false, fmt.Errorf("%w: %s", ErrInvalidUser, overlay.User)
	}
	now := m.now()
	if overlay.InstallTime.IsZero() {
		overlay.InstallTime = now
	}
	if overlay.UpdateTime.IsZero() {
		overlay.UpdateTime = overlay.InstallTime
	}
	if overlay.AccessTokenID == "" {
		overlay.AccessTokenID = id.NewTokenID().String()
	}

	e, err := m.acquire(name, nil)
	if err != nil {
		return false, err
	}
	defer e.mu.Unlock()

	before := m.checkpoint(e)
	if !e.agg.AddUser(overlay) {
		return false, nil
	}
	if err := m.commit(ctx, name, e, before); err != nil {
		return false, err
	}
	m.logger.Info("User added", zap.String("bundle", name), zap.Stringer("user", overlay.User))
	return true, nil
}

// RemoveUser deletes a user's overlay and per-user module state
func (m *Manager) RemoveUser(ctx context.Context, name string, user types.UserID) error {
	return m.mutate(ctx, "remove_user", name, func(agg *bundle.Aggregate) error {
		if !agg.RemoveUser(user) {
			return fmt.Errorf("%w: user %s of %s", bundle.ErrUserOverlayMissing, user, name)
		}
		return nil
	})
}

// ResetUser restores a user's enablement state
func (m *Manager) ResetUser(ctx context.Context, name string, user types.UserID) error {
	return m.mutate(ctx, "reset_user", name, func(agg *bundle.Aggregate) error {
		return agg.ResetUser(user)
	})
}

// SetEnabled enables or disables the bundle for a user
func (m *Manager) SetEnabled(ctx context.Context, name string, user types.UserID, enabled bool) error {
	return m.mutate(ctx, "set_enabled", name, func(agg *bundle.Aggregate) error {
		return agg.SetEnabled(user, enabled)
	})
}

// SetAbilityEnabled enables or disables one ability for a user
func (m *Manager) SetAbilityEnabled(ctx context.Context, name string, key types.AbilityKey, user types.UserID, enabled bool) error {
	return m.mutate(ctx, "set_ability_enabled", name, func(agg *bundle.Aggregate) error {
		return agg.SetAbilityEnabled(key.Module, key.Name, user, enabled)
	})
}

// SetModuleRemovable records whether a user may remove a module
func (m *Manager) SetModuleRemovable(ctx context.Context, name, module string, user types.UserID, removable bool) error {
	return m.mutate(ctx, "set_module_removable", name, func(agg *bundle.Aggregate) error {
		return agg.SetModuleRemovable(module, user, removable)
	})
}

// IsAbilityEnabled reports whether an ability is enabled for a user
func (m *Manager) IsAbilityEnabled(name string, key types.AbilityKey, user types.UserID) (bool, error) {
	e, err := m.lookup(name)
	if err != nil {
		return false, err
	}
	defer e.mu.RUnlock()

	if _, ok := e.agg.FindModule(key.Module); !ok {
		return false, fmt.Errorf("%w: %s in %s", bundle.ErrModuleNotFound, key.Module, name)
	}
	if _, ok := e.agg.FindAbility(key.Module, key.Name); !ok {
		return false, fmt.Errorf("%w: %s in %s", bundle.ErrAbilityNotFound, key, name)
	}
	if err := checkUser(e.agg, user); err != nil {
		return false, err
	}
	return e.agg.IsAbilityEnabled(key, user), nil
}

// mutate runs fn under the bundle's write lock and persists the result.
// Snapshots are saved under the lock so the stored revision order matches
// the mutation order. A failed save rolls the bundle back.
func (m *Manager) mutate(ctx context.Context, op, name string, fn func(*bundle.Aggregate) error) (err error) {
	defer func() { m.recordMutation(op, err) }()

	e, err := m.acquire(name, nil)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	before := m.checkpoint(e)
	if err := fn(e.agg); err != nil {
		return err
	}
	if err := m.commit(ctx, name, e, before); err != nil {
		return err
	}
	m.logger.Debug("Bundle updated", zap.String("bundle", name), zap.String("op", op))
	return nil
}

// Restore loads every stored snapshot. Snapshots that fail to load are
// logged and skipped.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	names, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, name := range names {
		stored, err := m.store.Load(ctx, name)
		if err != nil {
			m.logger.Warn("Snapshot skipped", zap.String("bundle", name), zap.Error(err))
			continue
		}
		agg, err := bundle.Restore(stored.Snapshot, m.logger)
		if err != nil {
			m.logger.Warn("Snapshot skipped", zap.String("bundle", name), zap.Error(err))
			continue
		}

		m.mu.Lock()
		m.bundles[name] = &entry{agg: agg}
		m.mu.Unlock()
		restored++
		m.logger.Debug("Bundle restored",
			zap.String("bundle", name),
			zap.String("revision", stored.Revision.String()),
		)
	}

	m.setBundleCount(m.Count())
	m.logger.Info("Bundles restored", zap.Int("restored", restored), zap.Int("stored", len(names)))
	return restored, nil
}

// checkpoint captures the state a failed save rolls back to. Without a store
// nothing can fail to save and it returns nil. e.mu must be held.
func (m *Manager) checkpoint(e *entry) *bundle.Snapshot {
	if m.store == nil {
		return nil
	}
	snap := e.agg.Snapshot()
	return &snap
}

// commit saves the bundle's current state. When the save fails the bundle is
// put back to before; a bundle that had no modules before is dropped.
// e.mu must be held.
func (m *Manager) commit(ctx context.Context, name string, e *entry, before *bundle.Snapshot) error {
	err := m.persist(ctx, e.agg.Snapshot())
	if err == nil || before == nil {
		return err
	}

	if len(before.Modules) == 0 {
		m.drop(name, e)
		m.logger.Warn("Bundle dropped after failed save", zap.String("bundle", name))
		return err
	}
	agg, rerr := bundle.Restore(*before, m.logger)
	if rerr != nil {
		m.logger.Error("Rollback failed", zap.String("bundle", name), zap.Error(rerr))
		return errors.Join(err, rerr)
	}
	e.agg = agg
	m.logger.Warn("Bundle rolled back after failed save", zap.String("bundle", name))
	return err
}

func (m *Manager) persist(ctx context.Context, snap bundle.Snapshot) error {
	if m.store == nil {
		return nil
	}
	if _, err := m.store.Save(ctx, snap); err != nil {
		m.logger.Error("Snapshot save failed", zap.String("bundle", snap.App.BundleName), zap.Error(err))
		return err
	}
	return nil
}

func (m *Manager) recordMutation(op string, err error) {
	if m.metrics != nil {
		m.metrics.RecordMutation(op, err)
	}
}

func (m *Manager) recordProjection(view string) {
	if m.metrics != nil {
		m.metrics.RecordProjection(view)
	}
}

func (m *Manager) setBundleCount(count int) {
	if m.metrics != nil {
		m.metrics.SetBundles(count)
	}
}
