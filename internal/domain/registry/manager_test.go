package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/bundlekit/internal/domain/bundle"
	"github.com/GriffinCanCode/bundlekit/internal/domain/manifest"
	"github.com/GriffinCanCode/bundlekit/internal/domain/projection"
	"github.com/GriffinCanCode/bundlekit/internal/domain/skill"
	"github.com/GriffinCanCode/bundlekit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

const notesBundle = "com.example.notes"

func manifestDoc(bundleName, module, moduleType string, version uint32) string {
	return fmt.Sprintf(`{
  "app": {"bundleName": %q, "versionCode": %d, "versionName": "1.0.%d"},
  "module": {
    "name": %q,
    "type": %q,
    "requestPermissions": [{"name": "ohos.permission.INTERNET"}],
    "routerMap": [{"name": "home", "ohmurl": "@normalized:N&&&%s/Index&1.%d.0"}],
    "abilities": [
      {
        "name": "MainAbility",
        "exported": true,
        "skills": [{"actions": ["action.system.home"], "entities": ["entity.system.home"]}]
      },
      {
        "name": "ViewAbility",
        "skills": [{"actions": ["ohos.want.action.viewData"], "uris": [{"scheme": "https", "host": "notes.example.com", "type": "text/*"}]}]
      }
    ]
  }
}`, bundleName, version, version, module, moduleType, module, version)
}

func newTestManager(t *testing.T) (*Manager, *monitoring.Metrics) {
	t.Helper()
	metrics := monitoring.NewMetrics()
	mgr := NewManager(Options{
		Metrics: metrics,
		Now:     func() time.Time { return time.Unix(1700000000, 0) },
	})
	return mgr, metrics
}

func install(t *testing.T, mgr *Manager, bundleName, module, moduleType string, version uint32) {
	t.Helper()
	_, err := mgr.InstallManifest(context.Background(), []byte(manifestDoc(bundleName, module, moduleType, version)), manifest.FormatJSON)
	require.NoError(t, err)
}

func TestInstallManifest(t *testing.T) {
	mgr, metrics := newTestManager(t)
	install(t, mgr, notesBundle, "entry", "entry", 1)
	install(t, mgr, notesBundle, "feature", "feature", 2)

	assert.Equal(t, []string{notesBundle}, mgr.Bundles())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Bundles))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Mutations.WithLabelValues("install", "success")))

	view, err := mgr.Project(notesBundle, projection.WithModule, types.NoUser)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), view.VersionCode)
	assert.Equal(t, "entry", view.EntryModule)
	require.NotNil(t, view.EntryAbility)
	assert.Equal(t, types.AbilityKey{Module: "entry", Name: "MainAbility"}, *view.EntryAbility)
	require.Len(t, view.Modules, 2)
}

func TestInstallReplacesModule(t *testing.T) {
	mgr, _ := newTestManager(t)
	install(t, mgr, notesBundle, "entry", "entry", 1)
	install(t, mgr, notesBundle, "entry", "entry", 3)

	view, err := mgr.Project(notesBundle, projection.WithModule, types.NoUser)
	require.NoError(t, err)
	assert.Len(t, view.Modules, 1)
	assert.Equal(t, uint32(3), view.VersionCode)
}

func TestInstallKeepsNewerAppInfo(t *testing.T) {
	mgr, _ := newTestManager(t)
	install(t, mgr, notesBundle, "entry", "entry", 5)
	install(t, mgr, notesBundle, "feature", "feature", 2)

	app, err := mgr.ProjectApplication(notesBundle, 0, types.NoUser)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), app.VersionCode)
}

func TestInstallManifestParseError(t *testing.T) {
	mgr, metrics := newTestManager(t)
	_, err := mgr.InstallManifest(context.Background(), []byte(`{"app": {}}`), manifest.FormatJSON)
	assert.ErrorIs(t, err, manifest.ErrRequiredPropertyMissing)
	assert.Empty(t, mgr.Bundles())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Mutations.WithLabelValues("install", "error")))
}

func TestInstallFailureDropsNewBundle(t *testing.T) {
	mgr, _ := newTestManager(t)
	rec := &manifest.Record{
		App:       types.AppInfo{BundleName: notesBundle, VersionCode: 1},
		Module:    types.ModuleEntry{Name: "entry"},
		Abilities: []types.AbilityEntry{{Name: "A"}, {Name: "A"}},
	}

	err := mgr.Install(context.Background(), rec)
	assert.ErrorIs(t, err, bundle.ErrDuplicateAbility)
	assert.Empty(t, mgr.Bundles())
}

func TestRemoveModule(t *testing.T) {
	mgr, metrics := newTestManager(t)
	ctx := context.Background()
	install(t, mgr, notesBundle, "entry", "entry", 1)
	install(t, mgr, notesBundle, "feature", "feature", 1)

	require.NoError(t, mgr.RemoveModule(ctx, notesBundle, "entry"))
	view, err := mgr.Project(notesBundle, 0, types.NoUser)
	require.NoError(t, err)
	assert.Nil(t, view.EntryAbility)
	assert.Empty(t, view.EntryModule)

	err = mgr.RemoveModule(ctx, notesBundle, "entry")
	assert.ErrorIs(t, err, bundle.ErrModuleNotFound)

	require.NoError(t, mgr.RemoveModule(ctx, notesBundle, "feature"))
	assert.Empty(t, mgr.Bundles())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Bundles))

	_, err = mgr.Project(notesBundle, 0, types.NoUser)
	assert.ErrorIs(t, err, ErrBundleNotFound)
	assert.ErrorIs(t, mgr.RemoveModule(ctx, notesBundle, "feature"), ErrBundleNotFound)
}

func TestProjectErrors(t *testing.T) {
	mgr, _ := newTestManager(t)
	install(t, mgr, notesBundle, "entry", "entry", 1)

	_, err := mgr.Project(notesBundle, 0, 100)
	assert.ErrorIs(t, err, bundle.ErrUserOverlayMissing)

	_, err = mgr.ProjectModule(notesBundle, "missing", 0, types.NoUser)
	assert.ErrorIs(t, err, bundle.ErrModuleNotFound)

	_, err = mgr.ProjectAbility(notesBundle, types.AbilityKey{Module: "entry", Name: "Missing"}, 0, types.NoUser)
	assert.ErrorIs(t, err, bundle.ErrAbilityNotFound)

	_, err = mgr.ProjectAbility(notesBundle, types.AbilityKey{Module: "missing", Name: "MainAbility"}, 0, types.NoUser)
	assert.ErrorIs(t, err, bundle.ErrModuleNotFound)

	v, err := mgr.ProjectAbility(notesBundle, types.AbilityKey{Module: "entry", Name: "MainAbility"}, projection.WithSkill, types.NoUser)
	require.NoError(t, err)
	require.Len(t, v.Skills, 1)
	assert.True(t, v.Skills[0].IsHome())

	_, err = mgr.IsAbilityEnabled(notesBundle, types.AbilityKey{Module: "nope", Name: "MainAbility"}, types.NoUser)
	assert.ErrorIs(t, err, bundle.ErrModuleNotFound)
	assert.NotErrorIs(t, err, bundle.ErrAbilityNotFound)

	_, err = mgr.IsAbilityEnabled(notesBundle, types.AbilityKey{Module: "entry", Name: "Nope"}, types.NoUser)
	assert.ErrorIs(t, err, bundle.ErrAbilityNotFound)
	assert.NotErrorIs(t, err, bundle.ErrModuleNotFound)
}

func TestUsers(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	install(t, mgr, notesBundle, "entry", "entry", 1)
	key := types.AbilityKey{Module: "entry", Name: "MainAbility"}

	added, err := mgr.AddUser(ctx, notesBundle, types.UserOverlay{User: 100, Enabled: true, UID: 20010001})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = mgr.AddUser(ctx, notesBundle, types.UserOverlay{User: 100, UID: 1})
	require.NoError(t, err)
	assert.False(t, added)

	_, err = mgr.AddUser(ctx, notesBundle, types.UserOverlay{User: types.NoUser})
	assert.ErrorIs(t, err, ErrInvalidUser)

	app, err := mgr.ProjectApplication(notesBundle, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int32(20010001), app.UID)
	assert.Contains(t, app.AccessTokenID, "tok_")
	assert.Equal(t, time.Unix(1700000000, 0), app.InstallTime)

	require.NoError(t, mgr.SetAbilityEnabled(ctx, notesBundle, key, 100, false))
	enabled, err := mgr.IsAbilityEnabled(notesBundle, key, 100)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = mgr.IsAbilityEnabled(notesBundle, key, types.NoUser)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, mgr.ResetUser(ctx, notesBundle, 100))
	enabled, err = mgr.IsAbilityEnabled(notesBundle, key, 100)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, mgr.SetModuleRemovable(ctx, notesBundle, "entry", 100, true))
	mv, err := mgr.ProjectModule(notesBundle, "entry", projection.WithDisabled, 100)
	require.NoError(t, err)
	assert.True(t, mv.Removable)
	mv, err = mgr.ProjectModule(notesBundle, "entry", 0, 100)
	require.NoError(t, err)
	assert.False(t, mv.Removable)

	require.NoError(t, mgr.RemoveUser(ctx, notesBundle, 100))
	assert.ErrorIs(t, mgr.RemoveUser(ctx, notesBundle, 100), bundle.ErrUserOverlayMissing)
	assert.ErrorIs(t, mgr.SetEnabled(ctx, notesBundle, 100, false), bundle.ErrUserOverlayMissing)

	_, err = mgr.IsAbilityEnabled(notesBundle, key, 100)
	assert.ErrorIs(t, err, bundle.ErrUserOverlayMissing)
}

func TestFindByIntent(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	install(t, mgr, "com.example.notes", "entry", "entry", 1)
	install(t, mgr, "com.example.gallery", "entry", "entry", 1)

	refs := mgr.FindByIntent(skill.Want{Action: types.WantActionHome, Entities: []string{types.EntityHome}}, types.NoUser)
	assert.Equal(t, []types.AbilityRef{
		{Bundle: "com.example.gallery", Module: "entry", Name: "MainAbility"},
		{Bundle: "com.example.notes", Module: "entry", Name: "MainAbility"},
	}, refs)

	refs = mgr.FindAbilitiesByData("https://notes.example.com/list", "text/plain", types.NoUser)
	assert.Len(t, refs, 2)

	refs = mgr.FindByIntent(skill.Want{Action: "ohos.want.action.sendData"}, types.NoUser)
	assert.Empty(t, refs)

	// a real user only sees bundles installed for them
	_, err := mgr.AddUser(ctx, "com.example.notes", types.UserOverlay{User: 100, Enabled: true})
	require.NoError(t, err)
	refs = mgr.FindByIntent(skill.Want{Action: types.ActionHome}, 100)
	require.Len(t, refs, 1)
	assert.Equal(t, "com.example.notes", refs[0].Bundle)

	require.NoError(t, mgr.SetEnabled(ctx, "com.example.notes", 100, false))
	assert.Empty(t, mgr.FindByIntent(skill.Want{Action: types.ActionHome}, 100))
}

func TestFindByIntentMatchesEachSkill(t *testing.T) {
	mgr, _ := newTestManager(t)
	doc := `{
  "app": {"bundleName": "com.example.multi", "versionCode": 1},
  "module": {
    "name": "entry",
    "type": "entry",
    "abilities": [
      {
        "name": "Split",
        "skills": [
          {"actions": ["action.system.home"]},
          {"actions": ["x.y"], "entities": ["entity.system.home"]}
        ]
      },
      {
        "name": "Main",
        "skills": [
          {"actions": ["ohos.want.action.viewData"], "uris": [{"scheme": "https", "host": "a.com"}]},
          {"actions": ["action.system.home"], "entities": ["entity.system.home"]}
        ]
      }
    ]
  }
}`
	_, err := mgr.InstallManifest(context.Background(), []byte(doc), manifest.FormatJSON)
	require.NoError(t, err)

	refs := mgr.FindByIntent(skill.Want{Action: types.ActionHome, Entities: []string{types.EntityHome}}, types.NoUser)
	assert.Equal(t, []types.AbilityRef{{Bundle: "com.example.multi", Module: "entry", Name: "Main"}}, refs)

	view, err := mgr.Project("com.example.multi", 0, types.NoUser)
	require.NoError(t, err)
	require.NotNil(t, view.EntryAbility)
	assert.Equal(t, "Main", view.EntryAbility.Name)
}

func TestRouterMap(t *testing.T) {
	mgr, _ := newTestManager(t)
	install(t, mgr, notesBundle, "entry", "entry", 1)
	install(t, mgr, notesBundle, "feature", "feature", 5)

	routes, err := mgr.RouterMap(notesBundle)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "feature", routes[0].Module)
	assert.Equal(t, notesBundle, routes[0].Bundle)
}

func TestConcurrentAccess(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()
	install(t, mgr, notesBundle, "entry", "entry", 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			module := fmt.Sprintf("feature%d", i)
			_, err := mgr.InstallManifest(ctx, []byte(manifestDoc(notesBundle, module, "feature", 1)), manifest.FormatJSON)
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := mgr.Project(notesBundle, projection.AllFlags, types.NoUser)
			assert.NoError(t, err)
			mgr.FindByIntent(skill.Want{Action: types.ActionHome}, types.NoUser)
		}()
	}
	wg.Wait()

	view, err := mgr.Project(notesBundle, projection.WithModule, types.NoUser)
	require.NoError(t, err)
	assert.Len(t, view.Modules, 9)
}
