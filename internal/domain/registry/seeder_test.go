package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/bundlekit/internal/domain/projection"
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

func TestSeed(t *testing.T) {
	mgr := NewManager(Options{})
	seeder := NewSeeder(mgr, filepath.Join("testdata", "seed"), "")

	result, err := seeder.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "module.toml")

	view, err := mgr.Project("com.example.notes", projection.WithModule, types.NoUser)
	require.NoError(t, err)
	assert.Len(t, view.Modules, 2)
	require.NotNil(t, view.EntryAbility)
	assert.Equal(t, "MainAbility", view.EntryAbility.Name)
}

func TestSeedPattern(t *testing.T) {
	mgr := NewManager(Options{})
	seeder := NewSeeder(mgr, filepath.Join("testdata", "seed"), "notes/**/module.yaml")

	result, err := seeder.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Zero(t, result.Failed)
}

func TestSeedMissingDirectory(t *testing.T) {
	mgr := NewManager(Options{})
	result, err := NewSeeder(mgr, filepath.Join(t.TempDir(), "absent"), "").Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Loaded)
}

func TestSeedInvalidPattern(t *testing.T) {
	mgr := NewManager(Options{})
	_, err := NewSeeder(mgr, "testdata", "[").Seed(context.Background())
	assert.Error(t, err)
}
