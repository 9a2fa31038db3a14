package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

func parseFile(t *testing.T, name string) *Record {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	format, err := FormatFromPath(path)
	require.NoError(t, err)

	rec, err := NewParser(nil).Parse(data, format)
	require.NoError(t, err)
	return rec
}

func TestParseJSON(t *testing.T) {
	rec := parseFile(t, "notes.json")

	assert.Equal(t, "com.example.notes", rec.Bundle())
	assert.Equal(t, uint32(1000000), rec.App.VersionCode)
	assert.Equal(t, uint32(9), rec.App.MinAPIVersion)
	assert.Equal(t, "5765880207853624761", rec.App.AppIdentifier)

	m := rec.Module
	assert.Equal(t, "entry", m.Name)
	assert.Equal(t, types.ModuleTypeEntry, m.Type)
	assert.Equal(t, []types.Dependency{{Module: "library"}}, m.Dependencies)
	require.Len(t, m.RequestPermissions, 2)
	assert.Equal(t, "always", m.RequestPermissions[0].UsedScene)
	assert.Equal(t, "system_grant", m.DefinePermissions[0].GrantMode)
	assert.Equal(t, []types.Metadata{{Name: "theme", Value: "dark"}}, m.Metadata)

	require.Len(t, m.RouterMap, 1)
	assert.Equal(t, "detail", m.RouterMap[0].Name)
	assert.Equal(t, map[string]string{"title": "Detail"}, m.RouterMap[0].Data)
	require.Len(t, rec.Warnings, 1)
	assert.ErrorIs(t, rec.Warnings[0], ErrMalformedRouteData)

	require.Len(t, rec.Abilities, 3)
	entry := rec.Abilities[0]
	assert.Equal(t, types.AbilityKey{Module: "entry", Name: "EntryAbility"}, entry.Key())
	assert.Equal(t, types.KindAbility, entry.Kind)
	assert.Equal(t, types.LaunchMultiton, entry.LaunchType)
	assert.True(t, entry.Visible)
	assert.Equal(t, []string{"fullscreen", "split"}, entry.Window.Modes)
	assert.Equal(t, uint32(320), entry.Window.MinWidth)

	share := rec.Abilities[1]
	assert.Equal(t, types.LaunchSingleton, share.LaunchType)
	assert.Equal(t, []string{"ohos.permission.READ_MEDIA"}, share.Permissions)

	ext := rec.Abilities[2]
	assert.Equal(t, types.KindExtension, ext.Kind)
	assert.Equal(t, "backup", ext.ExtensionType)
	assert.False(t, ext.Visible)

	// each skills[] entry stays its own declaration
	require.Len(t, rec.Skills, 2)
	home, view := rec.Skills[0], rec.Skills[1]
	assert.Equal(t, entry.Key(), home.Key)
	assert.Equal(t, entry.Key(), view.Key)
	assert.Equal(t, []string{"action.system.home"}, home.Actions)
	assert.Equal(t, []string{"entity.system.home"}, home.Entities)
	assert.Empty(t, home.URIs)
	assert.True(t, home.IsHome())

	assert.Equal(t, []string{"ohos.want.action.viewData", "action.system.home"}, view.Actions)
	assert.Empty(t, view.Entities)
	require.Len(t, view.URIs, 1)
	assert.Equal(t, "443", view.URIs[0].Port)
	assert.False(t, view.IsHome())
}

func TestParseYAML(t *testing.T) {
	rec := parseFile(t, "notes.yaml")

	assert.Equal(t, "com.example.notes", rec.Bundle())
	assert.Equal(t, uint32(1000000), rec.App.VersionCode)
	assert.Equal(t, types.ModuleTypeFeature, rec.Module.Type)
	require.Len(t, rec.Abilities, 1)
	assert.Equal(t, types.LaunchSpecified, rec.Abilities[0].LaunchType)
	require.Len(t, rec.Skills, 1)
	assert.Equal(t, "text/*", rec.Skills[0].URIs[0].Type)
}

func TestParseTOML(t *testing.T) {
	rec := parseFile(t, "notes.toml")

	assert.Equal(t, types.ModuleTypeShared, rec.Module.Type)
	assert.True(t, rec.Module.LibIsolation)
	require.Len(t, rec.Module.RouterMap, 1)
	assert.Equal(t, map[string]string{"section": "general"}, rec.Module.RouterMap[0].Data)
	assert.Empty(t, rec.Abilities)
}

func TestParseErrors(t *testing.T) {
	long := strings.Repeat("x", 200)

	tests := []struct {
		name     string
		doc      string
		wantErr  error
		property string
	}{
		{
			name:     "missing app",
			doc:      `{"module": {"name": "entry"}}`,
			wantErr:  ErrRequiredPropertyMissing,
			property: "app",
		},
		{
			name:     "missing bundle name",
			doc:      `{"app": {"versionCode": 1}, "module": {"name": "entry"}}`,
			wantErr:  ErrRequiredPropertyMissing,
			property: "app.bundleName",
		},
		{
			name:     "version code is a string",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": "1"}, "module": {"name": "entry"}}`,
			wantErr:  ErrPropertyTypeMismatch,
			property: "app.versionCode",
		},
		{
			name:     "negative version code",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": -1}, "module": {"name": "entry"}}`,
			wantErr:  ErrPropertyTypeMismatch,
			property: "app.versionCode",
		},
		{
			name:     "module name too long",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": 1}, "module": {"name": "` + long + `"}}`,
			wantErr:  ErrPropertySizeExceeded,
			property: "module.name",
		},
		{
			name:     "unknown module type",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": 1}, "module": {"name": "entry", "type": "plugin"}}`,
			wantErr:  ErrPropertyTypeMismatch,
			property: "module.type",
		},
		{
			name:     "abilities not an array",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": 1}, "module": {"name": "entry", "abilities": {}}}`,
			wantErr:  ErrPropertyTypeMismatch,
			property: "module.abilities",
		},
		{
			name:     "unknown launch type",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": 1}, "module": {"name": "entry", "abilities": [{"name": "A", "launchType": "often"}]}}`,
			wantErr:  ErrPropertyTypeMismatch,
			property: "module.abilities[0].launchType",
		},
		{
			name:     "action not a string",
			doc:      `{"app": {"bundleName": "com.example.a", "versionCode": 1}, "module": {"name": "entry", "abilities": [{"name": "A", "skills": [{"actions": [1]}]}]}}`,
			wantErr:  ErrPropertyTypeMismatch,
			property: "module.abilities[0].skills[0].actions[0]",
		},
	}

	parser := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.doc), FormatJSON)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *PropertyError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.property, perr.Property)
		})
	}
}

func TestParseListLimit(t *testing.T) {
	perms := make([]string, 513)
	for i := range perms {
		perms[i] = `"p"`
	}
	doc := `{"app": {"bundleName": "com.example.a", "versionCode": 1}, "module": {"name": "entry", "abilities": [{"name": "A", "permissions": [` +
		strings.Join(perms, ",") + `]}]}}`

	_, err := NewParser(nil).Parse([]byte(doc), FormatJSON)
	assert.ErrorIs(t, err, ErrPropertySizeExceeded)
}

func TestParseMalformedDocument(t *testing.T) {
	_, err := NewParser(nil).Parse([]byte(`{"app": `), FormatJSON)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewParser(nil).Parse([]byte("app = [\n"), FormatTOML)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewParser(nil).Parse([]byte(`{}`), Format("xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"toml", FormatTOML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
