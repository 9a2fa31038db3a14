package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

func TestMatchAction(t *testing.T) {
	tests := []struct {
		name     string
		declared []string
		action   string
		want     bool
	}{
		{"empty declared never matches", nil, "action.view", false},
		{"empty declared with empty request", nil, "", false},
		{"empty request matches declared", []string{"action.view"}, "", true},
		{"exact match", []string{"action.edit", "action.view"}, "action.view", true},
		{"no match", []string{"action.edit"}, "action.view", false},
		{"home alias forward", []string{types.ActionHome}, types.WantActionHome, true},
		{"home alias backward", []string{types.WantActionHome}, types.ActionHome, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchAction(tt.declared, tt.action))
		})
	}
}

func TestMatchEntities(t *testing.T) {
	tests := []struct {
		name      string
		declared  []string
		requested []string
		want      bool
	}{
		{"empty request always matches", nil, nil, true},
		{"empty request with declared", []string{"entity.a"}, nil, true},
		{"missing declared set", nil, []string{"entity.a"}, false},
		{"subset", []string{"entity.a", "entity.b"}, []string{"entity.b"}, true},
		{"not a subset", []string{"entity.a"}, []string{"entity.a", "entity.c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchEntities(tt.declared, tt.requested))
		})
	}
}

func TestMatchURIAndType(t *testing.T) {
	web := types.SkillURI{Scheme: "https", Host: "example.com"}
	image := types.SkillURI{Type: "image/*"}
	file := types.SkillURI{Scheme: "file", Type: "text/plain"}

	tests := []struct {
		name     string
		patterns []types.SkillURI
		uri      string
		mime     string
		want     bool
	}{
		{"both empty without patterns", nil, "", "", true},
		{"both empty with empty pattern", []types.SkillURI{web, {}}, "", "", true},
		{"both empty with only concrete patterns", []types.SkillURI{web}, "", "", false},
		{"uri only", []types.SkillURI{web}, "https://example.com/x", "", true},
		{"uri only skips typed pattern", []types.SkillURI{file}, "file:///tmp/a", "", false},
		{"uri without patterns", nil, "https://example.com", "", false},
		{"type only", []types.SkillURI{image}, "", "image/png", true},
		{"type only requires empty scheme", []types.SkillURI{file}, "", "text/plain", false},
		{"both on one pattern", []types.SkillURI{file}, "file:///tmp/a", "text/plain", true},
		{"both split across patterns", []types.SkillURI{web, image}, "https://example.com", "image/png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchURIAndType(tt.patterns, tt.uri, tt.mime))
		})
	}
}

func TestMatch(t *testing.T) {
	s := &types.Skill{
		Key:      types.AbilityKey{Module: "entry", Name: "Viewer"},
		Actions:  []string{"action.view"},
		Entities: []string{"entity.browsable"},
		URIs:     []types.SkillURI{{Scheme: "https", Host: "example.com", PathStartWith: "docs"}},
	}

	assert.True(t, Match(s, Want{Action: "action.view", Entities: []string{"entity.browsable"}, URI: "https://example.com/docs/a"}))
	assert.False(t, Match(s, Want{Action: "action.edit", URI: "https://example.com/docs/a"}))
	assert.False(t, Match(s, Want{Action: "action.view", Entities: []string{"entity.other"}, URI: "https://example.com/docs/a"}))
	assert.False(t, Match(s, Want{Action: "action.view", URI: "https://example.com/blog"}))
	assert.False(t, Match(nil, Want{}))
}
