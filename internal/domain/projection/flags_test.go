package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Flag
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"decimal", "3", WithApplication | WithModule, false},
		{"hex", "0x800", WithSkill, false},
		{"names pipe", "ability|skill", WithAbility | WithSkill, false},
		{"names comma", "permission, metadata", WithPermission | WithMetadata, false},
		{"unknown name", "bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagValuesAreStable(t *testing.T) {
	assert.Equal(t, Flag(0x001), WithApplication)
	assert.Equal(t, Flag(0x010), WithPermission)
	assert.Equal(t, Flag(0x200), WithRouterMap)
	assert.Equal(t, Flag(0x800), WithSkill)
	assert.Equal(t, Flag(0xaff), AllFlags)
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "none", Flag(0).String())
	assert.Equal(t, "application|skill", (WithApplication | WithSkill).String())
	assert.Equal(t, "module|0x100", (WithModule | 0x100).String())
}
