package manifest

import (
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// Record is one converted manifest: the bundle-wide app fields and one module
// with the components and skills it declares. Warnings lists the entries that
// were dropped without failing the conversion.
type Record struct {
	App       types.AppInfo
	Module    types.ModuleEntry
	Abilities []types.AbilityEntry
	Skills    []types.Skill
	Warnings  []error
}

// Bundle returns the bundle name of the record
func (r *Record) Bundle() string {
	return r.App.BundleName
}
