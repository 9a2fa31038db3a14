// Package projection assembles flag-selected read views of a bundle.
//
// Each Flag bit selects one field group of a view. Groups whose bit is unset
// stay at their zero value; a group whose bit is set is always filled
// completely. The bit to group mapping lives in small tables that are walked
// once per query.
//
// Views:
//   - PackageView: the whole bundle
//   - ModuleView: one module
//   - AbilityView: one ability or extension
//   - ApplicationView: bundle-wide application fields
//
// Cross-cutting rule: a package query carrying both WithApplication and
// WithModule attaches the requested permissions of every module, deduplicated
// and sorted, to the application group.
//
// Projection never fails. Missing data yields empty groups.
//
// Example Usage:
//
//	view := projection.Package(agg, projection.WithApplication|projection.WithModule, 100)
package projection
