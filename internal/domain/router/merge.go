// Package router merges the route tables contributed by the modules of a bundle.
//
// Entries are grouped by name. Within a group the entry with the highest
// embedded version wins; ties go to modules in the primary set, then to the
// lexicographically smallest module name.
package router

import (
	"sort"
	"strings"

	"github.com/GriffinCanCode/bundlekit/internal/domain/version"
	"github.com/GriffinCanCode/bundlekit/internal/shared/types"
)

// versionSeparator precedes the version token in an ohmurl
const versionSeparator = "&"

// ExtractVersion returns the version token after the last '&' of an ohmurl,
// or "" when the url carries none.
func ExtractVersion(ohmURL string) string {
	i := strings.LastIndex(ohmURL, versionSeparator)
	if i < 0 {
		return ""
	}
	return ohmURL[i+len(versionSeparator):]
}

// Merge returns one entry per route name, sorted by name.
// The input slice is not modified.
func Merge(entries []types.RouteEntry, primary map[string]bool) []types.RouteEntry {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]candidate, len(entries))
	for i := range entries {
		sorted[i] = candidate{
			entry:   &entries[i],
			version: ExtractVersion(entries[i].OhmURL),
			primary: primary[entries[i].Module],
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].less(&sorted[j])
	})

	out := make([]types.RouteEntry, 0, len(sorted))
	for i := range sorted {
		if i > 0 && sorted[i].entry.Name == sorted[i-1].entry.Name {
			continue
		}
		out = append(out, sorted[i].entry.Clone())
	}
	return out
}

type candidate struct {
	entry   *types.RouteEntry
	version string
	primary bool
}

func (c *candidate) less(o *candidate) bool {
	if c.entry.Name != o.entry.Name {
		return c.entry.Name < o.entry.Name
	}
	if cmp := version.CompareStrings(c.version, o.version); cmp != 0 {
		return cmp > 0
	}
	if c.primary != o.primary {
		return c.primary
	}
	return c.entry.Module < o.entry.Module
}
