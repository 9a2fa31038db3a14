// Package bundle provides the in-memory aggregate of one installed bundle.
//
// An Aggregate owns every module of a bundle. Each module owns its abilities,
// extension abilities and skills, so removing a module removes everything it
// contributed. Per-user overlays hold enablement and identity state.
//
// Concurrency:
//   - Aggregate has no internal locking
//   - Callers serialize mutations (one lock per bundle is enough)
//   - Reads are safe to run concurrently once no mutation is in flight
//
// Entry ability:
//   - When a module is inserted its skills are scanned in declaration order
//   - The first skill declaring the home action and home entity designates
//     the bundle entry ability, unless one is already designated
//   - Removing the designating module clears the designation
//
// Example Usage:
//
//	agg := bundle.New(app, logger)
//	err := agg.AddModule(entry, abilities, skills)
//	key, ok := agg.EntryAbility()
package bundle
