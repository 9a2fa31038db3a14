// Package types provides the shared bundle data model.
//
// These types are produced by manifest conversion, owned by the bundle
// aggregate and read by the projection engine and the HTTP layer.
//
// Core Types:
//   - ModuleEntry: one package module and the keys it owns
//   - AbilityEntry: an ability or extension exposed by a module
//   - Skill, SkillURI: capability declarations used for intent matching
//   - UserOverlay: per-user state for a bundle
//   - RouteEntry: a named navigation target contributed by a module
//
// Keys:
//   - AbilityKey: structured (module, name) key with value equality
//   - AbilityRef: (bundle, module, name) reference returned by queries
//
// Example Usage:
//
//	key := types.AbilityKey{Module: "entry", Name: "MainAbility"}
//	skill := types.Skill{Key: key, Actions: []string{types.ActionHome}}
package types
