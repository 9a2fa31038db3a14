// Package skill matches capability declarations against requested intents.
//
// A request carries an action, a set of entities, a URI and a MIME type.
// A skill matches when all three checks succeed, in order:
//   - Action: declared actions must be non-empty; an empty request action
//     matches any of them; the two home action spellings match each other
//   - Entities: every requested entity must be declared
//   - URI and type: one declared data pattern must satisfy the request
//
// URI patterns are tried path first, then path prefix, then path regex.
// Type patterns support "*/*" and a trailing "*" on either side.
//
// All functions are pure and safe for concurrent use.
//
// Example Usage:
//
//	ok := skill.Match(s, skill.Want{Action: "action.view", URI: "https://example.com/a"})
package skill
