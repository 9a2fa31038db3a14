// Package manifest turns package manifest documents into the bundle model.
//
// A document has an app object and a module object and may be written as
// JSON, YAML or TOML. Decoding produces generic values which are then
// converted property by property; every conversion failure is a
// *PropertyError naming the offending property.
package manifest
