// Package registry holds every installed bundle and is the entry point for
// callers.
//
// Components:
//   - Manager: installs manifests, removes modules, serves projections,
//     intent queries and per-user state changes
//   - Store: persists one zstd-compressed JSON snapshot per bundle
//   - Seeder: installs prebuilt manifests found below a directory
//
// Concurrency:
//   - Each bundle has its own RWMutex; mutations of one bundle are
//     serialized, reads run concurrently
//   - Snapshots are taken under the lock and written after it is released
//
// Example Usage:
//
//	store, err := registry.NewStore("data/bundles", 256)
//	mgr := registry.NewManager(registry.Options{Logger: logger, Store: store})
//	restored, err := mgr.Restore(ctx)
//	rec, err := mgr.InstallManifest(ctx, data, manifest.FormatJSON)
//	view, err := mgr.Project("com.example.notes", projection.WithModule, types.NoUser)
package registry
