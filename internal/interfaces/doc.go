// Package interfaces holds compile-time checks that the concrete storage,
// remote and background types satisfy the interfaces their consumers declare.
//
// # Where interfaces live
//
// Interfaces are declared by the package that consumes them:
//
//   - catalog.RemoteCatalog, NewBooksStore, FavoritesStore, DetailsStore,
//     Indexer: what the catalog repository needs from itbook, the
//     database repositories and the search index.
//   - preferences.Backend: a string key/value store (badger or the
//     settings table).
//   - settingsstore.Backend: the settings table, with deletion.
//   - tasks.Catalog, tasks.NewBooksLister: the work queue processors.
//   - scheduler.Refresher, scheduler.StatusRecorder: the periodic refresh.
//   - http.*: the slices of behavior each controller calls
//     (internal/http/stores.go).
//
// # Adding an implementation
//
// Add a `var _ Iface = (*Impl)(nil)` line to checks.go so a missing method
// fails the build instead of a request.
package interfaces
