// Package database provides the local cache for the catalog.
//
// # Architecture
//
// The database layer is organized into one sub-package per record set:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── newbooks/        # "New releases" feed cache
//	├── favourites/      # User-curated favorites
//	├── details/         # Full book records
//	└── settings/        # Key/value rows for the database preferences backend
//
// Every record set is keyed by isbn13 and written with insert-or-replace.
// The sets are independent: removing a row from one never touches another.
//
// # Change notifications
//
// Repositories take a changefeed.Feed. After a write commits they publish
// the topic of their record set, and their Observe methods re-read on every
// such signal:
//
//	hub := changefeed.NewHub()
//	db, err := database.NewDatabase("./bookbar.db", database.Options{})
//
//	newBooks := newbooks.NewRepository(db.DB, hub)
//	favs := favourites.NewRepository(db.DB, hub)
//
//	s := favs.ObserveAll(ctx)
//	defer s.Cancel()
//	books, ok := s.Next(ctx)
//
// # Adding a New Record Set
//
//  1. Add the gorm model to internal/entities and to AutoMigrate in database.go
//  2. Create a sub-package with a Repository holding *gorm.DB and a changefeed.Feed
//  3. Add a changefeed topic and publish it after every committed write
//  4. Add a compile-time interface check in internal/interfaces
package database
