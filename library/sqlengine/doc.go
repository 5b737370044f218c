// Package sqlengine provides the relational implementation of the library store.
//
// A Store persists every library entity in PostgreSQL or SQLite. Queries are built with
// goqu for the configured dialect and executed through one of the database adapters
// (pgx.Pool, sql.DB, sqlx.DB, or a go-sqlite3 sql.DB).
//
// Key features:
//   - Typed entity tables with explicit column lists (list, get, create, update, delete, delete many)
//   - The availability resolver: the lowest copy id of a book that is (not) on an open loan
//   - Transactions for the circulation workflow (serializable on PostgreSQL, BEGIN IMMEDIATE on SQLite)
//   - A partial unique index that rejects a second open loan on the same copy
//   - Driver errors classified into the library sentinel errors
//   - Optional logging, metrics and tracing via functional options
//
// Usage examples:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := sqlengine.NewStoreFromPGXPool(pool, sqlengine.WithLogger(logger))
//
//	book, err := store.Books().Get(ctx, "9780000000001")
//
//	err = store.InTx(ctx, func(ctx context.Context, tx library.CirculationTx) error {
//		copyID, err := tx.FindAvailableCopy(ctx, book.ISBN)
//		...
//	})
package sqlengine
