package fixtures

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/library/sqlengine"
	"github.com/DevinCastillo5/Library-App/shell/config"
)

// EnvTestDatabaseURL points the PostgreSQL integration tests at a database they may wipe.
const EnvTestDatabaseURL = "LIBRARY_TEST_DATABASE_URL"

const truncateAll = `TRUNCATE fines, reservations, loans, copies, book_authors, books, authors, publishers, members, staff RESTART IDENTITY CASCADE`

// NewPostgresStores returns one Store per PostgreSQL driver (pgx, sql, sqlx) over the database
// in LIBRARY_TEST_DATABASE_URL, with the schema applied and all tables emptied.
// The test is skipped when the variable is unset or the database does not answer.
func NewPostgresStores(t testing.TB, options ...sqlengine.Option) map[string]*sqlengine.Store {
	t.Helper()

	dsn := os.Getenv(EnvTestDatabaseURL)
	if dsn == "" {
		t.Skipf("%s is not set", EnvTestDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := config.NewPGXPool(ctx, dsn)
	if err != nil {
		t.Skipf("postgres is not reachable: %v", err)
	}
	t.Cleanup(pool.Close)

	sqlDB, err := config.NewSQLDB(ctx, dsn)
	require.NoError(t, err, arrangeFailed)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sqlxDB, err := config.NewSQLX(ctx, dsn)
	require.NoError(t, err, arrangeFailed)
	t.Cleanup(func() { _ = sqlxDB.Close() })

	pgxStore, err := sqlengine.NewStoreFromPGXPool(pool, options...)
	require.NoError(t, err, arrangeFailed)

	sqlStore, err := sqlengine.NewStoreFromSQLDB(sqlDB, options...)
	require.NoError(t, err, arrangeFailed)

	sqlxStore, err := sqlengine.NewStoreFromSQLX(sqlxDB, options...)
	require.NoError(t, err, arrangeFailed)

	require.NoError(t, pgxStore.CreateSchema(ctx), arrangeFailed)

	_, err = pool.Exec(ctx, truncateAll)
	require.NoError(t, err, arrangeFailed)

	return map[string]*sqlengine.Store{
		config.DriverPGX:  pgxStore,
		config.DriverSQL:  sqlStore,
		config.DriverSQLX: sqlxStore,
	}
}
