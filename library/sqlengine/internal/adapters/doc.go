// Package adapters provides the database adapter implementations used by the SQL store.
//
// The adapters hide the differences between pgxpool.Pool, sql.DB and sqlx.DB behind one
// DBAdapter interface: plain query and exec, transactions with the isolation level the
// store needs, and a health ping. The store builds SQL strings with goqu and never touches
// a driver type directly.
package adapters
