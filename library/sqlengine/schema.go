package sqlengine

import (
	"context"
)

// The schema is kept in one place per dialect. The partial unique index on open loans
// and the composite (copy_id, isbn) references are what the circulation workflow relies on.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		author_name TEXT PRIMARY KEY,
		dob DATE NULL,
		nationality TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS publishers (
		publisher_name TEXT PRIMARY KEY,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY CHECK (char_length(isbn) = 13),
		title TEXT NOT NULL,
		categories TEXT NOT NULL DEFAULT '',
		publish_year INTEGER NOT NULL DEFAULT 0,
		publish_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS book_authors (
		isbn TEXT NOT NULL REFERENCES books (isbn),
		author_name TEXT NOT NULL REFERENCES authors (author_name),
		PRIMARY KEY (isbn, author_name)
	)`,
	`CREATE TABLE IF NOT EXISTS copies (
		copy_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		isbn TEXT NOT NULL REFERENCES books (isbn),
		shelf_location TEXT NOT NULL DEFAULT '',
		condition_desc TEXT NOT NULL DEFAULT '',
		UNIQUE (copy_id, isbn)
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		member_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		member_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		staff_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		staff_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		schedule TEXT NOT NULL DEFAULT '',
		salary DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		isbn TEXT NOT NULL REFERENCES books (isbn),
		member_id BIGINT NOT NULL REFERENCES members (member_id),
		staff_id BIGINT NOT NULL REFERENCES staff (staff_id),
		copy_id BIGINT NOT NULL,
		loan_date TIMESTAMPTZ NOT NULL,
		return_date TIMESTAMPTZ NULL,
		FOREIGN KEY (copy_id, isbn) REFERENCES copies (copy_id, isbn),
		CHECK (return_date IS NULL OR return_date >= loan_date)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS loans_one_open_per_copy ON loans (copy_id) WHERE return_date IS NULL`,
	`CREATE TABLE IF NOT EXISTS reservations (
		reservation_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		isbn TEXT NOT NULL REFERENCES books (isbn),
		member_id BIGINT NOT NULL REFERENCES members (member_id),
		copy_id BIGINT NOT NULL,
		reserve_date TIMESTAMPTZ NOT NULL,
		FOREIGN KEY (copy_id, isbn) REFERENCES copies (copy_id, isbn)
	)`,
	`CREATE TABLE IF NOT EXISTS fines (
		fine_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		loan_id BIGINT NOT NULL REFERENCES loans (loan_id),
		amount_fined DOUBLE PRECISION NOT NULL DEFAULT 0,
		days_overdue INTEGER NOT NULL DEFAULT 0
	)`,
}

// SQLite stores timestamps as RFC 3339 text, which does not order correctly across
// fractional seconds, so the return_date check is left to validation.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		author_name TEXT PRIMARY KEY,
		dob DATE NULL,
		nationality TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS publishers (
		publisher_name TEXT PRIMARY KEY,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		isbn TEXT PRIMARY KEY CHECK (length(isbn) = 13),
		title TEXT NOT NULL,
		categories TEXT NOT NULL DEFAULT '',
		publish_year INTEGER NOT NULL DEFAULT 0,
		publish_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS book_authors (
		isbn TEXT NOT NULL REFERENCES books (isbn),
		author_name TEXT NOT NULL REFERENCES authors (author_name),
		PRIMARY KEY (isbn, author_name)
	)`,
	`CREATE TABLE IF NOT EXISTS copies (
		copy_id INTEGER PRIMARY KEY,
		isbn TEXT NOT NULL REFERENCES books (isbn),
		shelf_location TEXT NOT NULL DEFAULT '',
		condition_desc TEXT NOT NULL DEFAULT '',
		UNIQUE (copy_id, isbn)
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		member_id INTEGER PRIMARY KEY,
		member_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		staff_id INTEGER PRIMARY KEY,
		staff_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		schedule TEXT NOT NULL DEFAULT '',
		salary REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id INTEGER PRIMARY KEY,
		isbn TEXT NOT NULL REFERENCES books (isbn),
		member_id INTEGER NOT NULL REFERENCES members (member_id),
		staff_id INTEGER NOT NULL REFERENCES staff (staff_id),
		copy_id INTEGER NOT NULL,
		loan_date TIMESTAMP NOT NULL,
		return_date TIMESTAMP NULL,
		FOREIGN KEY (copy_id, isbn) REFERENCES copies (copy_id, isbn)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS loans_one_open_per_copy ON loans (copy_id) WHERE return_date IS NULL`,
	`CREATE TABLE IF NOT EXISTS reservations (
		reservation_id INTEGER PRIMARY KEY,
		isbn TEXT NOT NULL REFERENCES books (isbn),
		member_id INTEGER NOT NULL REFERENCES members (member_id),
		copy_id INTEGER NOT NULL,
		reserve_date TIMESTAMP NOT NULL,
		FOREIGN KEY (copy_id, isbn) REFERENCES copies (copy_id, isbn)
	)`,
	`CREATE TABLE IF NOT EXISTS fines (
		fine_id INTEGER PRIMARY KEY,
		loan_id INTEGER NOT NULL REFERENCES loans (loan_id),
		amount_fined REAL NOT NULL DEFAULT 0,
		days_overdue INTEGER NOT NULL DEFAULT 0
	)`,
}

// CreateSchema creates all tables and indexes that do not exist yet. It is idempotent.
func (s *Store) CreateSchema(ctx context.Context) (err error) {
	ctx, observer := s.startOperation(ctx, operationCreateSchema, "")
	defer func() { observer.finish(ctx, err) }()

	statements := postgresSchema
	if s.dialectName == dialectSQLite {
		statements = sqliteSchema
	}

	for _, statement := range statements {
		if _, err = s.executeExec(ctx, s.db, statement); err != nil {
			return err
		}
	}

	return nil
}
