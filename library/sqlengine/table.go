package sqlengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine/internal/adapters"
)

// tableDef is the explicit, per-entity mapping between a Go record and its table.
type tableDef[E any, K comparable] struct {
	name       string
	columns    []string // select list, in scan order
	keyColumns []string // primary key columns, also the list order
	autoKey    string   // key column the database assigns when the key is zero; empty for natural keys
	keyOf      func(E) K
	zeroKey    func(K) bool
	withKey    func(E, int64) E
	whereKey   func(K) exp.Expression
	whereKeys  func([]K) exp.Expression
	record     func(E) goqu.Record
	scan       func(adapters.DBRows) (E, error)
	validate   func(E) error
}

// Table offers the entity store operations for one entity type.
type Table[E any, K comparable] struct {
	store *Store
	def   tableDef[E, K]
}

var _ library.EntityStore[library.Book, string] = (*Table[library.Book, string])(nil)

func newTable[E any, K comparable](s *Store, def tableDef[E, K]) *Table[E, K] {
	return &Table[E, K]{store: s, def: def}
}

// List returns one page of rows in primary key order.
func (t *Table[E, K]) List(ctx context.Context, page library.Page) (entities []E, err error) {
	ctx, observer := t.store.startOperation(ctx, operationList, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	return t.list(ctx, t.store.db, page)
}

// Get returns the row with the given key or library.ErrNotFound.
func (t *Table[E, K]) Get(ctx context.Context, key K) (entity E, err error) {
	ctx, observer := t.store.startOperation(ctx, operationGet, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	return t.get(ctx, t.store.db, key)
}

// Create inserts a new row. A zero numeric key is assigned by the database and returned.
// It fails with library.ErrAlreadyExists on a key collision and with
// library.ErrForeignKeyViolation when a referenced row is missing.
func (t *Table[E, K]) Create(ctx context.Context, entity E) (created E, err error) {
	ctx, observer := t.store.startOperation(ctx, operationCreate, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	return t.create(ctx, t.store.db, entity)
}

// Update replaces all non-key columns of an existing row, or fails with library.ErrNotFound.
func (t *Table[E, K]) Update(ctx context.Context, entity E) (updated E, err error) {
	ctx, observer := t.store.startOperation(ctx, operationUpdate, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	return t.update(ctx, t.store.db, entity)
}

// Delete removes the row with the given key and returns the number of removed rows.
func (t *Table[E, K]) Delete(ctx context.Context, key K) (count int64, err error) {
	ctx, observer := t.store.startOperation(ctx, operationDelete, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	return t.deleteWhere(ctx, t.store.db, t.def.whereKey(key))
}

// DeleteMany removes all rows with the given keys and returns the number of removed rows.
func (t *Table[E, K]) DeleteMany(ctx context.Context, keys []K) (count int64, err error) {
	ctx, observer := t.store.startOperation(ctx, operationDeleteMany, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	if len(keys) == 0 {
		return 0, nil
	}

	return t.deleteWhere(ctx, t.store.db, t.def.whereKeys(keys))
}

// ListWhere returns all rows matching the condition in primary key order.
func (t *Table[E, K]) ListWhere(ctx context.Context, condition exp.Expression) (entities []E, err error) {
	ctx, observer := t.store.startOperation(ctx, operationListWhere, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	sqlQuery, _, buildErr := t.selectDataset().Where(condition).ToSQL()
	if buildErr != nil {
		return nil, t.buildFailed(ctx, buildErr)
	}

	return t.queryAll(ctx, t.store.db, sqlQuery)
}

// DeleteWhere removes all rows matching the condition and returns the number of removed rows.
func (t *Table[E, K]) DeleteWhere(ctx context.Context, condition exp.Expression) (count int64, err error) {
	ctx, observer := t.store.startOperation(ctx, operationDeleteWhere, t.def.name)
	defer func() { observer.finish(ctx, err) }()

	return t.deleteWhere(ctx, t.store.db, condition)
}

func (t *Table[E, K]) selectDataset() *goqu.SelectDataset {
	columns := make([]any, 0, len(t.def.columns))
	for _, column := range t.def.columns {
		columns = append(columns, goqu.C(column))
	}

	order := make([]exp.OrderedExpression, 0, len(t.def.keyColumns))
	for _, column := range t.def.keyColumns {
		order = append(order, goqu.C(column).Asc())
	}

	return t.store.dialect.From(t.def.name).Select(columns...).Order(order...)
}

func (t *Table[E, K]) list(ctx context.Context, q adapters.Queryer, page library.Page) ([]E, error) {
	sqlQuery, _, err := t.selectDataset().Offset(page.Skip).Limit(page.Limit).ToSQL()
	if err != nil {
		return nil, t.buildFailed(ctx, err)
	}

	return t.queryAll(ctx, q, sqlQuery)
}

func (t *Table[E, K]) get(ctx context.Context, q adapters.Queryer, key K) (E, error) {
	var empty E

	sqlQuery, _, err := t.selectDataset().Where(t.def.whereKey(key)).Limit(1).ToSQL()
	if err != nil {
		return empty, t.buildFailed(ctx, err)
	}

	entities, err := t.queryAll(ctx, q, sqlQuery)
	if err != nil {
		return empty, err
	}

	if len(entities) == 0 {
		return empty, fmt.Errorf("%w: %s %v", library.ErrNotFound, t.def.name, key)
	}

	return entities[0], nil
}

func (t *Table[E, K]) create(ctx context.Context, q adapters.Queryer, entity E) (E, error) {
	var empty E

	if err := t.def.validate(entity); err != nil {
		return empty, err
	}

	record := t.def.record(entity)

	if t.def.autoKey != "" && t.def.zeroKey(t.def.keyOf(entity)) {
		delete(record, t.def.autoKey)

		id, err := t.insertWithGeneratedKey(ctx, q, record)
		if err != nil {
			return empty, err
		}

		return t.def.withKey(entity, id), nil
	}

	sqlQuery, _, err := t.store.dialect.Insert(t.def.name).Rows(record).ToSQL()
	if err != nil {
		return empty, t.buildFailed(ctx, err)
	}

	if _, err = t.store.executeExec(ctx, q, sqlQuery); err != nil {
		return empty, err
	}

	if t.def.autoKey != "" && t.store.supportsReturning() {
		if err = t.syncKeySequence(ctx, q); err != nil {
			return empty, err
		}
	}

	return entity, nil
}

// syncKeySequence moves the PostgreSQL identity sequence past the highest key after a row was
// inserted with an explicit key, so the next generated key does not collide with it.
// SQLite assigns max(rowid)+1 and needs no such step.
func (t *Table[E, K]) syncKeySequence(ctx context.Context, q adapters.Queryer) error {
	maxKey := t.store.dialect.From(t.def.name).Select(goqu.MAX(t.def.autoKey))

	sqlQuery, _, err := t.store.dialect.Select(
		goqu.Func("setval", goqu.Func("pg_get_serial_sequence", t.def.name, t.def.autoKey), maxKey),
	).ToSQL()
	if err != nil {
		return t.buildFailed(ctx, err)
	}

	rows, err := t.store.executeQuery(ctx, q, sqlQuery)
	if err != nil {
		return err
	}
	defer t.store.closeRows(ctx, rows)

	for rows.Next() {
	}

	return classifyError(rows.Err())
}

// insertWithGeneratedKey inserts a row and reads back the key the database assigned:
// via RETURNING on PostgreSQL, via the last insert rowid on SQLite.
func (t *Table[E, K]) insertWithGeneratedKey(ctx context.Context, q adapters.Queryer, record goqu.Record) (int64, error) {
	insert := t.store.dialect.Insert(t.def.name).Rows(record)

	if !t.store.supportsReturning() {
		sqlQuery, _, err := insert.ToSQL()
		if err != nil {
			return 0, t.buildFailed(ctx, err)
		}

		result, err := t.store.executeExec(ctx, q, sqlQuery)
		if err != nil {
			return 0, err
		}

		return result.LastInsertId()
	}

	sqlQuery, _, err := insert.Returning(goqu.C(t.def.autoKey)).ToSQL()
	if err != nil {
		return 0, t.buildFailed(ctx, err)
	}

	rows, err := t.store.executeQuery(ctx, q, sqlQuery)
	if err != nil {
		return 0, err
	}
	defer t.store.closeRows(ctx, rows)

	var id int64
	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, classifyError(err)
		}

		return 0, fmt.Errorf("insert into %s returned no key", t.def.name)
	}

	if err = rows.Scan(&id); err != nil {
		t.store.logError(ctx, logMsgScanRowFailed, err, logAttrTable, t.def.name)
		return 0, err
	}

	return id, nil
}

func (t *Table[E, K]) update(ctx context.Context, q adapters.Queryer, entity E) (E, error) {
	var empty E

	if err := t.def.validate(entity); err != nil {
		return empty, err
	}

	key := t.def.keyOf(entity)
	if t.def.autoKey != "" && t.def.zeroKey(key) {
		return empty, library.ValidationError(t.def.autoKey, "is required for update")
	}

	record := t.def.record(entity)
	for _, column := range t.def.keyColumns {
		delete(record, column)
	}

	// Tables made of key columns only have nothing to set.
	if len(record) == 0 {
		return t.get(ctx, q, key)
	}

	sqlQuery, _, err := t.store.dialect.Update(t.def.name).Set(record).Where(t.def.whereKey(key)).ToSQL()
	if err != nil {
		return empty, t.buildFailed(ctx, err)
	}

	result, err := t.store.executeExec(ctx, q, sqlQuery)
	if err != nil {
		return empty, err
	}

	count, err := t.store.rowsAffected(ctx, result)
	if err != nil {
		return empty, err
	}

	if count == 0 {
		return empty, fmt.Errorf("%w: %s %v", library.ErrNotFound, t.def.name, key)
	}

	return entity, nil
}

func (t *Table[E, K]) deleteWhere(ctx context.Context, q adapters.Queryer, condition exp.Expression) (int64, error) {
	sqlQuery, _, err := t.store.dialect.Delete(t.def.name).Where(condition).ToSQL()
	if err != nil {
		return 0, t.buildFailed(ctx, err)
	}

	result, err := t.store.executeExec(ctx, q, sqlQuery)
	if err != nil {
		return 0, err
	}

	return t.store.rowsAffected(ctx, result)
}

func (t *Table[E, K]) queryAll(ctx context.Context, q adapters.Queryer, sqlQuery string) ([]E, error) {
	rows, err := t.store.executeQuery(ctx, q, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer t.store.closeRows(ctx, rows)

	entities := make([]E, 0)
	for rows.Next() {
		entity, scanErr := t.def.scan(rows)
		if scanErr != nil {
			t.store.logError(ctx, logMsgScanRowFailed, scanErr, logAttrTable, t.def.name)
			return nil, scanErr
		}

		entities = append(entities, entity)
	}

	if err = rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return entities, nil
}

func (t *Table[E, K]) buildFailed(ctx context.Context, err error) error {
	t.store.logError(ctx, logMsgBuildQueryFailed, err, logAttrTable, t.def.name)
	return err
}
