package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// undefinedTable is the PostgreSQL SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// remoteCollection maps every call to a single statement against table.Name.
type remoteCollection[T any] struct {
	db       *sqlx.DB
	table    Table
	observer Observer
}

func newRemoteCollection[T any](db *sqlx.DB, table Table, observer Observer) *remoteCollection[T] {
	return &remoteCollection[T]{db: db, table: table, observer: observerOrNop(observer)}
}

func (c *remoteCollection[T]) List(ctx context.Context, conds ...Condition) (records []T, err error) {
	defer c.observe("list", time.Now(), &err)
	where, args := buildWhere(conds)
	query := fmt.Sprintf("SELECT %s FROM %s%s", c.columns(), c.table.Name, where)
	if c.table.OrderBy != "" {
		query += " ORDER BY " + c.table.OrderBy
	}
	records = []T{}
	if err := c.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, c.translate("list", err)
	}
	return records, nil
}

func (c *remoteCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	return c.FindOne(ctx, Eq("id", id))
}

func (c *remoteCollection[T]) FindOne(ctx context.Context, conds ...Condition) (found *T, err error) {
	defer c.observe("find", time.Now(), &err)
	where, args := buildWhere(conds)
	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", c.columns(), c.table.Name, where)
	var record T
	if err := c.db.GetContext(ctx, &record, query, args...); err != nil {
		return nil, c.translate("find", err)
	}
	return &record, nil
}

func (c *remoteCollection[T]) Count(ctx context.Context, conds ...Condition) (total int, err error) {
	defer c.observe("count", time.Now(), &err)
	where, args := buildWhere(conds)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", c.table.Name, where)
	if err := c.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, c.translate("count", err)
	}
	return total, nil
}

func (c *remoteCollection[T]) Insert(ctx context.Context, record *T) (err error) {
	defer c.observe("insert", time.Now(), &err)
	if _, err := c.db.NamedExecContext(ctx, c.insertQuery(), record); err != nil {
		return c.translate("insert", err)
	}
	return nil
}

func (c *remoteCollection[T]) Update(ctx context.Context, record *T) (err error) {
	defer c.observe("update", time.Now(), &err)
	sets := make([]string, 0, len(c.table.Columns))
	for _, col := range c.table.Columns {
		if col != "id" {
			sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
		}
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", c.table.Name, strings.Join(sets, ", "))
	res, err := c.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return c.translate("update", err)
	}
	return requireAffected(res)
}

func (c *remoteCollection[T]) Upsert(ctx context.Context, record *T) (err error) {
	defer c.observe("upsert", time.Now(), &err)
	if _, err := c.db.NamedExecContext(ctx, c.upsertQuery(), record); err != nil {
		return c.translate("upsert", err)
	}
	return nil
}

func (c *remoteCollection[T]) UpsertMany(ctx context.Context, records []T) (err error) {
	defer c.observe("upsert_many", time.Now(), &err)
	if len(records) == 0 {
		return nil
	}
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return c.translate("begin", err)
	}
	query := c.upsertQuery()
	for i := range records {
		if _, err := tx.NamedExecContext(ctx, query, &records[i]); err != nil {
			_ = tx.Rollback()
			return c.translate("upsert_many", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return c.translate("commit", err)
	}
	return nil
}

func (c *remoteCollection[T]) Delete(ctx context.Context, id string) (err error) {
	defer c.observe("delete", time.Now(), &err)
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.table.Name)
	res, err := c.db.ExecContext(ctx, query, id)
	if err != nil {
		return c.translate("delete", err)
	}
	return requireAffected(res)
}

func (c *remoteCollection[T]) columns() string {
	return strings.Join(c.table.Columns, ", ")
}

func (c *remoteCollection[T]) insertQuery() string {
	named := make([]string, len(c.table.Columns))
	for i, col := range c.table.Columns {
		named[i] = ":" + col
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", c.table.Name, c.columns(), strings.Join(named, ", "))
}

// upsertQuery keeps the stored id when the conflict key is not the id.
func (c *remoteCollection[T]) upsertQuery() string {
	key := c.table.upsertKey()
	sets := make([]string, 0, len(c.table.Columns))
	for _, col := range c.table.Columns {
		if col == "id" || col == key {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", c.insertQuery(), key, strings.Join(sets, ", "))
}

func (c *remoteCollection[T]) translate(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%s %s: %w", op, c.table.Name, ErrTableMissing)
	}
	return fmt.Errorf("%s %s: %w", op, c.table.Name, err)
}

func (c *remoteCollection[T]) observe(op string, start time.Time, err *error) {
	c.observer.ObserveStoreOperation(c.table.Name, op, time.Since(start), *err)
}

func buildWhere(conds []Condition) (string, []interface{}) {
	if len(conds) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(conds))
	args := make([]interface{}, 0, len(conds))
	for _, cond := range conds {
		value := deref(cond.Value)
		if value == nil {
			clauses = append(clauses, cond.Column+" IS NULL")
			continue
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", cond.Column, len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
