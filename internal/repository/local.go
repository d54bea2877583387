package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// localCollection stores a whole table as one JSON array under table.Name.
// Every mutation reads, edits and rewrites the full container.
type localCollection[T any] struct {
	kv       KV
	table    Table
	mu       *sync.Mutex
	observer Observer
}

func newLocalCollection[T any](kv KV, table Table, mu *sync.Mutex, observer Observer) *localCollection[T] {
	return &localCollection[T]{kv: kv, table: table, mu: mu, observer: observerOrNop(observer)}
}

func (c *localCollection[T]) List(ctx context.Context, conds ...Condition) (result []T, err error) {
	defer c.observe("list", time.Now(), &err)
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	result = make([]T, 0, len(records))
	for i := range records {
		ok, err := matches(&records[i], conds)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, records[i])
		}
	}
	return result, nil
}

func (c *localCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	return c.FindOne(ctx, Eq("id", id))
}

func (c *localCollection[T]) FindOne(ctx context.Context, conds ...Condition) (found *T, err error) {
	defer c.observe("find", time.Now(), &err)
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := indexOf(records, conds)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	record := records[idx]
	return &record, nil
}

func (c *localCollection[T]) Count(ctx context.Context, conds ...Condition) (int, error) {
	records, err := c.List(ctx, conds...)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (c *localCollection[T]) Insert(ctx context.Context, record *T) (err error) {
	defer c.observe("insert", time.Now(), &err)
	return c.mutate(ctx, func(records []T) ([]T, error) {
		return append(records, *record), nil
	})
}

func (c *localCollection[T]) Update(ctx context.Context, record *T) (err error) {
	defer c.observe("update", time.Now(), &err)
	id, err := fieldValue(record, "id")
	if err != nil {
		return err
	}
	return c.mutate(ctx, func(records []T) ([]T, error) {
		idx, err := indexOf(records, []Condition{Eq("id", id)})
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		records[idx] = *record
		return records, nil
	})
}

func (c *localCollection[T]) Upsert(ctx context.Context, record *T) (err error) {
	defer c.observe("upsert", time.Now(), &err)
	return c.mutate(ctx, func(records []T) ([]T, error) {
		return c.upsertInto(records, record)
	})
}

func (c *localCollection[T]) UpsertMany(ctx context.Context, batch []T) (err error) {
	defer c.observe("upsert_many", time.Now(), &err)
	if len(batch) == 0 {
		return nil
	}
	return c.mutate(ctx, func(records []T) ([]T, error) {
		var uerr error
		for i := range batch {
			if records, uerr = c.upsertInto(records, &batch[i]); uerr != nil {
				return nil, uerr
			}
		}
		return records, nil
	})
}

func (c *localCollection[T]) Delete(ctx context.Context, id string) (err error) {
	defer c.observe("delete", time.Now(), &err)
	return c.mutate(ctx, func(records []T) ([]T, error) {
		idx, err := indexOf(records, []Condition{Eq("id", id)})
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		return append(records[:idx], records[idx+1:]...), nil
	})
}

func (c *localCollection[T]) upsertInto(records []T, record *T) ([]T, error) {
	key := c.table.upsertKey()
	value, err := fieldValue(record, key)
	if err != nil {
		return nil, err
	}
	idx, err := indexOf(records, []Condition{Eq(key, value)})
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return append(records, *record), nil
	}
	records[idx] = *record
	return records, nil
}

func (c *localCollection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return c.save(ctx, records)
}

func (c *localCollection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.kv.Get(ctx, c.table.Name)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", c.table.Name, err)
	}
	var records []T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.table.Name, err)
		}
	}
	return records, nil
}

func (c *localCollection[T]) save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.table.Name, err)
	}
	if err := c.kv.Set(ctx, c.table.Name, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.table.Name, err)
	}
	return nil
}

func (c *localCollection[T]) observe(op string, start time.Time, err *error) {
	c.observer.ObserveStoreOperation(c.table.Name, op, time.Since(start), *err)
}

func indexOf[T any](records []T, conds []Condition) (int, error) {
	for i := range records {
		ok, err := matches(&records[i], conds)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

// matches compares JSON field values, which share names with the remote columns.
func matches[T any](record *T, conds []Condition) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	fields, err := fieldMap(record)
	if err != nil {
		return false, err
	}
	for _, cond := range conds {
		if !sameValue(fields[cond.Column], cond.Value) {
			return false, nil
		}
	}
	return true, nil
}

func fieldValue[T any](record *T, column string) (interface{}, error) {
	fields, err := fieldMap(record)
	if err != nil {
		return nil, err
	}
	value, ok := fields[column]
	if !ok {
		return nil, fmt.Errorf("record has no field %q", column)
	}
	return value, nil
}

func fieldMap[T any](record *T) (map[string]interface{}, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	return fields, nil
}

func sameValue(stored, want interface{}) bool {
	want = deref(want)
	if stored == nil || want == nil {
		return stored == nil && want == nil
	}
	return fmt.Sprint(stored) == fmt.Sprint(want)
}

func deref(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
