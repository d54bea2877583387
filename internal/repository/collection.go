package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record matches the id or conditions.
	ErrNotFound = errors.New("record not found")
	// ErrTableMissing is returned when the remote store lacks the expected table.
	ErrTableMissing = errors.New("storage table missing")
)

// Condition is an equality filter on one column. A nil Value matches NULL.
type Condition struct {
	Column string
	Value  interface{}
}

// Eq builds an equality condition.
func Eq(column string, value interface{}) Condition {
	return Condition{Column: column, Value: value}
}

// Collection is the uniform CRUD contract each entity type gets from a backing.
type Collection[T any] interface {
	List(ctx context.Context, conds ...Condition) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, conds ...Condition) (*T, error)
	Count(ctx context.Context, conds ...Condition) (int, error)
	Insert(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	// Upsert replaces the record sharing the table's upsert key, or appends it.
	Upsert(ctx context.Context, record *T) error
	// UpsertMany applies every upsert as one write.
	UpsertMany(ctx context.Context, records []T) error
	Delete(ctx context.Context, id string) error
}

// Observer receives timing for every backing operation.
type Observer interface {
	ObserveStoreOperation(table, op string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveStoreOperation(string, string, time.Duration, error) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
