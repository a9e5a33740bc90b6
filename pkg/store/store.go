// Package store is the storage gateway shared by every repository. It exposes
// get/put/delete/scan/query and an all-or-nothing Transact over three tables,
// and translates backend faults into apperrors.StorageError.
package store

import (
	"context"
	"errors"
)

// Table names a logical collection
type Table string

const (
	Boards  Table = "boards"
	Columns Table = "columns"
	Cards   Table = "cards"
)

// Tables lists every collection the gateway manages
var Tables = []Table{Boards, Columns, Cards}

// KeyAttr is the primary key attribute of every table
const KeyAttr = "id"

var (
	// ErrNotFound is returned by Get and Delete when no item has the key
	ErrNotFound = errors.New("store: item not found")
	// ErrConditionFailed is returned when a write precondition does not hold
	ErrConditionFailed = errors.New("store: condition failed")
	// ErrTooManyWrites is returned when a transaction exceeds the backend's
	// item limit. Nothing is written.
	ErrTooManyWrites = errors.New("store: too many writes for one transaction")
)

// Condition guards a single write
type Condition struct {
	// MustNotExist rejects a Put when an item with the same key is present
	MustNotExist bool
	// Equals requires the stored item to exist and carry these attribute values
	Equals map[string]any
}

// NotExists is the create-without-overwrite condition
func NotExists() *Condition {
	return &Condition{MustNotExist: true}
}

// AttrEquals builds an attribute precondition
func AttrEquals(attrs map[string]any) *Condition {
	return &Condition{Equals: attrs}
}

// OpKind is the kind of write inside a transaction
type OpKind int

const (
	OpPut OpKind = iota
	OpDelete
)

// Op is one write of a transaction
type Op struct {
	Kind      OpKind
	Table     Table
	Item      Item   // OpPut
	ID        string // OpDelete
	Condition *Condition
}

func PutOp(table Table, item Item, cond *Condition) Op {
	return Op{Kind: OpPut, Table: table, Item: item, Condition: cond}
}

func DeleteOp(table Table, id string, cond *Condition) Op {
	return Op{Kind: OpDelete, Table: table, ID: id, Condition: cond}
}

// Key returns the primary key the op touches
func (o Op) Key() string {
	if o.Kind == OpDelete {
		return o.ID
	}
	return o.Item.ID()
}

// Gateway is implemented by every storage backend
type Gateway interface {
	Get(ctx context.Context, table Table, id string) (Item, error)
	Put(ctx context.Context, table Table, item Item, cond *Condition) error
	Delete(ctx context.Context, table Table, id string, cond *Condition) error
	Scan(ctx context.Context, table Table) ([]Item, error)
	// Query returns every item whose attr equals value
	Query(ctx context.Context, table Table, attr string, value any) ([]Item, error)
	// Transact applies all ops or none of them
	Transact(ctx context.Context, ops []Op) error
	Close() error
}
