package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kanladin-backend/pkg/apperrors"
)

// MemoryGateway keeps every table in process memory.
// Items are copied on the way in and out so callers never share maps with the store.
type MemoryGateway struct {
	mu     sync.RWMutex
	tables map[Table]map[string]Item
}

func NewMemoryGateway() *MemoryGateway {
	tables := make(map[Table]map[string]Item, len(Tables))
	for _, t := range Tables {
		tables[t] = make(map[string]Item)
	}
	return &MemoryGateway{tables: tables}
}

func (m *MemoryGateway) Get(_ context.Context, table Table, id string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.tables[table][id]
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

func (m *MemoryGateway) Put(_ context.Context, table Table, item Item, cond *Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(table, item.ID(), cond); err != nil {
		return err
	}
	m.tables[table][item.ID()] = item.Clone()
	return nil
}

func (m *MemoryGateway) Delete(_ context.Context, table Table, id string, cond *Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table][id]; !ok {
		return ErrNotFound
	}
	if err := m.check(table, id, cond); err != nil {
		return err
	}
	delete(m.tables[table], id)
	return nil
}

// Scan returns items sorted by key so results are deterministic
func (m *MemoryGateway) Scan(_ context.Context, table Table) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collect(table, nil), nil
}

func (m *MemoryGateway) Query(_ context.Context, table Table, attr string, value any) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collect(table, map[string]any{attr: value}), nil
}

func (m *MemoryGateway) Transact(_ context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		key := string(op.Table) + "/" + op.Key()
		if seen[key] {
			return apperrors.NewStorage("transact", fmt.Errorf("transaction touches %s more than once", key))
		}
		seen[key] = true

		if op.Kind == OpDelete {
			if _, ok := m.tables[op.Table][op.ID]; !ok {
				return ErrConditionFailed
			}
		}
		if err := m.check(op.Table, op.Key(), op.Condition); err != nil {
			return err
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case OpPut:
			m.tables[op.Table][op.Item.ID()] = op.Item.Clone()
		case OpDelete:
			delete(m.tables[op.Table], op.ID)
		}
	}
	return nil
}

func (m *MemoryGateway) Close() error {
	return nil
}

// check must be called with the lock held
func (m *MemoryGateway) check(table Table, id string, cond *Condition) error {
	if cond == nil {
		return nil
	}
	existing, ok := m.tables[table][id]
	if cond.MustNotExist && ok {
		return ErrConditionFailed
	}
	if len(cond.Equals) > 0 && (!ok || !existing.Matches(cond.Equals)) {
		return ErrConditionFailed
	}
	return nil
}

func (m *MemoryGateway) collect(table Table, filter map[string]any) []Item {
	rows := m.tables[table]
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		if filter != nil && !rows[k].Matches(filter) {
			continue
		}
		items = append(items, rows[k].Clone())
	}
	return items
}
