package record

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It counts calls per
// operation so tests can assert which store calls a flow made.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]Record
	seq    map[string][]string // insertion order per table
	calls  map[string]int

	// FailWith, when set, makes the named operation ("get", "upsert",
	// "delete", "list") return the error.
	FailWith map[string]error
	now      func() time.Time
}

// NewMemoryStore creates an empty store with every table provisioned.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		tables:   make(map[string]map[string]Record),
		seq:      make(map[string][]string),
		calls:    make(map[string]int),
		FailWith: make(map[string]error),
		now:      time.Now,
	}
	for _, t := range Tables {
		m.tables[t] = make(map[string]Record)
	}
	return m
}

// Calls returns how many times op was invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

func (m *MemoryStore) enter(op, table string) error {
	m.calls[op]++
	if err := m.FailWith[op]; err != nil {
		return err
	}
	return CheckTable(table)
}

func (m *MemoryStore) Get(ctx context.Context, table, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("get", table); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	rec, ok := m.tables[table][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return clone(rec), nil
}

func (m *MemoryStore) Upsert(ctx context.Context, table string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("upsert", table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cur, exists := m.tables[table][rec.ID]
	if err := CheckVersion(rec.Version, cur.Version, exists); err != nil {
		return err
	}
	stored := clone(rec)
	stored.Version = cur.Version + 1
	if stored.CreatedAt.IsZero() {
		if exists {
			stored.CreatedAt = cur.CreatedAt
		} else {
			stored.CreatedAt = m.now()
		}
	}
	if !exists {
		m.seq[table] = append(m.seq[table], rec.ID)
	}
	m.tables[table][rec.ID] = stored
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("delete", table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := m.tables[table][id]; !ok {
		return nil
	}
	delete(m.tables[table], id)
	m.seq[table] = slices.DeleteFunc(m.seq[table], func(s string) bool { return s == id })
	return nil
}

func (m *MemoryStore) List(ctx context.Context, table string, order Order) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("list", table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(m.seq[table]))
	for _, id := range m.seq[table] {
		out = append(out, clone(m.tables[table][id]))
	}
	SortRecords(out, order)
	return out, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func clone(r Record) Record {
	r.Data = slices.Clone(r.Data)
	return r
}

// SortRecords orders recs in place by creation time.
func SortRecords(recs []Record, order Order) {
	switch order {
	case OrderCreatedAsc:
		slices.SortStableFunc(recs, func(a, b Record) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case OrderCreatedDesc:
		slices.SortStableFunc(recs, func(a, b Record) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
}
