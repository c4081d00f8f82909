// Package record defines the keyed record store brandkit persists to and
// ships its SQLite and in-memory backends.
//
// A record is an opaque JSON payload stored under a string id inside a
// logical table. Every successful upsert bumps the record's version, which
// callers may hand back on the next upsert as an optimistic concurrency token.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Logical tables.
const (
	TableDocuments   = "documents"
	TableAssets      = "assets"
	TablePreferences = "preferences"
)

// Tables lists every table a backend must provision.
var Tables = []string{TableDocuments, TableAssets, TablePreferences}

var (
	// ErrNotFound is returned by Get when no record has the id.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned by a versioned Upsert whose token is stale.
	ErrVersionConflict = errors.New("record version conflict")
	// ErrUnknownTable is returned for a table outside Tables.
	ErrUnknownTable = errors.New("unknown table")
)

// NewVersion, passed as Record.Version, upserts only if the id is unused.
const NewVersion int64 = -1

// Record is the persisted envelope around a domain object.
type Record struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	// Version is assigned by the store. On Upsert, 0 means unconditional,
	// NewVersion means create-only and any positive value must match the
	// stored version.
	Version int64
}

// Order selects the List ordering.
type Order int

const (
	// OrderNone leaves ordering to the backend.
	OrderNone Order = iota
	OrderCreatedAsc
	OrderCreatedDesc
)

// Store is the contract every backend implements.
type Store interface {
	Get(ctx context.Context, table, id string) (Record, error)
	Upsert(ctx context.Context, table string, rec Record) error
	Delete(ctx context.Context, table, id string) error
	List(ctx context.Context, table string, order Order) ([]Record, error)
	Close() error
}

// Encode wraps v into a record with the given id.
func Encode(id string, v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", id, err)
	}
	return Record{ID: id, Data: data}, nil
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", r.ID, err)
	}
	return nil
}

// CheckTable rejects tables outside Tables.
func CheckTable(table string) error {
	for _, t := range Tables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// CheckVersion applies the optimistic token rules shared by all backends.
func CheckVersion(want, current int64, exists bool) error {
	switch {
	case want == 0:
		return nil
	case want == NewVersion:
		if exists {
			return ErrVersionConflict
		}
		return nil
	case !exists || current != want:
		return ErrVersionConflict
	}
	return nil
}
