package record

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "brandkit.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func setupMemoryStore(t *testing.T) Store {
	t.Helper()
	return NewMemoryStore()
}

// forEachBackend runs fn once per backend so both keep the same contract.
func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	backends := map[string]func(*testing.T) Store{
		"sqlite": setupSQLiteStore,
		"memory": setupMemoryStore,
	}
	for name, setup := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, setup(t))
		})
	}
}

func TestGetNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), TablePreferences, "global_footer")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpsertAndGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := Record{ID: "a1", Data: []byte(`{"name":"logo.png"}`)}
		if err := s.Upsert(ctx, TableAssets, rec); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, err := s.Get(ctx, TableAssets, "a1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got.Data) != `{"name":"logo.png"}` {
			t.Errorf("Data = %s", got.Data)
		}
		if got.Version != 1 {
			t.Errorf("Version = %d, want 1", got.Version)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt should be stamped")
		}
	})
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created := time.UnixMilli(1000)
		if err := s.Upsert(ctx, TablePreferences, Record{ID: "k", Data: []byte(`{"a":1,"b":2}`), CreatedAt: created}); err != nil {
			t.Fatal(err)
		}
		if err := s.Upsert(ctx, TablePreferences, Record{ID: "k", Data: []byte(`{"a":3}`)}); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, TablePreferences, "k")
		if err != nil {
			t.Fatal(err)
		}
		if string(got.Data) != `{"a":3}` {
			t.Errorf("Data = %s, want full replacement", got.Data)
		}
		if got.Version != 2 {
			t.Errorf("Version = %d, want 2", got.Version)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want original %v", got.CreatedAt, created)
		}
	})
}

func TestVersionedUpsert(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.Upsert(ctx, TablePreferences, Record{ID: "user_prefs", Data: []byte(`{}`), Version: NewVersion}); err != nil {
			t.Fatalf("create-only upsert failed: %v", err)
		}
		if err := s.Upsert(ctx, TablePreferences, Record{ID: "user_prefs", Data: []byte(`{}`), Version: NewVersion}); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("second create-only upsert = %v, want ErrVersionConflict", err)
		}
		if err := s.Upsert(ctx, TablePreferences, Record{ID: "user_prefs", Data: []byte(`{"x":1}`), Version: 1}); err != nil {
			t.Fatalf("upsert at current version failed: %v", err)
		}
		if err := s.Upsert(ctx, TablePreferences, Record{ID: "user_prefs", Data: []byte(`{"x":2}`), Version: 1}); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("stale upsert = %v, want ErrVersionConflict", err)
		}
		got, err := s.Get(ctx, TablePreferences, "user_prefs")
		if err != nil {
			t.Fatal(err)
		}
		if string(got.Data) != `{"x":1}` {
			t.Errorf("stale write leaked: %s", got.Data)
		}
	})
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			if err := s.Upsert(ctx, TableAssets, Record{ID: id, Data: []byte(`{}`)}); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Delete(ctx, TableAssets, "b"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		recs, err := s.List(ctx, TableAssets, OrderNone)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Fatalf("List count = %d, want 2", len(recs))
		}
		for _, r := range recs {
			if r.ID == "b" {
				t.Error("deleted record still listed")
			}
		}
	})
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		if err := s.Delete(context.Background(), TableAssets, "nope"); err != nil {
			t.Errorf("Delete of missing id: %v", err)
		}
	})
}

func TestListOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		stamps := map[string]int64{"old": 1000, "new": 3000, "mid": 2000}
		for _, id := range []string{"old", "new", "mid"} {
			rec := Record{ID: id, Data: []byte(`{}`), CreatedAt: time.UnixMilli(stamps[id])}
			if err := s.Upsert(ctx, TableDocuments, rec); err != nil {
				t.Fatal(err)
			}
		}
		desc, err := s.List(ctx, TableDocuments, OrderCreatedDesc)
		if err != nil {
			t.Fatal(err)
		}
		if ids := recordIDs(desc); ids != "new,mid,old" {
			t.Errorf("desc order = %s", ids)
		}
		asc, err := s.List(ctx, TableDocuments, OrderCreatedAsc)
		if err != nil {
			t.Fatal(err)
		}
		if ids := recordIDs(asc); ids != "old,mid,new" {
			t.Errorf("asc order = %s", ids)
		}
		none, err := s.List(ctx, TableDocuments, OrderNone)
		if err != nil {
			t.Fatal(err)
		}
		if ids := recordIDs(none); ids != "old,new,mid" {
			t.Errorf("insertion order = %s", ids)
		}
	})
}

func TestUnknownTable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), "users; DROP TABLE assets", "x")
		if !errors.Is(err, ErrUnknownTable) {
			t.Errorf("expected ErrUnknownTable, got %v", err)
		}
	})
}

func TestMemoryStoreCountsAndFailures(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("network down")
	m.FailWith["get"] = boom
	if _, err := m.Get(ctx, TablePreferences, "x"); !errors.Is(err, boom) {
		t.Errorf("Get err = %v, want injected failure", err)
	}
	_ = m.Upsert(ctx, TableAssets, Record{ID: "a", Data: []byte(`{}`)})
	if m.Calls("get") != 1 || m.Calls("upsert") != 1 || m.Calls("delete") != 0 {
		t.Errorf("calls = get:%d upsert:%d delete:%d", m.Calls("get"), m.Calls("upsert"), m.Calls("delete"))
	}
}

func TestEncodeDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	rec, err := Encode("p", payload{Name: "x"})
	if err != nil {
		t.Fatal(err)
	}
	var got payload
	if err := rec.Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "x" {
		t.Errorf("Name = %q", got.Name)
	}
	bad := Record{ID: "bad", Data: []byte(`{`)}
	if err := bad.Decode(&got); err == nil {
		t.Error("expected decode error")
	}
}

func recordIDs(recs []Record) string {
	var out string
	for i, r := range recs {
		if i > 0 {
			out += ","
		}
		out += r.ID
	}
	return out
}
