package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/eventquote/internal/domain/model"
)

// storeFactories builds every store that runs without external services.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"pebble": func() Store {
			s, err := NewPebbleStore(t.TempDir())
			if err != nil {
				t.Fatalf("open pebble: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"couchdb": func() Store {
			return newCouchStore(t, newFakeCouch(t).URL)
		},
	}
}

func TestStore_CreateAndList(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()
			defer store.Close()

			if err := store.EnsureCollection(ctx, "events"); err != nil {
				t.Fatalf("ensure collection: %v", err)
			}
			// A second call must be a no-op.
			if err := store.EnsureCollection(ctx, "events"); err != nil {
				t.Fatalf("ensure collection twice: %v", err)
			}

			docs, err := store.List(ctx, "events")
			if err != nil {
				t.Fatalf("list empty: %v", err)
			}
			if docs == nil || len(docs) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", docs)
			}

			in := model.Document{
				"title":       "Launch",
				"date":        "2024-05-01",
				"description": "",
				"seats":       json.Number("40"),
				"tags":        []any{"a", "b"},
				"id":          "client-ref",
			}
			created, err := store.Create(ctx, "events", in)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if created.ID() == "" {
				t.Fatal("expected created document to carry an id")
			}
			if created["id"] != "client-ref" || created.ID() == "client-ref" {
				t.Errorf("expected submitted id to be kept beside the store id, got id=%v %s=%v",
					created["id"], model.IDField, created.ID())
			}
			if _, ok := in[model.IDField]; ok {
				t.Error("create must not modify the submitted document")
			}
			for k, v := range in {
				if fmt.Sprint(created[k]) != fmt.Sprint(v) {
					t.Errorf("field %q: expected %v, got %v", k, v, created[k])
				}
			}

			second, err := store.Create(ctx, "events", model.Document{"title": "Second", "date": "d", "description": "x"})
			if err != nil {
				t.Fatalf("create second: %v", err)
			}

			docs, err = store.List(ctx, "events")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(docs) != 2 {
				t.Fatalf("expected 2 documents, got %d", len(docs))
			}
			if docs[0].ID() != created.ID() || docs[1].ID() != second.ID() {
				t.Errorf("expected insertion order [%s %s], got [%s %s]",
					created.ID(), second.ID(), docs[0].ID(), docs[1].ID())
			}
			if docs[0]["seats"] != json.Number("40") {
				t.Errorf("expected number to round trip as json.Number, got %#v", docs[0]["seats"])
			}
			if docs[0]["description"] != "" {
				t.Errorf("expected empty description to be kept, got %#v", docs[0]["description"])
			}
		})
	}
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()
			defer store.Close()

			for _, c := range []string{"events", "rsvps"} {
				if err := store.EnsureCollection(ctx, c); err != nil {
					t.Fatalf("ensure %s: %v", c, err)
				}
			}
			if _, err := store.Create(ctx, "events", model.Document{"title": "t"}); err != nil {
				t.Fatalf("create event: %v", err)
			}

			rsvps, err := store.List(ctx, "rsvps")
			if err != nil {
				t.Fatalf("list rsvps: %v", err)
			}
			if len(rsvps) != 0 {
				t.Errorf("expected no rsvps, got %d", len(rsvps))
			}
		})
	}
}

func TestStore_UnknownCollection(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()
			defer store.Close()

			_, err := store.Create(ctx, "missing", model.Document{"a": "b"})
			if !errors.Is(err, ErrStore) || !errors.Is(err, ErrUnknownCollection) {
				t.Errorf("create: expected ErrStore and ErrUnknownCollection, got %v", err)
			}
			_, err = store.List(ctx, "missing")
			if !errors.Is(err, ErrStore) || !errors.Is(err, ErrUnknownCollection) {
				t.Errorf("list: expected ErrStore and ErrUnknownCollection, got %v", err)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.EnsureCollection(ctx, "rsvps"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	for _, d := range []model.Document{
		{"event_id": "e1", "name": "Ada", "email": "ada@example.com"},
		{"event_id": "e2", "name": "Bob", "email": "bob@example.com"},
		{"event_id": "e1", "name": "Cy", "email": "cy@example.com"},
		{"event_id": json.Number("1"), "name": "Num", "email": "n@example.com"},
		{"name": "NoEvent", "email": "x@example.com"},
	} {
		if _, err := store.Create(ctx, "rsvps", d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		value string
		want  []string
	}{
		{"e1", []string{"Ada", "Cy"}},
		{"e2", []string{"Bob"}},
		{"1", nil},
		{"unknown", nil},
	}
	for _, tt := range tests {
		got, err := Filter(ctx, store, "rsvps", "event_id", tt.value)
		if err != nil {
			t.Fatalf("filter %q: %v", tt.value, err)
		}
		if got == nil {
			t.Errorf("filter %q: expected non-nil slice", tt.value)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("filter %q: expected %d docs, got %d", tt.value, len(tt.want), len(got))
		}
		for i, name := range tt.want {
			if got[i]["name"] != name {
				t.Errorf("filter %q [%d]: expected %s, got %v", tt.value, i, name, got[i]["name"])
			}
		}
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		if name == "couchdb" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			store := newStore()
			_ = store.EnsureCollection(ctx, "events")
			if err := store.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			if _, err := store.List(ctx, "events"); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
			if _, err := store.Create(ctx, "events", model.Document{}); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
			if err := store.EnsureCollection(ctx, "rsvps"); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		})
	}
}

func TestMemoryStore_ReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.EnsureCollection(ctx, "events")

	created, err := store.Create(ctx, "events", model.Document{"title": "t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created["title"] = "changed"

	docs, _ := store.List(ctx, "events")
	docs[0]["extra"] = true

	docs, _ = store.List(ctx, "events")
	if docs[0]["title"] != "t" {
		t.Errorf("expected stored title to be unchanged, got %v", docs[0]["title"])
	}
	if _, ok := docs[0]["extra"]; ok {
		t.Error("expected stored document to be unchanged by list callers")
	}
}

func TestMemoryStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.EnsureCollection(ctx, "events")

	const goroutines, perGoroutine = 10, 50
	var wg sync.WaitGroup
	errs := make(chan error, goroutines*perGoroutine)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, err := store.Create(ctx, "events", model.Document{"title": fmt.Sprintf("%d-%d", id, i)}); err != nil {
					errs <- err
				}
				if _, err := store.List(ctx, "events"); err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	docs, err := store.List(ctx, "events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != goroutines*perGoroutine {
		t.Errorf("expected %d documents, got %d", goroutines*perGoroutine, len(docs))
	}
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID()] {
			t.Errorf("duplicate id %s", d.ID())
		}
		seen[d.ID()] = true
	}
}

func TestPebbleStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = store.EnsureCollection(ctx, "events")
	created, err := store.Create(ctx, "events", model.Document{"title": "persisted"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	docs, err := store.List(ctx, "events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].ID() != created.ID() || docs[0]["title"] != "persisted" {
		t.Errorf("expected persisted document, got %#v", docs)
	}
}

func TestPebbleStore_PrefixCollections(t *testing.T) {
	ctx := context.Background()
	store, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	// "event" is a prefix of "events"; the scans must not overlap.
	for _, c := range []string{"event", "events"} {
		_ = store.EnsureCollection(ctx, c)
	}
	_, _ = store.Create(ctx, "events", model.Document{"title": "long"})

	docs, err := store.List(ctx, "event")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents in %q, got %d", "event", len(docs))
	}
}
