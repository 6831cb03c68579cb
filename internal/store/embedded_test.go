package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"notes-go/internal/kv"
	"notes-go/internal/notes"
	"notes-go/internal/store"
	"notes-go/internal/testutil"
)

func newEmbedded(t *testing.T) (*store.EmbeddedStore, *testutil.CountingKV) {
	t.Helper()
	counting := testutil.NewCountingKV(kv.NewMemoryStore())
	return store.NewEmbeddedStore(counting, "", notes.NewNopLogger()), counting
}

func TestEmbeddedStore_Key(t *testing.T) {
	s, _ := newEmbedded(t)
	if got := s.Key("files"); got != "fileManager_files" {
		t.Errorf("Key(files) = %q, want %q", got, "fileManager_files")
	}

	custom := store.NewEmbeddedStore(kv.NewMemoryStore(), "app", notes.NewNopLogger())
	if got := custom.Key("work/drafts"); got != "app_work/drafts" {
		t.Errorf("Key(work/drafts) = %q, want %q", got, "app_work/drafts")
	}
}

func TestEmbeddedStore_PutReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s, counting := newEmbedded(t)

	for _, e := range []struct{ id, data string }{
		{"a", `{"id":"a","v":1}`},
		{"b", `{"id":"b","v":1}`},
		{"a", `{"id":"a","v":2}`},
	} {
		if err := s.PutEntry(ctx, "files", e.id, []byte(e.data)); err != nil {
			t.Fatalf("PutEntry(%s) error = %v", e.id, err)
		}
	}

	value, _, _ := counting.Get(ctx, "fileManager_files")
	if want := `[{"id":"a","v":2},{"id":"b","v":1}]`; value != want {
		t.Errorf("stored collection = %s, want %s", value, want)
	}
	if counting.Sets() != 3 {
		t.Errorf("Set calls = %d, want 3", counting.Sets())
	}
}

func TestEmbeddedStore_PutDropsDuplicates(t *testing.T) {
	ctx := context.Background()
	s, counting := newEmbedded(t)

	if err := counting.Set(ctx, "fileManager_files", `[{"id":"a","v":1},{"id":"a","v":2}]`); err != nil {
		t.Fatal(err)
	}
	if err := s.PutEntry(ctx, "files", "a", []byte(`{"id":"a","v":3}`)); err != nil {
		t.Fatalf("PutEntry() error = %v", err)
	}

	value, _, _ := counting.Get(ctx, "fileManager_files")
	if want := `[{"id":"a","v":3}]`; value != want {
		t.Errorf("stored collection = %s, want %s", value, want)
	}
}

func TestEmbeddedStore_KeepsCorruptElements(t *testing.T) {
	ctx := context.Background()
	s, counting := newEmbedded(t)

	if err := counting.Set(ctx, "fileManager_files", `[42,{"id":"a"},{"name":"no id"}]`); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListEntries(ctx, "files")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	if err := s.PutEntry(ctx, "files", "b", []byte(`{"id":"b"}`)); err != nil {
		t.Fatalf("PutEntry() error = %v", err)
	}
	if err := s.DeleteEntry(ctx, "files", "a"); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}

	value, _, _ := counting.Get(ctx, "fileManager_files")
	if want := `[42,{"name":"no id"},{"id":"b"}]`; value != want {
		t.Errorf("stored collection = %s, want %s", value, want)
	}
}

func TestEmbeddedStore_NonArrayCollection(t *testing.T) {
	ctx := context.Background()
	s, counting := newEmbedded(t)

	if err := counting.Set(ctx, "fileManager_files", `{"not":"an array"}`); err != nil {
		t.Fatal(err)
	}
	before := counting.Sets()

	if _, err := s.ListEntries(ctx, "files"); !errors.Is(err, notes.ErrCorruptRecord) {
		t.Errorf("ListEntries() error = %v, want ErrCorruptRecord", err)
	}
	if err := s.PutEntry(ctx, "files", "a", []byte(`{"id":"a"}`)); !errors.Is(err, notes.ErrCorruptRecord) {
		t.Errorf("PutEntry() error = %v, want ErrCorruptRecord", err)
	}
	if counting.Sets() != before {
		t.Error("PutEntry() overwrote a collection it could not parse")
	}

	value, _, _ := counting.Get(ctx, "fileManager_files")
	if !strings.Contains(value, "not") {
		t.Errorf("stored collection = %s, want it untouched", value)
	}
}

func TestEmbeddedStore_DeleteMissingDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s, counting := newEmbedded(t)

	if err := s.PutEntry(ctx, "files", "a", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("PutEntry() error = %v", err)
	}
	before := counting.Sets()

	if err := s.DeleteEntry(ctx, "files", "missing"); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if counting.Sets() != before {
		t.Errorf("Set calls = %d, want %d", counting.Sets(), before)
	}
}

func TestEmbeddedStore_ScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s, _ := newEmbedded(t)

	if err := s.PutEntry(ctx, "files", "a", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("PutEntry() error = %v", err)
	}

	if _, err := s.GetEntry(ctx, "archive", "a"); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("GetEntry() in other scope error = %v, want ErrNotFound", err)
	}
	entries, err := s.ListEntries(ctx, "archive")
	if err != nil || len(entries) != 0 {
		t.Errorf("ListEntries(archive) = %v, %v; want empty", entries, err)
	}
}

type failingKV struct {
	notes.KeyValueStore
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestEmbeddedStore_SetFailureIsStorageFailure(t *testing.T) {
	s := store.NewEmbeddedStore(failingKV{kv.NewMemoryStore()}, "", notes.NewNopLogger())

	err := s.PutEntry(context.Background(), "files", "a", []byte(`{"id":"a"}`))
	if !errors.Is(err, notes.ErrStorageFailure) {
		t.Errorf("PutEntry() error = %v, want ErrStorageFailure", err)
	}
}

type switchableKV struct {
	notes.KeyValueStore
	fail bool
}

func (s *switchableKV) Set(ctx context.Context, key, value string) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.KeyValueStore.Set(ctx, key, value)
}

func TestEmbeddedStore_FailedPutKeepsPriorValue(t *testing.T) {
	ctx := context.Background()
	kvs := &switchableKV{KeyValueStore: kv.NewMemoryStore()}
	s := store.NewEmbeddedStore(kvs, "", notes.NewNopLogger())

	if err := s.PutEntry(ctx, "files", "a", []byte(`{"id":"a","content":"old"}`)); err != nil {
		t.Fatalf("PutEntry() error = %v", err)
	}

	kvs.fail = true
	if err := s.PutEntry(ctx, "files", "a", []byte(`{"id":"a","content":"new"}`)); err == nil {
		t.Fatal("PutEntry() expected error")
	}

	got, err := s.GetEntry(ctx, "files", "a")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if string(got) != `{"id":"a","content":"old"}` {
		t.Errorf("GetEntry() = %s, want the value before the failed write", got)
	}
}
