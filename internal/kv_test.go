package internal

import (
	"testing"

	"github.com/mentevital/terapia-admin/testutil"
)

func kvRoundTrip(t *testing.T, store KVStore) {
	t.Helper()

	if v, err := store.Get("missing"); err != nil || v != "" {
		t.Errorf("Get(missing) = %q, %v; want empty, nil", v, err)
	}

	if err := store.Set("k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := store.Get("k"); v != "v1" {
		t.Errorf("Get(k) = %q, want v1", v)
	}

	// Set replaces the prior value.
	if err := store.Set("k", "v2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := store.Get("k"); v != "v2" {
		t.Errorf("Get(k) after replace = %q, want v2", v)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if v, _ := store.Get("k"); v != "" {
		t.Errorf("Get(k) after delete = %q, want empty", v)
	}

	// Deleting an absent key is harmless.
	if err := store.Delete("missing"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	kvRoundTrip(t, NewMemoryKV())
}

func TestSQLiteKV(t *testing.T) {
	store, err := OpenSQLiteKV(testutil.CreateTempDir(t))
	if err != nil {
		t.Fatalf("OpenSQLiteKV() error = %v", err)
	}
	defer store.Close()

	kvRoundTrip(t, store)
}

func TestSQLiteKVPersistsAcrossOpens(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	store, err := OpenSQLiteKV(dir)
	if err != nil {
		t.Fatalf("OpenSQLiteKV() error = %v", err)
	}
	if err := store.Set("overlay:enfoques", `{"9":{}}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Close()

	reopened, err := OpenSQLiteKV(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if v, _ := reopened.Get("overlay:enfoques"); v != `{"9":{}}` {
		t.Errorf("value lost across reopen: %q", v)
	}
}
