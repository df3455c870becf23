package storage

import (
	"path/filepath"
	"testing"
)

func testProviders(t *testing.T) map[string]Provider {
	sqlite, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "storage.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Provider{
		"memory": NewMemStorage(),
		"sqlite": sqlite,
	}
}

func TestProviderGetSet(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := p.Get("missing"); ok || err != nil {
				t.Fatalf("missing key: ok=%v err=%v", ok, err)
			}
			if err := p.Set("k", []byte("one")); err != nil {
				t.Fatal(err)
			}
			if err := p.Set("k", []byte("two")); err != nil {
				t.Fatal(err)
			}
			val, ok, err := p.Get("k")
			if err != nil || !ok || string(val) != "two" {
				t.Fatalf("got %q ok=%v err=%v", val, ok, err)
			}
		})
	}
}

func TestProviderRemoveAndKeys(t *testing.T) {
	for name, p := range testProviders(t) {
		t.Run(name, func(t *testing.T) {
			p.Set("b", []byte("2"))
			p.Set("a", []byte("1"))
			if err := p.Remove("b"); err != nil {
				t.Fatal(err)
			}
			if err := p.Remove("never-there"); err != nil {
				t.Fatal(err)
			}
			var keys []string
			p.Keys(func(k string) { keys = append(keys, k) })
			if len(keys) != 1 || keys[0] != "a" {
				t.Fatalf("keys are %v", keys)
			}
		})
	}
}

func TestMemStorageCopiesValues(t *testing.T) {
	m := NewMemStorage()
	val := []byte("abc")
	m.Set("k", val)
	val[0] = 'x'
	got, _, _ := m.Get("k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed to %q", got)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("memory"); err != nil {
		t.Fatal(err)
	}
	p, err := Open("sqlite:" + filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatal(err)
	}
	p.(*SQLStorage).Close()
	if _, err := Open("redis:localhost"); err == nil {
		t.Fatal("unknown scheme accepted")
	}
}
