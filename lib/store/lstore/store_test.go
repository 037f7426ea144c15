package lstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/ValentinKolb/asadmin/lib/store"
)

func TestLocalStore(t *testing.T) {
	t.Run("SetGetDelete", func(t *testing.T) {
		s := NewLocalStore()

		if err := s.Set("a", []byte("1")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		val, ok, err := s.Get("a")
		if err != nil || !ok || string(val) != "1" {
			t.Errorf("Get(a) = %q, %v, %v; want 1, true, nil", val, ok, err)
		}
		if has, _ := s.Has("a"); !has {
			t.Errorf("Has(a) = false after Set")
		}

		if err := s.Delete("a"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, ok, _ := s.Get("a"); ok {
			t.Errorf("Get(a) found a deleted key")
		}
		if err := s.Delete("a"); err != nil {
			t.Errorf("deleting a missing key returned %v", err)
		}
	})

	t.Run("EmptyKey", func(t *testing.T) {
		s := NewLocalStore()
		err := s.Set("", []byte("x"))
		var serr *store.Error
		if !errors.As(err, &serr) || serr.Code != store.RetCInvalidOperation {
			t.Errorf("Set with empty key returned %v, want RetCInvalidOperation", err)
		}
	})

	t.Run("ValuesAreCopied", func(t *testing.T) {
		s := NewLocalStore()
		in := []byte("abc")
		_ = s.Set("k", in)
		in[0] = 'x'
		out, _, _ := s.Get("k")
		out[1] = 'y'
		again, _, _ := s.Get("k")
		if string(again) != "abc" {
			t.Errorf("stored value was modified through a caller slice: %q", again)
		}
	})

	t.Run("Keys", func(t *testing.T) {
		s := NewLocalStore()
		for _, k := range []string{"profile:b", "ui:theme", "profile:a", "profiles"} {
			_ = s.Set(k, nil)
		}
		keys, err := s.Keys("profile:")
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		if want := []string{"profile:a", "profile:b"}; !reflect.DeepEqual(keys, want) {
			t.Errorf("Keys(profile:) = %v, want %v", keys, want)
		}
		all, _ := s.Keys("")
		if len(all) != 4 {
			t.Errorf("Keys() returned %d keys, want 4", len(all))
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		s := NewLocalStore()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := string(rune('a' + i))
				for j := 0; j < 100; j++ {
					_ = s.Set(key, []byte{byte(j)})
					_, _, _ = s.Get(key)
				}
			}(i)
		}
		wg.Wait()
		keys, _ := s.Keys("")
		if len(keys) != 16 {
			t.Errorf("got %d keys after concurrent writes, want 16", len(keys))
		}
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("SaveLoad", func(t *testing.T) {
		src := NewLocalStore()
		_ = src.Set("b", []byte("second"))
		_ = src.Set("a", []byte("first"))
		_ = src.Set("empty", []byte{})

		var buf bytes.Buffer
		if err := src.Save(&buf); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		dst := NewLocalStore()
		_ = dst.Set("stale", []byte("x"))
		if err := dst.Load(bytes.NewReader(buf.Bytes())); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if has, _ := dst.Has("stale"); has {
			t.Errorf("Load did not replace the existing content")
		}
		for k, want := range map[string]string{"a": "first", "b": "second", "empty": ""} {
			got, ok, _ := dst.Get(k)
			if !ok || string(got) != want {
				t.Errorf("Get(%s) = %q, %v; want %q", k, got, ok, want)
			}
		}
	})

	t.Run("Corrupted", func(t *testing.T) {
		var buf bytes.Buffer
		src := NewLocalStore()
		_ = src.Set("key", []byte("value"))
		_ = src.Save(&buf)
		valid := buf.Bytes()

		cases := map[string][]byte{
			"empty":     {},
			"magic":     append([]byte("NOTADMIN"), valid[len(magicNum):]...),
			"version":   append(append([]byte(magicNum), 99), valid[len(magicNum)+1:]...),
			"truncated": valid[:len(valid)-2],
		}
		for name, data := range cases {
			t.Run(name, func(t *testing.T) {
				dst := NewLocalStore()
				_ = dst.Set("keep", []byte("me"))
				err := dst.Load(bytes.NewReader(data))
				var serr *store.Error
				if !errors.As(err, &serr) || serr.Code != store.RetCCorrupted {
					t.Fatalf("Load returned %v, want RetCCorrupted", err)
				}
				if has, _ := dst.Has("keep"); !has {
					t.Errorf("a failed Load changed the store")
				}
			})
		}
	})
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore on a missing file failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file created before the first write")
	}

	_ = s.Set("profile:1", []byte(`{"name":"local"}`))
	_ = s.Set("ui:theme", []byte("light"))
	_ = s.Delete("ui:theme")

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopening the store failed: %v", err)
	}
	got, ok, _ := reopened.Get("profile:1")
	if !ok || string(got) != `{"name":"local"}` {
		t.Errorf("profile:1 = %q, %v after reopen", got, ok)
	}
	if has, _ := reopened.Has("ui:theme"); has {
		t.Errorf("deleted key survived a reopen")
	}

	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Errorf("NewFileStore accepted a corrupted file")
	}
}
