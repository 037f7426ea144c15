package lstore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ValentinKolb/asadmin/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	magicNum     = "ASADMIN\x00" // File format identifier
	storeVersion = 1             // Snapshot version
	maxKeyLen    = 1 << 16
	maxValueLen  = 1 << 26
)

type storeImpl struct {
	data *xsync.MapOf[string, []byte]

	// path of the backing file, empty for a pure in-memory store
	path string
	// fileMu serializes writes of the backing file
	fileMu sync.Mutex
}

// NewLocalStore creates a store that only lives in memory.
func NewLocalStore() store.IStore {
	return &storeImpl{data: xsync.NewMapOf[string, []byte]()}
}

// NewFileStore creates a store backed by a file. An existing file is loaded;
// a missing one is created on the first write.
func NewFileStore(path string) (store.IStore, error) {
	s := &storeImpl{data: xsync.NewMapOf[string, []byte](), path: path}

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		store.Logger.Debugf("no store file at %s, starting empty", path)
		return s, nil
	case err != nil:
		return nil, store.NewError(store.RetCInternalError, err.Error())
	}
	defer f.Close()

	if err := s.Load(f); err != nil {
		return nil, err
	}
	store.Logger.Debugf("loaded %d keys from %s", s.data.Size(), path)
	return s, nil
}

// persist rewrites the backing file. The snapshot is written to a temporary
// file first, so a crash never leaves a truncated store behind.
func (s *storeImpl) persist() error {
	if s.path == "" {
		return nil
	}
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	defer os.Remove(tmp.Name())

	if err := s.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if key == "" {
		return store.NewError(store.RetCInvalidOperation, "key must not be empty")
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data.Store(key, cp)
	return s.persist()
}

func (s *storeImpl) Delete(key string) error {
	if _, loaded := s.data.LoadAndDelete(key); !loaded {
		return nil
	}
	return s.persist()
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	val, ok := s.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, true, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	_, ok := s.data.Load(key)
	return ok, nil
}

func (s *storeImpl) Keys(prefix string) ([]string, error) {
	keys := make([]string, 0)
	s.data.Range(func(key string, _ []byte) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// --------------------------------------------------------------------------
// Snapshots
// --------------------------------------------------------------------------

// Save writes all entries in key order:
//
//	magic | version (uint8) | count (uint64) | count * (keyLen uint32 | key | valueLen uint32 | value)
func (s *storeImpl) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	type entry struct {
		key   string
		value []byte
	}
	var entries []entry
	s.data.Range(func(key string, value []byte) bool {
		entries = append(entries, entry{key, value})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	fail := func(err error) error {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("failed to write snapshot: %v", err))
	}

	if _, err := bw.WriteString(magicNum); err != nil {
		return fail(err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(storeVersion)); err != nil {
		return fail(err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return fail(err)
	}
	for _, e := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(e.key))); err != nil {
			return fail(err)
		}
		if _, err := bw.WriteString(e.key); err != nil {
			return fail(err)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(e.value))); err != nil {
			return fail(err)
		}
		if _, err := bw.Write(e.value); err != nil {
			return fail(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	return nil
}

// Load replaces the content of the store. On error the store is unchanged.
func (s *storeImpl) Load(r io.Reader) error {
	br := bufio.NewReader(r)
	corrupted := func(format string, args ...any) error {
		return store.NewError(store.RetCCorrupted, fmt.Sprintf(format, args...))
	}

	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return corrupted("failed to read header: %v", err)
	}
	if string(magicBytes) != magicNum {
		return corrupted("invalid file format: magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return corrupted("failed to read version: %v", err)
	}
	if int(version) != storeVersion {
		return corrupted("unsupported version: %d (expected %d)", version, storeVersion)
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return corrupted("failed to read entry count: %v", err)
	}

	readChunk := func(limit uint32) ([]byte, error) {
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		if n > limit {
			return nil, fmt.Errorf("length %d exceeds %d", n, limit)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	loaded := make(map[string][]byte)
	for i := uint64(0); i < count; i++ {
		key, err := readChunk(maxKeyLen)
		if err != nil {
			return corrupted("failed to read key %d: %v", i, err)
		}
		value, err := readChunk(maxValueLen)
		if err != nil {
			return corrupted("failed to read value of %q: %v", key, err)
		}
		loaded[string(key)] = value
	}

	s.data.Clear()
	for k, v := range loaded {
		s.data.Store(k, v)
	}
	return nil
}
