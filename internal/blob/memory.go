package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	info Info
	data []byte
}

// Default memory store caps.
const (
	DefaultMemoryMaxObjects       = 64
	DefaultMemoryMaxBytes   int64 = 256 << 20
)

// MemoryStore keeps blobs in process memory. Used by tests and by servers
// that only need the most recent archives while running. Once a cap is
// reached the oldest blobs are evicted first.
type MemoryStore struct {
	mu         sync.RWMutex
	objs       map[string]memoryEntry
	order      []string // insertion order, oldest first
	size       int64
	maxObjects int
	maxBytes   int64
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxObjects caps the number of stored blobs. n <= 0 keeps the default.
func WithMaxObjects(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxObjects = n
		}
	}
}

// WithMaxBytes caps the total stored bytes. n <= 0 keeps the default.
func WithMaxBytes(n int64) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		objs:       make(map[string]memoryEntry),
		maxObjects: DefaultMemoryMaxObjects,
		maxBytes:   DefaultMemoryMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

// Put stores a new blob; errors if key exists. Blobs larger than the byte
// cap fail with ErrTooLarge.
func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Info{}, err
	}
	b, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Info{}, err
	}
	if int64(len(b)) > s.maxBytes {
		return Info{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, k, s.maxBytes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[k]; exists {
		return Info{}, fmt.Errorf("%w: %s", ErrExists, k)
	}
	info := Info{
		Key:          k,
		Size:         int64(len(b)),
		ContentType:  opts.ContentType,
		Metadata:     cloneMetadata(opts.Metadata),
		LastModified: time.Now().UTC(),
	}
	for len(s.order) > 0 && (len(s.order) >= s.maxObjects || s.size+info.Size > s.maxBytes) {
		s.remove(s.order[0])
	}
	s.objs[k] = memoryEntry{info: info, data: b}
	s.order = append(s.order, k)
	s.size += info.Size
	return info, nil
}

// remove drops k. Callers hold mu.
func (s *MemoryStore) remove(k string) bool {
	obj, ok := s.objs[k]
	if !ok {
		return false
	}
	delete(s.objs, k)
	s.size -= obj.info.Size
	if i := slices.Index(s.order, k); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Get returns blob metadata and a reader over a copy of its content.
func (s *MemoryStore) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Info{}, nil, err
	}
	s.mu.RLock()
	obj, ok := s.objs[k]
	s.mu.RUnlock()
	if !ok {
		return Info{}, nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	data := bytes.Clone(obj.data)
	info := obj.info
	info.Metadata = cloneMetadata(info.Metadata)
	return info, io.NopCloser(bytes.NewReader(data)), nil
}

// Head returns blob metadata only.
func (s *MemoryStore) Head(_ context.Context, key string) (Info, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Info{}, err
	}
	s.mu.RLock()
	obj, ok := s.objs[k]
	s.mu.RUnlock()
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	info := obj.info
	info.Metadata = cloneMetadata(info.Metadata)
	return info, nil
}

// Delete removes the blob returning true if it existed.
func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	k, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(k), nil
}

// List returns all blobs whose key starts with prefix, sorted by key.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.objs))
	for k, v := range s.objs {
		if strings.HasPrefix(k, prefix) {
			info := v.info
			info.Metadata = cloneMetadata(info.Metadata)
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PresignURL is not available in memory.
func (s *MemoryStore) PresignURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrUnsupported
}

var _ Store = (*MemoryStore)(nil)
