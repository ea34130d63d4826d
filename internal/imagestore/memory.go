package imagestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

)

// MemoryStore keeps uploaded images in memory. It backs local development
// without object storage and the package tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]ImageRef
	folders map[string]struct{}
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]ImageRef),
		folders: make(map[string]struct{}),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, file File, opts UploadOptions) (*ImageRef, error) {
	key := cleanKey(opts.PublicID)
	if key == "" {
		folder := cleanKey(opts.Folder)
		if folder == "" {
			return nil, ErrEmptyKey
		}
		key = objectName(folder, file.Filename)
	}

	var size int64
	if file.Body != nil {
		n, err := io.Copy(io.Discard, file.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		size = n
	}

	url := m.baseURL + "/" + key
	ref := ImageRef{
		PublicID:     key,
		Folder:       path.Dir(key),
		URL:          url,
		SecureURL:    url,
		Format:       formatOf(file),
		ResourceType: "image",
		Bytes:        size,
		CreatedAt:    time.Now().UTC(),
	}

	m.mu.Lock()
	m.objects[key] = ref
	for dir := ref.Folder; dir != "." && dir != "/"; dir = path.Dir(dir) {
		m.folders[dir] = struct{}{}
	}
	m.mu.Unlock()

	return &ref, nil
}

func (m *MemoryStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	p := folderPrefix(prefix)
	if p == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.objects {
		if strings.HasPrefix(key, p) {
			delete(m.objects, key)
		}
	}
	return nil
}

func (m *MemoryStore) DeleteFolder(ctx context.Context, folder string) error {
	k := cleanKey(folder)
	if k == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.objects {
		if strings.HasPrefix(key, k+"/") {
			return fmt.Errorf("folder %s is not empty", k)
		}
	}
	delete(m.folders, k)
	return nil
}

// List returns the keys stored under prefix, sorted.
func (m *MemoryStore) List(prefix string) []string {
	p := folderPrefix(prefix)

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for key := range m.objects {
		if strings.HasPrefix(key, p) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// HasFolder reports whether folder still exists.
func (m *MemoryStore) HasFolder(folder string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.folders[cleanKey(folder)]
	return ok
}
