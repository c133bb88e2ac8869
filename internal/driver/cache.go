package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DefaultMemoryEntries is the in-memory cache size when none is configured.
const DefaultMemoryEntries = 256

// DiskCache хранит сырые ответы провайдера по RequestDigest на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached provider response.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Endpoint string
	Language string
	StoredAt time.Time
	Body     []byte // JSON как пришёл от провайдера
}

// DefaultCacheDir returns $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenDiskCache initializes a disk cache in dir, creating it if needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	// Для удобства читаемости/очистки: подкаталог "responses".
	return filepath.Join(c.dir, "responses", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
// Entries written with another schema version are reported as missing.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// CacheTier says where a response was found.
type CacheTier uint8

const (
	CacheMiss CacheTier = iota
	CacheMemory
	CacheDisk
)

func (t CacheTier) String() string {
	switch t {
	case CacheMemory:
		return "memory"
	case CacheDisk:
		return "disk"
	default:
		return "miss"
	}
}

// ResponseCache is an in-memory LRU in front of an optional DiskCache.
// A nil *ResponseCache never hits and ignores stores.
type ResponseCache struct {
	mem  *lru.Cache[Digest, []byte]
	disk *DiskCache
}

// NewResponseCache creates a cache holding up to entries responses in memory.
// disk may be nil.
func NewResponseCache(entries int, disk *DiskCache) (*ResponseCache, error) {
	if entries <= 0 {
		entries = DefaultMemoryEntries
	}
	mem, err := lru.New[Digest, []byte](entries)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &ResponseCache{mem: mem, disk: disk}, nil
}

// Get looks up key in memory, then on disk. Disk hits are promoted to memory.
// A corrupt disk entry is reported together with CacheMiss.
func (c *ResponseCache) Get(key Digest) ([]byte, CacheTier, error) {
	if c == nil {
		return nil, CacheMiss, nil
	}
	if body, ok := c.mem.Get(key); ok {
		return body, CacheMemory, nil
	}
	var payload DiskPayload
	ok, err := c.disk.Get(key, &payload)
	if err != nil || !ok {
		return nil, CacheMiss, err
	}
	c.mem.Add(key, payload.Body)
	return payload.Body, CacheDisk, nil
}

// Put stores body in memory and on disk.
func (c *ResponseCache) Put(key Digest, endpoint, language string, body []byte) error {
	if c == nil {
		return nil
	}
	c.mem.Add(key, body)
	return c.disk.Put(key, &DiskPayload{
		Endpoint: endpoint,
		Language: language,
		StoredAt: time.Now().UTC(),
		Body:     body,
	})
}

// Len returns the number of responses held in memory.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.mem.Len()
}
