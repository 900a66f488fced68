package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/quotelens/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("openai", "gpt-4o-mini", "climate change is real")
	b := CacheKey("openai", "gpt-4o-mini", "climate change is real")
	if a != b {
		t.Error("expected identical parts to give identical keys")
	}
	if !strings.HasPrefix(a, "quotelens-v1-") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Error("expected part boundaries to change the key")
	}
	if CacheKey("lexicon", "", "x") == CacheKey("openai", "", "x") {
		t.Error("expected provider to change the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
	_ = c.Set("k", []byte("v"), 0)
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Get = %q %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Error("expected empty cache after clear")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("lexicon", "", "text")

	if err := c.Set(key, []byte(`{"label":"POSITIVE"}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != `{"label":"POSITIVE"}` {
		t.Fatalf("Get = %q %v", got, ok)
	}

	reopened := NewDiskCache(dir, time.Hour)
	if _, ok := reopened.Get(key); !ok {
		t.Error("expected entry to survive a new cache instance")
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete of missing key returned %v", err)
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set("k1", []byte("v"), time.Minute)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k1"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("k1")); !os.IsNotExist(err) {
		t.Error("expected expired entry to be removed")
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	path := c.path("bad")
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	_ = os.WriteFile(path, []byte("{not json"), 0644)

	if _, ok := c.Get("bad"); ok {
		t.Error("expected corrupt entry to miss")
	}
}

func TestLayeredCachePromotes(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("from disk"), 0)

	mem := NewMemoryCache(time.Hour, time.Minute)
	c := &LayeredCache{memory: mem, disk: disk}

	got, ok := c.Get("k")
	if !ok || string(got) != "from disk" {
		t.Fatalf("Get = %q %v", got, ok)
	}
	if _, ok := mem.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestNew(t *testing.T) {
	if c := New(model.CacheConfig{Enabled: false}); c != nil {
		t.Error("expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a directory")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a directory")
	}
}
