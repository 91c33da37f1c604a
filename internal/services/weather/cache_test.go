package weather

import (
	"testing"
	"time"
)

func TestTTLCache(t *testing.T) {
	c := newTTLCache[int](50 * time.Millisecond)

	if _, ok := c.get("a"); ok {
		t.Error("empty cache returned a hit")
	}

	c.put("a", 1)
	if v, ok := c.get("a"); !ok || v != 1 {
		t.Errorf("get(a) = (%v, %v), want (1, true)", v, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.get("a"); ok {
		t.Error("expired entry still served")
	}
}

func TestTTLCacheOverwrite(t *testing.T) {
	c := newTTLCache[string](time.Minute)
	c.put("k", "old")
	c.put("k", "new")
	if v, _ := c.get("k"); v != "new" {
		t.Errorf("get(k) = %q, want latest write", v)
	}
}
