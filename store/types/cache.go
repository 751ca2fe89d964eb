package types

import "sort"

// kvCache is the (set-map, delete-set) pair spec.md §3 describes: a key is
// in at most one of the two at a time. A set after a delete moves the key
// from delete-set to set-map and vice versa.
type kvCache struct {
	set    map[string][]byte
	delete map[string]struct{}
}

func newKVCache() *kvCache {
	return &kvCache{set: make(map[string][]byte), delete: make(map[string]struct{})}
}

func (c *kvCache) Set(key, value []byte) {
	k := string(key)
	delete(c.delete, k)
	v := make([]byte, len(value))
	copy(v, value)
	c.set[k] = v
}

func (c *kvCache) Delete(key []byte) {
	k := string(key)
	delete(c.set, k)
	c.delete[k] = struct{}{}
}

// Get returns (value, hasValue, isTombstoned). hasValue is false and
// isTombstoned true when the key was deleted at this layer; both are false
// when the layer has no opinion about the key.
func (c *kvCache) Get(key []byte) (value []byte, hasValue bool, tombstoned bool) {
	k := string(key)
	if v, ok := c.set[k]; ok {
		return v, true, false
	}
	if _, ok := c.delete[k]; ok {
		return nil, false, true
	}
	return nil, false, false
}

func (c *kvCache) Reset() {
	c.set = make(map[string][]byte)
	c.delete = make(map[string]struct{})
}

// sortedKeys returns the keys touched by this cache (set or deleted),
// restricted to [start, end), in ascending byte order — the merge
// iteration building block spec.md §4.2 calls for.
func (c *kvCache) sortedKeys(start, end []byte) []string {
	keys := make([]string, 0, len(c.set)+len(c.delete))
	for k := range c.set {
		if inRange(k, start, end) {
			keys = append(keys, k)
		}
	}
	for k := range c.delete {
		if inRange(k, start, end) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	// de-duplicate adjacent equal keys (a key cannot be in both maps, but
	// guard against it anyway).
	out := keys[:0]
	var prev string
	for i, k := range keys {
		if i > 0 && k == prev {
			continue
		}
		out = append(out, k)
		prev = k
	}
	return out
}

func inRange(key string, start, end []byte) bool {
	if start != nil && key < string(start) {
		return false
	}
	if end != nil && key >= string(end) {
		return false
	}
	return true
}
