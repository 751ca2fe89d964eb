package types

import "bytes"

// PrefixStore transparently prepends Prefix to every key on write/read and
// strips it on iteration, per spec.md §3. Prefix stores nest: wrapping a
// PrefixStore in another PrefixStore composes the prefixes.
type PrefixStore struct {
	parent KVStore
	prefix []byte
}

// NewPrefixStore returns a view of parent scoped to prefix.
func NewPrefixStore(parent KVStore, prefix []byte) *PrefixStore {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return &PrefixStore{parent: parent, prefix: p}
}

func (s *PrefixStore) key(k []byte) []byte {
	return append(append([]byte{}, s.prefix...), k...)
}

func (s *PrefixStore) Get(key []byte) []byte { return s.parent.Get(s.key(key)) }

func (s *PrefixStore) Has(key []byte) bool { return s.parent.Has(s.key(key)) }

func (s *PrefixStore) Set(key, value []byte) {
	AssertValidKey(key)
	s.parent.Set(s.key(key), value)
}

func (s *PrefixStore) Delete(key []byte) []byte { return s.parent.Delete(s.key(key)) }

// prefixEnd returns the smallest byte string greater than every string
// with the given prefix — the exclusive upper bound for a prefix scan.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // prefix is all 0xFF bytes; unbounded above
}

func (s *PrefixStore) boundedRange(start, end []byte) ([]byte, []byte) {
	pStart := s.key(start)
	var pEnd []byte
	if end == nil {
		pEnd = prefixEnd(s.prefix)
	} else {
		pEnd = s.key(end)
	}
	return pStart, pEnd
}

func (s *PrefixStore) Iterator(start, end []byte) Iterator {
	pStart, pEnd := s.boundedRange(start, end)
	return &prefixIterator{it: s.parent.Iterator(pStart, pEnd), prefix: s.prefix}
}

func (s *PrefixStore) ReverseIterator(start, end []byte) Iterator {
	pStart, pEnd := s.boundedRange(start, end)
	return &prefixIterator{it: s.parent.ReverseIterator(pStart, pEnd), prefix: s.prefix}
}

type prefixIterator struct {
	it     Iterator
	prefix []byte
}

func (p *prefixIterator) Valid() bool { return p.it.Valid() }
func (p *prefixIterator) Next()       { p.it.Next() }
func (p *prefixIterator) Key() []byte {
	k := p.it.Key()
	if !bytes.HasPrefix(k, p.prefix) {
		panic("prefixIterator: key missing expected prefix")
	}
	return k[len(p.prefix):]
}
func (p *prefixIterator) Value() []byte { return p.it.Value() }
func (p *prefixIterator) Close() error  { return p.it.Close() }
