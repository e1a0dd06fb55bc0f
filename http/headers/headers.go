package headers

import (
	"github.com/indigo-web/iter"
	"github.com/indigo-web/utils/strcomp"
)

type Header struct {
	Key, Value string
}

// Headers is an ordered sequence of header fields. Duplicate keys are kept as separate
// entries in the order they came; keys are stored verbatim and compared case-insensitively.
type Headers struct {
	pairs      []Header
	uniqueBuff []string
	valuesBuff []string
}

// NewPrealloc returns an instance of Headers with pre-allocated underlying storage.
func NewPrealloc(n int) *Headers {
	return &Headers{
		pairs: make([]Header, 0, n),
	}
}

func New() *Headers {
	return NewPrealloc(0)
}

// Add appends a new pair of key and value.
func (h *Headers) Add(key, value string) *Headers {
	h.pairs = append(h.pairs, Header{
		Key:   key,
		Value: value,
	})
	return h
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned.
func (h *Headers) Value(key string) string {
	return h.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or custom value, defined
// via the second parameter.
func (h *Headers) ValueOr(key, or string) string {
	value, found := h.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns a value corresponding to the key and a bool, indicating whether the key
// exists. In case it doesn't, empty string will be returned either.
func (h *Headers) Get(key string) (string, bool) {
	for _, pair := range h.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values returns all values by the key. Returns nil if key doesn't exist.
//
// WARNING: calling it twice will override values, returned by the first call. Consider
// copying the returned slice for safe use.
func (h *Headers) Values(key string) []string {
	h.valuesBuff = h.valuesBuff[:0]

	for _, pair := range h.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			h.valuesBuff = append(h.valuesBuff, pair.Value)
		}
	}

	if len(h.valuesBuff) == 0 {
		return nil
	}

	return h.valuesBuff
}

// Keys returns all unique presented keys, in order of their first appearance.
//
// WARNING: calling it twice will override values, returned by the first call. Consider
// copying the returned slice for safe use.
func (h *Headers) Keys() []string {
	h.uniqueBuff = h.uniqueBuff[:0]

	for _, pair := range h.pairs {
		if contains(h.uniqueBuff, pair.Key) {
			continue
		}

		h.uniqueBuff = append(h.uniqueBuff, pair.Key)
	}

	return h.uniqueBuff
}

// Has indicates, whether there's an entry of the key.
func (h *Headers) Has(key string) bool {
	_, found := h.Get(key)
	return found
}

// Len returns the number of entries, duplicates included.
func (h *Headers) Len() int {
	return len(h.pairs)
}

// At returns the i-th entry in wire order.
func (h *Headers) At(i int) Header {
	return h.pairs[i]
}

// Iter returns an iterator over the pairs.
func (h *Headers) Iter() iter.Iterator[Header] {
	return iter.Slice(h.pairs)
}

// Unwrap reveals underlying data structure. Try to avoid the method if possible, as
// changing the signature may not affect a major version.
func (h *Headers) Unwrap() []Header {
	return h.pairs
}

// Clone creates a deep copy. Keys and values are copied too, so the clone stays valid
// after the memory the original was parsed into gets reused.
func (h *Headers) Clone() *Headers {
	clone := NewPrealloc(len(h.pairs))
	for _, pair := range h.pairs {
		clone.Add(copyString(pair.Key), copyString(pair.Value))
	}

	return clone
}

// Clear all the entries. However, all the allocated space won't be freed.
func (h *Headers) Clear() {
	h.pairs = h.pairs[:0]
}

func contains(collection []string, key string) bool {
	for _, element := range collection {
		if strcomp.EqualFold(element, key) {
			return true
		}
	}

	return false
}

func copyString(s string) string {
	return string(append([]byte(nil), s...))
}
