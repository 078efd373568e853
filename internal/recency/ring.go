// Package recency implements bounded, most-recent-first, de-duplicated
// sequences ("recency rings") over plain slices.
package recency

// Push returns a new slice with v at the front. An existing element with the
// same key is moved rather than duplicated, and the result is trimmed to
// limit elements (limit <= 0 means unbounded). items is not modified.
func Push[T any, K comparable](items []T, v T, key func(T) K, limit int) []T {
	k := key(v)
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	for _, it := range items {
		if key(it) == k {
			continue
		}
		out = append(out, it)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Upsert returns a new slice where the element with v's key is replaced in
// place, or v is appended when no such element exists. items is not
// modified.
func Upsert[T any, K comparable](items []T, v T, key func(T) K) []T {
	k := key(v)
	out := append([]T(nil), items...)
	for i, it := range out {
		if key(it) == k {
			out[i] = v
			return out
		}
	}
	return append(out, v)
}

// Remove returns items without the elements whose key equals k, and whether
// anything was removed.
func Remove[T any, K comparable](items []T, k K, key func(T) K) ([]T, bool) {
	out := make([]T, 0, len(items))
	removed := false
	for _, it := range items {
		if key(it) == k {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return out, removed
}

// Identity is the key function for rings of comparable values.
func Identity[T comparable](v T) T { return v }
