package localstore

import "reflect"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// isZero reports whether v is the zero value of V. Presence checks treat a
// stored zero payload (empty string, 0, nil) as absent, matching the original
// "truthy value exists" contract.
func isZero[V any](v V) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
