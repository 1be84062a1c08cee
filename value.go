package localstore

// Value is a tagged "literal or producer" argument used by Set, GetOr and the
// write half of Remember. A producer is invoked synchronously, at most once,
// only when its result is actually needed.
type Value[V any] struct {
	v  V
	fn func() V
}

// Literal wraps a plain value.
func Literal[V any](v V) Value[V] { return Value[V]{v: v} }

// Lazy wraps a zero-argument producer.
func Lazy[V any](fn func() V) Value[V] { return Value[V]{fn: fn} }

func (x Value[V]) resolve() V {
	if x.fn != nil {
		return x.fn()
	}
	return x.v
}
