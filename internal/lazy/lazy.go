// Package lazy provides a compute-once value holder.
package lazy

// Value computes its result on the first call to Get and returns the cached
// result (including any error) on every later call.
//
// Value is not safe for concurrent use. It is a same-goroutine cache that is
// invalidated by discarding the holder.
type Value[T any] struct {
	fn   func() (T, error)
	done bool
	val  T
	err  error
}

// New returns a Value backed by fn.
func New[T any](fn func() (T, error)) *Value[T] {
	return &Value[T]{fn: fn}
}

// Get returns the computed value, running fn only once.
func (v *Value[T]) Get() (T, error) {
	if !v.done {
		v.val, v.err = v.fn()
		v.done = true
		v.fn = nil
	}
	return v.val, v.err
}

// Done reports whether the value has been computed.
func (v *Value[T]) Done() bool {
	return v.done
}
