// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

// Outcome is the result of one optional enrichment stage: either a value or
// the error that stopped it. The pipeline matches on it to decide whether
// to substitute the stage's default.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful stage result.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Failed wraps a stage failure.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// Attempt runs fn and captures its result as an Outcome.
func Attempt[T any](fn func() (T, error)) Outcome[T] {
	v, err := fn()
	if err != nil {
		return Failed[T](err)
	}
	return Ok(v)
}

// OK reports whether the stage succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Or returns the value when the stage succeeded and def otherwise.
func (o Outcome[T]) Or(def T) T {
	if o.Err != nil {
		return def
	}
	return o.Value
}
