// Package lazy holds values that are expensive to build and shared for the
// life of the process, such as OCR engines and embedding extractors.
package lazy

import "sync"

// Value builds its content once, on first use. Concurrent first calls
// block until the single construction finishes and all observe its result.
// A failed construction is remembered and returned to every caller.
type Value[T any] struct {
	get func() (T, error)

	mu    sync.Mutex
	built bool
}

// New wraps build. build is not called until Get.
func New[T any](build func() (T, error)) *Value[T] {
	v := &Value[T]{}
	once := sync.OnceValues(func() (T, error) {
		t, err := build()
		v.mu.Lock()
		v.built = true
		v.mu.Unlock()
		return t, err
	})
	v.get = once
	return v
}

// Get returns the value, building it on the first call.
func (v *Value[T]) Get() (T, error) {
	return v.get()
}

// Built reports whether construction has run.
func (v *Value[T]) Built() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.built
}
