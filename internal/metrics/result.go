// ABOUTME: Result type distinguishing found, empty, and failed reads.
// ABOUTME: Get collapses empty and failed into a single absent signal for defensive callers.
package metrics

// Status is the outcome of a repository read.
type Status int

const (
	StatusEmpty Status = iota
	StatusFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Result carries a value plus how the read went.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Get returns the value and whether it was found. Empty and failed reads
// both report false.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Status == StatusFound
}

// Found reports whether the read produced a value.
func (r Result[T]) Found() bool {
	return r.Status == StatusFound
}

func found[T any](v T) Result[T] {
	return Result[T]{Status: StatusFound, Value: v}
}

func empty[T any]() Result[T] {
	return Result[T]{Status: StatusEmpty}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}
