package service

// Result carries the single outcome of an asynchronous operation:
// either a value or an error, never both, never neither.
type Result[T any] struct {
	Value T
	Err   error
}

// run executes fn on its own goroutine and returns a channel that delivers
// its outcome exactly once. The channel is buffered, so the worker never
// blocks on a caller that has not received yet.
func run[T any](fn func() (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		value, err := fn()
		out <- Result[T]{Value: value, Err: err}
	}()
	return out
}
