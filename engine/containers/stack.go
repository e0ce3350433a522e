package containers

import "sync"

// Stack is a mutex-guarded LIFO. Producers and the consumer only ever
// hold the lock for a push or a pop, so neither side can stall the
// other behind slow work done with the popped value.
type Stack[T any] struct {
	mu   sync.Mutex
	data []T
}

// Create a new Stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Push adds an element on top of the stack.
func (s *Stack[T]) Push(value T) {
	s.mu.Lock()
	s.data = append(s.data, value)
	s.mu.Unlock()
}

// Pop removes and returns the top element. The second return value is
// false when the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if len(s.data) == 0 {
		return zero, false
	}
	value := s.data[len(s.data)-1]
	// clear the slot so the backing array does not pin the value
	s.data[len(s.data)-1] = zero
	s.data = s.data[:len(s.data)-1]
	return value, true
}

// Len returns the number of queued elements.
func (s *Stack[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// IsEmpty checks if the stack is empty.
func (s *Stack[T]) IsEmpty() bool {
	return s.Len() == 0
}
