package queue

// Queue represents a basic FIFO queue that can be filled from any goroutine
// and drained by a single consumer.
type Queue[T any] interface {
	Enqueue(item T)
	Dequeue() (T, bool)
	Size() int
	ReadAll() []T
	Clear()
}
