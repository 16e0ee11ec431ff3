// Package ring provides a lock-free single-producer/single-consumer ring
// buffer, used to hand Command values from the ingress tier's connection
// goroutines to the engine's single command-processing loop without a mutex
// on the hot path.
package ring

import (
	"context"
	"runtime"
	"sync/atomic"
)

const cacheLineSize = 64

// RingBuffer is a fixed-capacity circular buffer safe for exactly one
// producer goroutine and one consumer goroutine. Capacity must be a power of
// two; New panics otherwise so the index mask stays valid.
type RingBuffer[T any] struct {
	buffer []T
	mask   uint64

	_pad1    [cacheLineSize - 8]byte
	writePos uint64
	_pad2    [cacheLineSize - 8]byte
	readPos  uint64
	_pad3    [cacheLineSize - 8]byte
}

// New allocates a RingBuffer of the given capacity, which must be a power of
// two.
func New[T any](capacity uint64) *RingBuffer[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of two")
	}
	return &RingBuffer[T]{
		buffer: make([]T, capacity),
		mask:   capacity - 1,
	}
}

// TryPush attempts to enqueue v without blocking. It returns false if the
// buffer is full.
func (r *RingBuffer[T]) TryPush(v T) bool {
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)
	if write-read >= uint64(len(r.buffer)) {
		return false
	}
	r.buffer[write&r.mask] = v
	atomic.StoreUint64(&r.writePos, write+1)
	return true
}

// Push enqueues v, spinning until space is available or ctx is done. It
// reports false if ctx ended the wait first.
func (r *RingBuffer[T]) Push(ctx context.Context, v T) bool {
	for {
		if r.TryPush(v) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		default:
			runtime.Gosched()
		}
	}
}

// TryPop attempts to dequeue one element without blocking. ok is false if the
// buffer is empty.
func (r *RingBuffer[T]) TryPop() (v T, ok bool) {
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)
	if write == read {
		return v, false
	}
	v = r.buffer[read&r.mask]
	atomic.StoreUint64(&r.readPos, read+1)
	return v, true
}

// Pop dequeues one element, spinning until one is available or ctx is done.
func (r *RingBuffer[T]) Pop(ctx context.Context) (v T, ok bool) {
	for {
		if v, ok = r.TryPop(); ok {
			return v, true
		}
		select {
		case <-ctx.Done():
			return v, false
		default:
			runtime.Gosched()
		}
	}
}

// Read drains up to len(out) elements into out without blocking, returning
// the count actually read.
func (r *RingBuffer[T]) Read(out []T) uint32 {
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)
	available := write - read
	if available == 0 {
		return 0
	}
	count := available
	if uint64(len(out)) < count {
		count = uint64(len(out))
	}
	for i := uint64(0); i < count; i++ {
		out[i] = r.buffer[(read+i)&r.mask]
	}
	atomic.StoreUint64(&r.readPos, read+count)
	return uint32(count)
}
