// Package pool provides object pooling for go-pparse.
// Used by the help renderer, argv quoting and the logger middleware to reuse
// scratch buffers.
package pool

import (
	"sync"
)

// Pool provides a generic, type-safe object pool
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T) // called before reuse
}

// NewPool creates a new generic pool with the given factory function
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return factory()
			},
		},
	}
}

// NewPoolWithReset creates a pool with a reset function called before reuse
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := NewPool(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	p.pool.Put(obj)
}

// BufferPool pools byte slices in capacity buckets
type BufferPool struct {
	pools   map[int]*Pool[[]byte]
	buckets []int
	minCap  int
	maxCap  int
}

// NewBufferPool creates a new buffer pool with capacity-based buckets
func NewBufferPool() *BufferPool {
	buckets := []int{64, 128, 256, 512, 1024, 2048, 4096}
	bp := &BufferPool{
		pools:   make(map[int]*Pool[[]byte], len(buckets)),
		buckets: buckets,
		minCap:  buckets[0],
		maxCap:  buckets[len(buckets)-1],
	}
	for _, c := range buckets {
		capacity := c
		bp.pools[capacity] = NewPoolWithReset(
			func() *[]byte {
				buf := make([]byte, 0, capacity)
				return &buf
			},
			func(buf *[]byte) {
				*buf = (*buf)[:0]
			},
		)
	}
	return bp
}

// Get retrieves a buffer with at least the requested capacity
func (bp *BufferPool) Get(minCap int) *[]byte {
	if minCap > bp.maxCap {
		buf := make([]byte, 0, minCap)
		return &buf
	}
	return bp.pools[bp.findBucket(minCap)].Get()
}

// Put returns a buffer to the bucket matching its capacity. Buffers that
// grew past the largest bucket are left to the GC.
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}
	capacity := cap(*buf)
	if capacity < bp.minCap || capacity > bp.maxCap {
		return
	}
	// largest bucket not exceeding capacity
	bucket := bp.minCap
	for _, b := range bp.buckets {
		if b <= capacity {
			bucket = b
		}
	}
	bp.pools[bucket].Put(buf)
}

func (bp *BufferPool) findBucket(minCap int) int {
	for _, bucket := range bp.buckets {
		if bucket >= minCap {
			return bucket
		}
	}
	return bp.maxCap
}

// GlobalBufferPool backs GetBuffer and PutBuffer.
var GlobalBufferPool = NewBufferPool()

// GetBuffer retrieves a scratch buffer
func GetBuffer(minCap int) *[]byte {
	return GlobalBufferPool.Get(minCap)
}

// PutBuffer returns a buffer to the global pool
func PutBuffer(buf *[]byte) {
	GlobalBufferPool.Put(buf)
}
