package pool

import (
	"sync"
	"testing"
)

func TestPool_WithReset(t *testing.T) {
	resetCalled := false
	p := NewPoolWithReset(
		func() *[]int {
			slice := make([]int, 0, 10)
			return &slice
		},
		func(slice *[]int) {
			*slice = (*slice)[:0]
			resetCalled = true
		},
	)

	slice1 := p.Get()
	*slice1 = append(*slice1, 1, 2, 3)
	p.Put(slice1)

	slice2 := p.Get()
	if !resetCalled {
		t.Error("Reset function was not called")
	}
	if len(*slice2) != 0 {
		t.Errorf("Expected empty slice after reset, got length %d", len(*slice2))
	}
}

func TestPool_Concurrent(t *testing.T) {
	p := NewPoolWithReset(
		func() *[]int {
			slice := make([]int, 0, 100)
			return &slice
		},
		func(slice *[]int) { *slice = (*slice)[:0] },
	)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				obj := p.Get()
				if len(*obj) != 0 {
					t.Errorf("Expected reset object, got length %d", len(*obj))
					return
				}
				*obj = append(*obj, id*1000+j)
				p.Put(obj)
			}
		}(i)
	}
	wg.Wait()
}

func TestBufferPool_Basic(t *testing.T) {
	bp := NewBufferPool()

	for _, size := range []int{1, 64, 100, 256, 512, 4096} {
		buf := bp.Get(size)
		if cap(*buf) < size {
			t.Errorf("Expected capacity >= %d, got %d", size, cap(*buf))
		}
		if len(*buf) != 0 {
			t.Errorf("Expected empty buffer, got length %d", len(*buf))
		}
		*buf = append(*buf, make([]byte, size/2)...)
		bp.Put(buf)
	}
}

func TestBufferPool_GrownBufferKeepsCapacityContract(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get(64)
	*buf = append(*buf, make([]byte, 200)...) // grows past the 64 bucket
	bp.Put(buf)

	for i := 0; i < 10; i++ {
		got := bp.Get(256)
		if cap(*got) < 256 {
			t.Fatalf("Expected capacity >= 256, got %d", cap(*got))
		}
	}
}

func TestBufferPool_OutOfRange(t *testing.T) {
	bp := NewBufferPool()

	big := bp.Get(10000)
	if cap(*big) < 10000 {
		t.Errorf("Expected capacity >= 10000, got %d", cap(*big))
	}
	bp.Put(big)
	bp.Put(nil)
}

func TestGlobalBuffer(t *testing.T) {
	buf := GetBuffer(128)
	*buf = append(*buf, "usage"...)
	PutBuffer(buf)

	again := GetBuffer(128)
	if len(*again) != 0 {
		t.Errorf("Expected empty buffer, got %q", *again)
	}
	PutBuffer(again)
}
