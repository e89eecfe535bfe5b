package registry

import (
	"fmt"
	"sync"
	"unsafe"
)

// Allocator 提供脱离 Go 所有权管理的原始内存。
// 共享库中使用 C 的 malloc/free；纯 Go 调用方和测试使用 HeapAllocator。
type Allocator interface {
	// Alloc 分配 size 字节，返回 8 字节对齐的地址；失败返回 nil。
	Alloc(size uintptr) unsafe.Pointer
	// Free 释放 Alloc 返回的地址。nil 为空操作。
	Free(p unsafe.Pointer)
}

// HeapAllocator 在 Go 堆上分配内存，并在 Free 之前一直持有引用防止被回收。
type HeapAllocator struct {
	mu   sync.Mutex
	live map[uintptr][]uint64
}

// NewHeapAllocator 创建 Go 堆分配器。
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{live: make(map[uintptr][]uint64)}
}

// Alloc 分配至少 size 字节（至少 8 字节）的清零内存。
func (h *HeapAllocator) Alloc(size uintptr) unsafe.Pointer {
	words := (size + 7) / 8
	if words == 0 {
		words = 1
	}
	buf := make([]uint64, words)
	p := unsafe.Pointer(&buf[0])

	h.mu.Lock()
	h.live[uintptr(p)] = buf
	h.mu.Unlock()
	return p
}

// Free 释放 p。释放未分配的地址会 panic。
func (h *HeapAllocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.live[uintptr(p)]
	delete(h.live, uintptr(p))
	h.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("registry: 释放了未分配的地址 %#x", uintptr(p)))
	}
}

// Live 返回尚未释放的分配数量。
func (h *HeapAllocator) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
