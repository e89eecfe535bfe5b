// Package registry 记录所有权已经交给调用方的堆缓冲区。
//
// C 侧的释放函数只能拿到指针，拿不到长度；Registry 以起始地址为键保存元素个数，
// 释放时据此还原出原始切片并归还内存。
//
// 元素类型必须不含 Go 指针（数值类型、字节），因为缓冲区可能位于 C 堆。
//
// 锁顺序：调用方如果同时持有引擎锁，必须先取引擎锁再进入 Registry；
// Registry 在持锁期间不会回调任何外部代码。
package registry

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/iabetor/voicevox-capi/internal/logger"
)

// 以下错误作为 panic 的值抛出，表示调用方破坏了所有权约定，无法继续。
var (
	ErrZeroSizedElement = errors.New("registry: 不支持大小为 0 的元素类型")
	ErrAddressInUse     = errors.New("registry: 地址已被登记")
	ErrNotRegistered    = errors.New("registry: 地址未登记")
	ErrAllocFailed      = errors.New("registry: 内存分配失败")
)

// Registry 是以地址为键的缓冲区长度表。
type Registry struct {
	mu      sync.Mutex
	lengths map[uintptr]int
	alloc   Allocator
}

// New 创建使用指定分配器的 Registry。
func New(alloc Allocator) *Registry {
	return &Registry{
		lengths: make(map[uintptr]int),
		alloc:   alloc,
	}
}

// Allocator 返回 Registry 使用的分配器。
func (r *Registry) Allocator() Allocator {
	return r.alloc
}

// Len 返回尚未回收的缓冲区数量。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lengths)
}

// Lookup 返回地址登记的元素个数。
func (r *Registry) Lookup(p unsafe.Pointer) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.lengths[uintptr(p)]
	return n, ok
}

// Register 把 buf 复制到一块恰好 len(buf) 个元素大小的新内存，登记其地址并返回地址和长度。
// 长度为 0 的切片也会得到一块独立的单元素内存，以保证地址唯一。
// 元素大小为 0 或地址重复时 panic。
func Register[T any](r *Registry, buf []T) (*T, int) {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		panic(fmt.Errorf("%w: %T", ErrZeroSizedElement, zero))
	}

	n := len(buf)
	cells := n
	if cells == 0 {
		cells = 1
	}

	p := r.alloc.Alloc(size * uintptr(cells))
	if p == nil {
		panic(fmt.Errorf("%w: %d 字节", ErrAllocFailed, size*uintptr(cells)))
	}
	addr := uintptr(p)
	r.mu.Lock()
	_, occupied := r.lengths[addr]
	if !occupied {
		r.lengths[addr] = n
	}
	r.mu.Unlock()

	if occupied {
		panic(fmt.Errorf("%w: %#x", ErrAddressInUse, addr))
	}
	copy(unsafe.Slice((*T)(p), n), buf)

	logger.Named("voicevox_core_c_api.registry").Debugf("登记缓冲区 %#x (len=%d)", addr, n)
	return (*T)(p), n
}

// Reclaim 注销 p 并把其内容复制回 Go 切片，然后释放原内存。
// p 必须来自同一元素类型的 Register 且尚未回收，否则 panic。
func Reclaim[T any](r *Registry, p *T) []T {
	addr := uintptr(unsafe.Pointer(p))

	r.mu.Lock()
	n, ok := r.lengths[addr]
	if ok {
		delete(r.lengths, addr)
	}
	r.mu.Unlock()

	if !ok {
		panic(fmt.Errorf("%w: %#x", ErrNotRegistered, addr))
	}

	out := make([]T, n)
	copy(out, unsafe.Slice(p, n))
	r.alloc.Free(unsafe.Pointer(p))

	logger.Named("voicevox_core_c_api.registry").Debugf("回收缓冲区 %#x (len=%d)", addr, n)
	return out
}
