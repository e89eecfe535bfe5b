package main

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

// cAllocator 在 C 堆上分配内存，返回给调用方的缓冲区不受 Go GC 管理。
type cAllocator struct{}

func (cAllocator) Alloc(size uintptr) unsafe.Pointer {
	return C.malloc(C.size_t(size))
}

func (cAllocator) Free(p unsafe.Pointer) {
	C.free(p)
}
