// libvoicevox_core 把合成引擎导出为 C 共享库。
//
// 构建：
//
//	go build -buildmode=c-shared -o libvoicevox_core.so ./cmd/libvoicevox_core
//
// 生成的 libvoicevox_core.h 包含所有 voicevox_* 函数原型，类型定义见 voicevox_core.h。
// 内部发生的 panic（重复释放、释放未登记的指针等）会终止进程。
package main

import (
	"github.com/iabetor/voicevox-capi/internal/boundary"
	"github.com/iabetor/voicevox-capi/internal/guard"
)

// api 是进程内唯一的入口实例。引擎在第一次调用时构造。
var api = boundary.New(guard.Default(), cAllocator{})

func main() {}
