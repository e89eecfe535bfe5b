// Package boundary 实现 C 接口各入口的参数转换、引擎调用和错误映射。
//
// 本包不依赖 cgo：指针参数以 Go 指针类型传入，原始内存通过 registry.Allocator 分配。
// cmd/libvoicevox_core 只负责把 C 类型转成这里的类型。
//
// 所有带长度的数组参数都信任调用方给出的长度，文本参数必须以 NUL 结尾，
// 输出参数必须指向可写内存。违反这些前提属于未定义行为。
package boundary

import (
	"fmt"
	"sync"
	"unicode/utf8"
	"unsafe"

	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/guard"
	"github.com/iabetor/voicevox-capi/internal/logger"
	"github.com/iabetor/voicevox-capi/internal/registry"
	"github.com/iabetor/voicevox-capi/internal/resultcode"
)

// API 是一组 C 接口入口。通常整个进程只有一个实例。
type API struct {
	guard *guard.Guard
	reg   *registry.Registry
	alloc registry.Allocator

	// version 和 messages 在 New 中生成，之后只读，查询时不加锁也不分配。
	version  *byte
	messages map[resultcode.Code]*byte

	// metas 和 devices 需要引擎，第一次调用时生成。
	metas   lazyString
	devices lazyString
}

// New 创建 API。alloc 同时用于登记的缓冲区和返回给调用方的字符串。
func New(g *guard.Guard, alloc registry.Allocator) *API {
	a := &API{
		guard:    g,
		reg:      registry.New(alloc),
		alloc:    alloc,
		messages: make(map[resultcode.Code]*byte, len(resultcode.Codes())),
	}
	a.version = a.allocString(engine.Version)
	for _, c := range resultcode.Codes() {
		a.messages[c] = a.allocString(resultcode.Message(c))
	}
	return a
}

// lazyString 是第一次读取时生成、之后不再释放的字符串。
// 每个实例各自同步，生成一个时不妨碍读取其他实例。
type lazyString struct {
	once sync.Once
	p    *byte
}

func (l *lazyString) get(build func() *byte) *byte {
	l.once.Do(func() { l.p = build() })
	return l.p
}

// result 记录错误并映射为结果码。
func (a *API) result(op string, err error) resultcode.Code {
	code := resultcode.From(err)
	if err != nil {
		logger.Named("voicevox_core_c_api").Errorf("%s 失败 (%s): %v", op, code, err)
	}
	return code
}

// allocString 把 s 复制到一块以 NUL 结尾的新内存。
func (a *API) allocString(s string) *byte {
	size := uintptr(len(s) + 1)
	p := a.alloc.Alloc(size)
	if p == nil {
		panic(fmt.Errorf("%w: %d 字节", registry.ErrAllocFailed, size))
	}
	buf := unsafe.Slice((*byte)(p), len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0
	return (*byte)(p)
}

// goString 读取以 NUL 结尾的字符串。nil 视为空串。
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// textArg 读取文本参数并校验 UTF-8。
func textArg(p *byte) (string, error) {
	s := goString(p)
	if !utf8.ValidString(s) {
		return "", resultcode.ErrInvalidUTF8Input
	}
	return s, nil
}

// arrayArg 把调用方的数组视为长度为 n 的切片，不复制。
func arrayArg[T any](p *T, n uintptr) []T {
	if n == 0 {
		return []T{}
	}
	return unsafe.Slice(p, n)
}

// writeArray 登记 buf 并把地址和长度写入输出参数。
func writeArray[T any](reg *registry.Registry, buf []T, outLength *uintptr, outData **T) {
	p, n := registry.Register(reg, buf)
	*outLength = uintptr(n)
	*outData = p
}
