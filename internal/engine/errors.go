package engine

import (
	"fmt"
)

// Kind 是引擎错误的类别。
type Kind int

const (
	KindNotLoadedOpenjtalkDict Kind = iota + 1
	KindLoadModel
	KindGetSupportedDevices
	KindGpuSupport
	KindLoadMetas
	KindUninitializedStatus
	KindInvalidSpeakerID
	KindInvalidModelIndex
	KindInference
	KindExtractFullContextLabel
	KindParseKana
)

var kindNames = map[Kind]string{
	KindNotLoadedOpenjtalkDict:  "词典未加载",
	KindLoadModel:               "模型加载失败",
	KindGetSupportedDevices:     "获取可用设备失败",
	KindGpuSupport:              "不支持 GPU",
	KindLoadMetas:               "话者元数据加载失败",
	KindUninitializedStatus:     "引擎未初始化",
	KindInvalidSpeakerID:        "无效的话者 ID",
	KindInvalidModelIndex:       "无效的模型序号",
	KindInference:               "推理失败",
	KindExtractFullContextLabel: "文本分析失败",
	KindParseKana:               "假名解析失败",
}

// Kinds 返回所有错误类别。
func Kinds() []Kind {
	return []Kind{
		KindNotLoadedOpenjtalkDict, KindLoadModel, KindGetSupportedDevices, KindGpuSupport,
		KindLoadMetas, KindUninitializedStatus, KindInvalidSpeakerID, KindInvalidModelIndex,
		KindInference, KindExtractFullContextLabel, KindParseKana,
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error 是引擎返回的错误。errors.Is 按 Kind 比较。
type Error struct {
	Kind      Kind
	SpeakerID *uint32
	Model     int // 仅 KindLoadModel / KindInvalidModelIndex 有效
	Path      string
	Err       error
}

// 用于 errors.Is 的哨兵值。
var (
	ErrNotLoadedOpenjtalkDict  = &Error{Kind: KindNotLoadedOpenjtalkDict}
	ErrLoadModel               = &Error{Kind: KindLoadModel}
	ErrGetSupportedDevices     = &Error{Kind: KindGetSupportedDevices}
	ErrGpuSupport              = &Error{Kind: KindGpuSupport}
	ErrLoadMetas               = &Error{Kind: KindLoadMetas}
	ErrUninitializedStatus     = &Error{Kind: KindUninitializedStatus}
	ErrInvalidSpeakerID        = &Error{Kind: KindInvalidSpeakerID}
	ErrInvalidModelIndex       = &Error{Kind: KindInvalidModelIndex}
	ErrInference               = &Error{Kind: KindInference}
	ErrExtractFullContextLabel = &Error{Kind: KindExtractFullContextLabel}
	ErrParseKana               = &Error{Kind: KindParseKana}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.SpeakerID != nil {
		msg += fmt.Sprintf(" (speaker_id=%d)", *e.SpeakerID)
	}
	if e.Kind == KindLoadModel || e.Kind == KindInvalidModelIndex {
		msg += fmt.Sprintf(" (model=%d)", e.Model)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrXxx) 按类别匹配。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func speakerError(kind Kind, speakerID uint32) *Error {
	return &Error{Kind: kind, SpeakerID: &speakerID}
}
