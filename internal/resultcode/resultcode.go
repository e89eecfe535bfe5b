// Package resultcode 把错误映射为 C 接口返回的结果码。
package resultcode

import (
	"errors"
	"fmt"

	"github.com/iabetor/voicevox-capi/internal/engine"
)

// Code 是 C 接口的结果码，取值固定。
type Code int32

const (
	OK                           Code = 0
	NotLoadedOpenjtalkDictError  Code = 1
	LoadModelError               Code = 2
	GetSupportedDevicesError     Code = 3
	GpuSupportError              Code = 4
	LoadMetasError               Code = 5
	UninitializedStatusError     Code = 6
	InvalidSpeakerIDError        Code = 7
	InvalidModelIndexError       Code = 8
	InferenceError               Code = 9
	ExtractFullContextLabelError Code = 10
	InvalidUTF8InputError        Code = 11
	ParseKanaError               Code = 12
	InvalidAudioQueryError       Code = 13
	UnknownError                 Code = 255
)

type info struct {
	name    string
	message string
}

var codes = map[Code]info{
	OK:                           {"VOICEVOX_RESULT_OK", "エラーが発生しませんでした"},
	NotLoadedOpenjtalkDictError:  {"VOICEVOX_RESULT_NOT_LOADED_OPENJTALK_DICT_ERROR", "OpenJTalkの辞書が読み込まれていません"},
	LoadModelError:               {"VOICEVOX_RESULT_LOAD_MODEL_ERROR", "modelデータ読み込みに失敗しました"},
	GetSupportedDevicesError:     {"VOICEVOX_RESULT_GET_SUPPORTED_DEVICES_ERROR", "サポートされているデバイス情報取得に失敗しました"},
	GpuSupportError:              {"VOICEVOX_RESULT_GPU_SUPPORT_ERROR", "GPU機能をサポートすることができません"},
	LoadMetasError:               {"VOICEVOX_RESULT_LOAD_METAS_ERROR", "メタデータ読み込みに失敗しました"},
	UninitializedStatusError:     {"VOICEVOX_RESULT_UNINITIALIZED_STATUS_ERROR", "ステータスが初期化されていません"},
	InvalidSpeakerIDError:        {"VOICEVOX_RESULT_INVALID_SPEAKER_ID_ERROR", "無効なspeaker_idです"},
	InvalidModelIndexError:       {"VOICEVOX_RESULT_INVALID_MODEL_INDEX_ERROR", "無効なmodel_indexです"},
	InferenceError:               {"VOICEVOX_RESULT_INFERENCE_ERROR", "推論に失敗しました"},
	ExtractFullContextLabelError: {"VOICEVOX_RESULT_EXTRACT_FULL_CONTEXT_LABEL_ERROR", "入力テキストからのフルコンテキストラベル抽出に失敗しました"},
	InvalidUTF8InputError:        {"VOICEVOX_RESULT_INVALID_UTF8_INPUT_ERROR", "入力テキストが無効なUTF-8データでした"},
	ParseKanaError:               {"VOICEVOX_RESULT_PARSE_KANA_ERROR", "入力テキストをAquesTalkライクな読み仮名としてパースすることに失敗しました"},
	InvalidAudioQueryError:       {"VOICEVOX_RESULT_INVALID_AUDIO_QUERY_ERROR", "無効なaudio_queryです"},
	UnknownError:                 {"VOICEVOX_RESULT_UNKNOWN_ERROR", "不明なエラーが発生しました"},
}

// Codes 按数值顺序返回所有结果码。
func Codes() []Code {
	return []Code{
		OK, NotLoadedOpenjtalkDictError, LoadModelError, GetSupportedDevicesError, GpuSupportError,
		LoadMetasError, UninitializedStatusError, InvalidSpeakerIDError, InvalidModelIndexError,
		InferenceError, ExtractFullContextLabelError, InvalidUTF8InputError, ParseKanaError,
		InvalidAudioQueryError, UnknownError,
	}
}

// String 返回 C 头文件中的常量名。
func (c Code) String() string {
	if i, ok := codes[c]; ok {
		return i.name
	}
	return fmt.Sprintf("VOICEVOX_RESULT(%d)", int32(c))
}

// Message 返回结果码的说明。未知数值返回未知错误的说明。
func Message(c Code) string {
	if i, ok := codes[c]; ok {
		return i.message
	}
	return codes[UnknownError].message
}

// 边界层自己产生的错误。
var (
	// ErrInvalidUTF8Input 表示文本参数不是合法的 UTF-8。
	ErrInvalidUTF8Input = errors.New("入力テキストが無効なUTF-8データでした")
)

// AudioQueryError 表示 AudioQuery JSON 无法解析或校验失败。
type AudioQueryError struct {
	Err error
}

func (e *AudioQueryError) Error() string {
	return "無効なaudio_queryです: " + e.Err.Error()
}

func (e *AudioQueryError) Unwrap() error {
	return e.Err
}

var kindCodes = map[engine.Kind]Code{
	engine.KindNotLoadedOpenjtalkDict:  NotLoadedOpenjtalkDictError,
	engine.KindLoadModel:               LoadModelError,
	engine.KindGetSupportedDevices:     GetSupportedDevicesError,
	engine.KindGpuSupport:              GpuSupportError,
	engine.KindLoadMetas:               LoadMetasError,
	engine.KindUninitializedStatus:     UninitializedStatusError,
	engine.KindInvalidSpeakerID:        InvalidSpeakerIDError,
	engine.KindInvalidModelIndex:       InvalidModelIndexError,
	engine.KindInference:               InferenceError,
	engine.KindExtractFullContextLabel: ExtractFullContextLabelError,
	engine.KindParseKana:               ParseKanaError,
}

// From 把错误映射为结果码。nil 为 OK，无法识别的错误为 UnknownError。
func From(err error) Code {
	if err == nil {
		return OK
	}
	if errors.Is(err, ErrInvalidUTF8Input) {
		return InvalidUTF8InputError
	}
	var aq *AudioQueryError
	if errors.As(err, &aq) {
		return InvalidAudioQueryError
	}
	var ee *engine.Error
	if errors.As(err, &ee) {
		if c, ok := kindCodes[ee.Kind]; ok {
			return c
		}
	}
	return UnknownError
}
