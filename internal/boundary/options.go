package boundary

import (
	"github.com/iabetor/voicevox-capi/internal/engine"
)

// 加速模式，数值与头文件中的 VoicevoxAccelerationMode 一致。
const (
	AccelerationModeAuto int32 = int32(engine.AccelerationAuto)
	AccelerationModeCPU  int32 = int32(engine.AccelerationCPU)
	AccelerationModeGPU  int32 = int32(engine.AccelerationGPU)
)

// InitializeOptions 对应 VoicevoxInitializeOptions。
type InitializeOptions struct {
	AccelerationMode int32
	CPUNumThreads    uint16
	LoadAllModels    bool
	// OpenJTalkDictDir 为 NUL 结尾的路径，可以为 nil。只在调用期间读取。
	OpenJTalkDictDir *byte
}

// AudioQueryOptions 对应 VoicevoxAudioQueryOptions。
type AudioQueryOptions struct {
	Kana bool
}

// SynthesisOptions 对应 VoicevoxSynthesisOptions。
type SynthesisOptions struct {
	EnableInterrogativeUpspeak bool
}

// TtsOptions 对应 VoicevoxTtsOptions。
type TtsOptions struct {
	Kana                       bool
	EnableInterrogativeUpspeak bool
}

// DefaultInitializeOptions 返回默认初始化参数。
func DefaultInitializeOptions() InitializeOptions {
	d := engine.DefaultInitializeOptions()
	return InitializeOptions{
		AccelerationMode: int32(d.AccelerationMode),
		CPUNumThreads:    d.CPUNumThreads,
		LoadAllModels:    d.LoadAllModels,
	}
}

// DefaultAudioQueryOptions 返回默认 AudioQuery 参数。
func DefaultAudioQueryOptions() AudioQueryOptions {
	return AudioQueryOptions{Kana: engine.DefaultAudioQueryOptions().Kana}
}

// DefaultSynthesisOptions 返回默认合成参数。
func DefaultSynthesisOptions() SynthesisOptions {
	return SynthesisOptions{EnableInterrogativeUpspeak: engine.DefaultSynthesisOptions().EnableInterrogativeUpspeak}
}

// DefaultTtsOptions 返回默认 TTS 参数。
func DefaultTtsOptions() TtsOptions {
	d := engine.DefaultTtsOptions()
	return TtsOptions{Kana: d.Kana, EnableInterrogativeUpspeak: d.EnableInterrogativeUpspeak}
}

func (o InitializeOptions) engineOptions() (engine.InitializeOptions, error) {
	dir, err := textArg(o.OpenJTalkDictDir)
	if err != nil {
		return engine.InitializeOptions{}, err
	}
	return engine.InitializeOptions{
		AccelerationMode: engine.AccelerationMode(o.AccelerationMode),
		CPUNumThreads:    o.CPUNumThreads,
		LoadAllModels:    o.LoadAllModels,
		DictDir:          dir,
	}, nil
}

func (o AudioQueryOptions) engineOptions() engine.AudioQueryOptions {
	return engine.AudioQueryOptions{Kana: o.Kana}
}

func (o SynthesisOptions) engineOptions() engine.SynthesisOptions {
	return engine.SynthesisOptions{EnableInterrogativeUpspeak: o.EnableInterrogativeUpspeak}
}

func (o TtsOptions) engineOptions() engine.TtsOptions {
	return engine.TtsOptions{Kana: o.Kana, EnableInterrogativeUpspeak: o.EnableInterrogativeUpspeak}
}
