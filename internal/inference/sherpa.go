package inference

import (
	"errors"
	"fmt"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/logger"
)

// ErrStepwiseUnsupported 表示端到端模型不提供时长、音高和解码的分步推理。
var ErrStepwiseUnsupported = errors.New("sherpa-onnx VITS 模型不支持分步推理")

// Sherpa 用 sherpa-onnx 离线 TTS 加载 VITS 模型。
type Sherpa struct{}

// Load 实现 engine.Backend。
func (Sherpa) Load(m engine.Model, opts engine.SessionOptions) (engine.Session, error) {
	mc := m.Sherpa
	if mc == nil {
		return nil, fmt.Errorf("模型 %d 缺少 sherpa-onnx 配置", m.Index)
	}

	config := sherpa.OfflineTtsConfig{}
	config.Model.Vits.Model = mc.Model
	config.Model.Vits.Tokens = mc.Tokens
	config.Model.Vits.Lexicon = mc.Lexicon
	config.Model.Vits.DataDir = mc.DataDir
	config.Model.Vits.DictDir = mc.DictDir
	config.Model.Vits.NoiseScale = 0.667
	config.Model.Vits.NoiseScaleW = 0.8
	config.Model.Vits.LengthScale = 1.0

	// 模型配置的线程数不超过引擎的线程数
	config.Model.NumThreads = mc.NumThreads
	if opts.CPUThreads > 0 && opts.CPUThreads < mc.NumThreads {
		config.Model.NumThreads = opts.CPUThreads
	}
	config.Model.Provider = "cpu"
	if opts.UseGPU {
		config.Model.Provider = "cuda"
	}
	config.MaxNumSentences = 1

	tts := sherpa.NewOfflineTts(&config)
	if tts == nil {
		return nil, fmt.Errorf("创建 sherpa-onnx 离线 TTS 失败，模型路径: %s", mc.Model)
	}

	logger.Named("voicevox_core.sherpa").Infof("已加载 %s (model=%s, sid=%d, threads=%d, provider=%s)",
		mc.Name, mc.Model, mc.SherpaSID, config.Model.NumThreads, config.Model.Provider)

	return &sherpaSession{tts: tts, sid: mc.SherpaSID, speed: mc.Speed}, nil
}

type sherpaSession struct {
	tts   *sherpa.OfflineTts
	sid   int
	speed float32
}

var _ engine.Speaker = (*sherpaSession)(nil)

func (s *sherpaSession) PredictDuration(uint32, []int64) ([]float32, error) {
	return nil, ErrStepwiseUnsupported
}

func (s *sherpaSession) PredictIntonation(uint32, engine.IntonationInput) ([]float32, error) {
	return nil, ErrStepwiseUnsupported
}

func (s *sherpaSession) Decode(uint32, engine.DecodeInput) ([]float32, error) {
	return nil, ErrStepwiseUnsupported
}

// Speak 直接从文本合成。
func (s *sherpaSession) Speak(_ uint32, text string) ([]float32, int, error) {
	if s.tts == nil {
		return nil, 0, fmt.Errorf("sherpa-onnx 会话已关闭")
	}
	audio := s.tts.Generate(text, s.sid, s.speed)
	if audio == nil || len(audio.Samples) == 0 {
		return nil, 0, fmt.Errorf("sherpa-onnx 合成结果为空")
	}
	return audio.Samples, audio.SampleRate, nil
}

func (s *sherpaSession) Close() error {
	if s.tts != nil {
		sherpa.DeleteOfflineTts(s.tts)
		s.tts = nil
	}
	return nil
}
