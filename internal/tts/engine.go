// Package tts 把合成引擎包装成按文本返回样本的 Go 接口。
package tts

import (
	"context"
	"fmt"

	"github.com/iabetor/voicevox-capi/internal/audio"
	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/guard"
	"github.com/iabetor/voicevox-capi/internal/logger"
)

// Engine 定义语音合成后端接口。
type Engine interface {
	// Synthesize 将文本转换为音频。
	// 返回 float32 音频样本、采样率（Hz）和错误。
	Synthesize(ctx context.Context, text string) ([]float32, int, error)
}

// VoicevoxEngine 通过全局引擎锁合成指定话者的语音。
// 引擎尚未初始化时按 InitOptions 初始化。
type VoicevoxEngine struct {
	guard     *guard.Guard
	speakerID uint32
	opts      engine.TtsOptions

	// InitOptions 是按需初始化时使用的参数。
	InitOptions engine.InitializeOptions
}

// NewVoicevoxEngine 创建合成引擎。
func NewVoicevoxEngine(g *guard.Guard, speakerID uint32, opts engine.TtsOptions) *VoicevoxEngine {
	return &VoicevoxEngine{
		guard:       g,
		speakerID:   speakerID,
		opts:        opts,
		InitOptions: engine.DefaultInitializeOptions(),
	}
}

// SynthesizeWAV 合成文本并返回 WAV 数据。ctx 只在取得引擎锁之前检查。
func (e *VoicevoxEngine) SynthesizeWAV(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logger.Named("vvsay.tts")
	log.Debugf("正在合成 %d 个字符，话者=%d", len([]rune(text)), e.speakerID)

	var wav []byte
	err := e.guard.Do(func(c *engine.Core) error {
		if !c.IsInitialized() {
			if err := c.Initialize(e.InitOptions); err != nil {
				return fmt.Errorf("初始化引擎失败: %w", err)
			}
		}
		var err error
		wav, err = c.TTS(text, e.speakerID, e.opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("合成完成: %d 字节", len(wav))
	return wav, nil
}

// Synthesize 合成文本并返回单声道样本和采样率。
func (e *VoicevoxEngine) Synthesize(ctx context.Context, text string) ([]float32, int, error) {
	data, err := e.SynthesizeWAV(ctx, text)
	if err != nil {
		return nil, 0, err
	}
	w, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, 0, fmt.Errorf("解析合成结果失败: %w", err)
	}
	samples := w.Samples
	if w.Channels > 1 {
		samples = audio.Downmix(samples, w.Channels)
	}
	return samples, w.SampleRate, nil
}

var _ Engine = (*VoicevoxEngine)(nil)
