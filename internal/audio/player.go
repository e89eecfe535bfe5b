package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/iabetor/voicevox-capi/internal/logger"
)

// Player 使用 malgo (miniaudio) 把合成结果播放到默认扬声器。
type Player struct {
	ctx    *malgo.AllocatedContext
	mu     sync.Mutex
	closed bool
}

// NewPlayer 创建播放器。
func NewPlayer() (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("初始化播放上下文失败: %w", err)
	}
	return &Player{ctx: ctx}, nil
}

// PlayWAV 解码并播放 16 位 PCM WAV。
func (p *Player) PlayWAV(ctx context.Context, wav []byte) error {
	w, err := DecodeWAV(wav)
	if err != nil {
		return err
	}
	return p.Play(ctx, w.Samples, w.SampleRate, w.Channels)
}

// Play 播放交错的 float32 样本，阻塞直到播放完成或 ctx 被取消。
func (p *Player) Play(ctx context.Context, samples []float32, sampleRate, channels int) error {
	if len(samples) == 0 {
		return nil
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return fmt.Errorf("播放器已关闭")
	}

	src := newPCMSource(samples)
	device, err := malgo.InitDevice(p.ctx.Context, playbackConfig(sampleRate, channels), malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) { src.fill(out) },
	})
	if err != nil {
		return fmt.Errorf("初始化播放设备失败: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("启动播放设备失败: %w", err)
	}
	defer device.Stop()

	log := logger.Named("vvsay.audio")
	select {
	case <-ctx.Done():
		log.Info("播放被取消")
		return ctx.Err()
	case <-src.done:
		log.Debugf("播放完成 (%d 帧, %d Hz)", len(samples)/channels, sampleRate)
		return nil
	}
}

// playbackConfig 返回 16 位整数输出的设备配置。
func playbackConfig(sampleRate, channels int) malgo.DeviceConfig {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(channels)
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInFrames = 512
	cfg.Periods = 2
	return cfg
}

// pcmSource 在设备回调中按顺序提供 16 位小端 PCM。
type pcmSource struct {
	pcm  []byte
	pos  int
	done chan struct{}
}

func newPCMSource(samples []float32) *pcmSource {
	return &pcmSource{
		pcm:  Int16ToBytes(Float32ToInt16(samples)),
		done: make(chan struct{}, 1),
	}
}

// fill 把下一段数据写入 out，数据不足的部分填充静音。数据用完后通知 done。
func (s *pcmSource) fill(out []byte) {
	n := copy(out, s.pcm[s.pos:])
	s.pos += n
	clear(out[n:])
	if s.pos >= len(s.pcm) {
		select {
		case s.done <- struct{}{}:
		default:
		}
	}
}

// Close 释放所有资源。
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}

// Int16ToBytes 将 int16 样本转换为小端字节切片。
func Int16ToBytes(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
