package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotWAV 表示数据不是 16 位 PCM WAV。
var ErrNotWAV = errors.New("不是 16 位 PCM WAV 数据")

const wavHeaderSize = 44

// EncodeWAV 把交错的 float32 样本编码为 16 位 PCM WAV。
func EncodeWAV(samples []float32, sampleRate, channels int) []byte {
	pcm := Float32ToInt16(samples)
	dataSize := len(pcm) * 2
	blockAlign := channels * 2

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(buf, binary.LittleEndian, pcm)
	return buf.Bytes()
}

// WAV 是解码后的 WAV 数据。
type WAV struct {
	Samples    []float32 // 交错样本
	SampleRate int
	Channels   int
}

// Duration 返回时长（秒）。
func (w *WAV) Duration() float64 {
	if w.SampleRate == 0 || w.Channels == 0 {
		return 0
	}
	return float64(len(w.Samples)/w.Channels) / float64(w.SampleRate)
}

// DecodeWAV 解析 16 位 PCM WAV，跳过未知的块。
func DecodeWAV(data []byte) (*WAV, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		w      WAV
		hasFmt bool
	)
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			return nil, fmt.Errorf("%w: 块 %q 越界", ErrNotWAV, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt 块过短", ErrNotWAV)
			}
			format := binary.LittleEndian.Uint16(data[body:])
			bits := binary.LittleEndian.Uint16(data[body+14:])
			if format != 1 || bits != 16 {
				return nil, fmt.Errorf("%w: format=%d bits=%d", ErrNotWAV, format, bits)
			}
			w.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			w.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			hasFmt = true
		case "data":
			if !hasFmt {
				return nil, fmt.Errorf("%w: data 块位于 fmt 块之前", ErrNotWAV)
			}
			pcm := make([]int16, size/2)
			for i := range pcm {
				pcm[i] = int16(binary.LittleEndian.Uint16(data[body+2*i:]))
			}
			w.Samples = Int16ToFloat32(pcm)
			return &w, nil
		}

		// 块按偶数字节对齐
		pos = body + size + size%2
	}
	return nil, fmt.Errorf("%w: 缺少 data 块", ErrNotWAV)
}
