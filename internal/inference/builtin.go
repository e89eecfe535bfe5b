package inference

import (
	"fmt"
	"math"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
	"github.com/iabetor/voicevox-capi/internal/engine"
)

// Builtin 是不依赖模型文件的确定性后端。
// 时长来自音素类别表，音高由重音特征生成，解码器用谐波叠加和噪声合成。
type Builtin struct{}

// Load 实现 engine.Backend。
func (Builtin) Load(m engine.Model, _ engine.SessionOptions) (engine.Session, error) {
	return &builtinSession{voice: m.Index}, nil
}

type builtinSession struct {
	voice int
}

// 共振峰 (F1, F2)，单位 Hz。
var formants = map[string][2]float64{
	"a": {800, 1200},
	"i": {300, 2300},
	"u": {350, 1300},
	"e": {500, 1900},
	"o": {500, 900},
	"N": {250, 1000},
}

var defaultFormant = [2]float64{400, 1500}

func phonemeDuration(p string) float32 {
	switch p {
	case "pau":
		return 0.2
	case "cl":
		return 0.07
	case "N":
		return 0.09
	case "a", "i", "u", "e", "o":
		return 0.11
	case "A", "I", "U", "E", "O":
		return 0.06
	case "s", "sh", "h", "hy", "f", "ts", "ch", "z", "j":
		return 0.08
	}
	return 0.055
}

// styleFactor 让同一模型的奇数风格语速稍慢、音高稍高。
func styleFactor(styleID uint32) float32 {
	if styleID%2 == 1 {
		return 1.1
	}
	return 1
}

func (s *builtinSession) PredictDuration(styleID uint32, phonemes []int64) ([]float32, error) {
	out := make([]float32, len(phonemes))
	for i, id := range phonemes {
		if id < 0 || id >= int64(audioquery.PhonemeSize) {
			return nil, fmt.Errorf("音素 ID %d 超出范围", id)
		}
		out[i] = phonemeDuration(audioquery.Phonemes[id]) * styleFactor(styleID)
	}
	return out, nil
}

func (s *builtinSession) PredictIntonation(styleID uint32, in engine.IntonationInput) ([]float32, error) {
	base := 5.4 + 0.25*float32(s.voice)
	if styleID%2 == 1 {
		base += 0.05
	}
	out := make([]float32, in.Len())

	var (
		pos  int
		high bool
	)
	for i, v := range in.Vowel {
		if v < 0 || v >= int64(audioquery.PhonemeSize) {
			return nil, fmt.Errorf("母音 ID %d 超出范围", v)
		}
		if in.StartAccentPhrase[i] == 1 {
			pos, high = 0, false
		}
		if in.StartAccent[i] == 1 {
			high = true
		}
		if !audioquery.IsUnvoiced(audioquery.Phonemes[v]) {
			pitch := base - 0.015*float32(pos)
			if high {
				pitch += 0.3
			}
			out[i] = pitch
		}
		if in.EndAccent[i] == 1 {
			high = false
		}
		pos++
	}
	return out, nil
}

func (s *builtinSession) Decode(styleID uint32, in engine.DecodeInput) ([]float32, error) {
	if in.PhonemeSize != audioquery.PhonemeSize {
		return nil, fmt.Errorf("phoneme_size 必须为 %d，实际为 %d", audioquery.PhonemeSize, in.PhonemeSize)
	}

	const sr = float64(engine.DecoderSampleRate)
	out := make([]float32, in.Length*engine.HopSize)
	whisper := styleID%2 == 1 && s.voice == 0
	noise := newNoise(uint32(styleID) + 0x2545F491)
	var phase float64

	for t := 0; t < in.Length; t++ {
		row := in.Phoneme[t*in.PhonemeSize : (t+1)*in.PhonemeSize]
		p := audioquery.Phonemes[argmax(row)]
		frame := out[t*engine.HopSize : (t+1)*engine.HopSize]

		switch {
		case p == "pau" || p == "cl":
			// 静音
		case in.F0[t] > 0:
			freq := math.Exp(float64(in.F0[t]))
			f := defaultFormant
			if v, ok := formants[p]; ok {
				f = v
			}
			amps, norm := harmonics(freq, f)
			for i := range frame {
				var sample float64
				for k, a := range amps {
					sample += a * math.Sin(float64(k+1)*phase)
				}
				sample = 0.4 * sample / norm
				if whisper {
					sample = 0.3*sample + 0.08*noise.next()
				}
				frame[i] = float32(sample)
				phase += 2 * math.Pi * freq / sr
				if phase > 2*math.Pi {
					phase -= 2 * math.Pi
				}
			}
		default:
			amp := 0.05
			if audioquery.IsVowel(p) {
				amp = 0.02
			}
			for i := range frame {
				frame[i] = float32(amp * noise.next())
			}
		}
	}
	return out, nil
}

func (s *builtinSession) Close() error {
	return nil
}

// harmonics 返回 4 kHz 以下各次谐波的幅度及其总和。
func harmonics(freq float64, f [2]float64) ([]float64, float64) {
	var (
		amps []float64
		sum  float64
	)
	for k := 1; float64(k)*freq < 4000; k++ {
		h := float64(k) * freq
		a := gauss(h, f[0], 150) + 0.6*gauss(h, f[1], 200) + 0.1/float64(k)
		amps = append(amps, a)
		sum += a
	}
	if sum == 0 {
		sum = 1
	}
	return amps, sum
}

func gauss(x, mu, sigma float64) float64 {
	d := (x - mu) / sigma
	return math.Exp(-0.5 * d * d)
}

func argmax(row []float32) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}

// noise 是线性同余伪随机数发生器，保证输出可复现。
type noise struct {
	state uint32
}

func newNoise(seed uint32) *noise {
	return &noise{state: seed}
}

// next 返回 [-1, 1) 的伪随机数。
func (n *noise) next() float64 {
	n.state = n.state*1664525 + 1013904223
	return float64(n.state)/float64(1<<31) - 1
}
