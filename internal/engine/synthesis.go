package engine

import (
	"fmt"
	"math"

	"github.com/iabetor/voicevox-capi/internal/audio"
	"github.com/iabetor/voicevox-capi/internal/audioquery"
)

// 疑问句句尾上扬的参数。
const (
	upspeakLength   = 0.15
	upspeakPitchAdd = 0.3
	upspeakMaxPitch = 6.5
)

// SynthesisOptions 是 Synthesis 的参数。
type SynthesisOptions struct {
	EnableInterrogativeUpspeak bool
}

// DefaultSynthesisOptions 返回默认参数。
func DefaultSynthesisOptions() SynthesisOptions {
	return SynthesisOptions{EnableInterrogativeUpspeak: true}
}

// TtsOptions 是 TTS 的参数。
type TtsOptions struct {
	Kana                       bool
	EnableInterrogativeUpspeak bool
}

// DefaultTtsOptions 返回默认参数。
func DefaultTtsOptions() TtsOptions {
	return TtsOptions{EnableInterrogativeUpspeak: true}
}

// Synthesis 按合成参数生成 16 位 PCM WAV。
func (c *Core) Synthesis(q *audioquery.AudioQuery, speakerID uint32, opts SynthesisOptions) ([]byte, error) {
	wave, err := c.synthesisWave(q, speakerID, opts.EnableInterrogativeUpspeak)
	if err != nil {
		return nil, err
	}

	audio.Scale(wave, q.VolumeScale)
	if q.OutputSamplingRate != DecoderSampleRate {
		wave, err = audio.Resample(wave, DecoderSampleRate, q.OutputSamplingRate)
		if err != nil {
			return nil, newError(KindInference, err)
		}
	}
	channels := 1
	if q.OutputStereo {
		channels = 2
		wave = audio.Interleave(wave, channels)
	}
	return audio.EncodeWAV(wave, q.OutputSamplingRate, channels), nil
}

// TTS 从文本直接合成 WAV。能直接读文本的模型（sherpa-onnx）跳过 AudioQuery。
func (c *Core) TTS(s string, speakerID uint32, opts TtsOptions) ([]byte, error) {
	sess, err := c.session(speakerID)
	if err != nil {
		return nil, err
	}
	if sp, ok := sess.(Speaker); ok {
		samples, rate, err := sp.Speak(speakerID, s)
		if err != nil {
			return nil, newError(KindInference, err)
		}
		return audio.EncodeWAV(samples, rate, 1), nil
	}

	q, err := c.AudioQuery(s, speakerID, AudioQueryOptions{Kana: opts.Kana})
	if err != nil {
		return nil, err
	}
	return c.Synthesis(q, speakerID, SynthesisOptions{EnableInterrogativeUpspeak: opts.EnableInterrogativeUpspeak})
}

// segment 是一个音素及其长度和所在 mora 的音高。
type segment struct {
	phoneme string
	length  float64
	pitch   float32
}

// synthesisWave 把合成参数展开为逐帧的 F0 和音素并解码。
func (c *Core) synthesisWave(q *audioquery.AudioQuery, speakerID uint32, upspeak bool) ([]float32, error) {
	if q.SpeedScale <= 0 {
		return nil, newError(KindInference, fmt.Errorf("speedScale 必须大于 0"))
	}

	phrases := audioquery.Clone(q.AccentPhrases)
	if upspeak {
		applyInterrogativeUpspeak(phrases)
	}
	moras := flattenMoras(phrases)

	pitchScale := float32(math.Pow(2, float64(q.PitchScale)))
	var voicedSum float64
	var voicedCount int
	for _, m := range moras {
		if m.Pitch > 0 {
			voicedSum += float64(m.Pitch * pitchScale)
			voicedCount++
		}
	}
	var mean float32
	if voicedCount > 0 {
		mean = float32(voicedSum / float64(voicedCount))
	}

	segments := []segment{{audioquery.Pau, float64(q.PrePhonemeLength), 0}}
	for _, m := range moras {
		pitch := m.Pitch * pitchScale
		if pitch > 0 {
			pitch = (pitch-mean)*q.IntonationScale + mean
		} else {
			pitch = 0
		}
		if m.Consonant != nil {
			var l float32
			if m.ConsonantLength != nil {
				l = *m.ConsonantLength
			}
			segments = append(segments, segment{*m.Consonant, float64(l), pitch})
		}
		segments = append(segments, segment{m.Vowel, float64(m.VowelLength), pitch})
	}
	segments = append(segments, segment{audioquery.Pau, float64(q.PostPhonemeLength), 0})

	var f0, phoneme []float32
	frames := 0
	for _, seg := range segments {
		n := int(math.Round(seg.length / float64(q.SpeedScale) * FrameRate))
		if n <= 0 {
			continue
		}
		id, ok := audioquery.PhonemeID(seg.phoneme)
		if !ok {
			return nil, newError(KindInference, fmt.Errorf("未知音素 %q", seg.phoneme))
		}
		for i := 0; i < n; i++ {
			f0 = append(f0, seg.pitch)
			row := make([]float32, audioquery.PhonemeSize)
			row[id] = 1
			phoneme = append(phoneme, row...)
		}
		frames += n
	}

	return c.Decode(frames, audioquery.PhonemeSize, f0, phoneme, speakerID)
}

// applyInterrogativeUpspeak 在疑问短语末尾追加一拍，重复最后的母音并抬高音高。
// 最后一拍无声时不处理。
func applyInterrogativeUpspeak(phrases []audioquery.AccentPhrase) {
	for i := range phrases {
		ap := &phrases[i]
		if !ap.IsInterrogative || len(ap.Moras) == 0 {
			continue
		}
		last := ap.Moras[len(ap.Moras)-1]
		if last.Pitch == 0 {
			continue
		}
		ap.Moras = append(ap.Moras, audioquery.Mora{
			Text:        vowelText(last.Vowel),
			Vowel:       last.Vowel,
			VowelLength: upspeakLength,
			Pitch:       float32(math.Min(float64(last.Pitch+upspeakPitchAdd), upspeakMaxPitch)),
		})
	}
}

func vowelText(vowel string) string {
	switch vowel {
	case "a":
		return "ア"
	case "i":
		return "イ"
	case "u":
		return "ウ"
	case "e":
		return "エ"
	case "o":
		return "オ"
	case "N":
		return "ン"
	}
	return "ー"
}
