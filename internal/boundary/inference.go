package boundary

import (
	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/registry"
	"github.com/iabetor/voicevox-capi/internal/resultcode"
)

// PredictDuration 预测 length 个音素的长度。
// 成功时结果写入 outLength/outData，调用方必须用 PredictDurationDataFree 释放。
func (a *API) PredictDuration(length uintptr, phonemes *int64, speakerID uint32, outLength *uintptr, outData **float32) resultcode.Code {
	in := arrayArg(phonemes, length)
	return a.result("predict_duration", a.guard.Do(func(c *engine.Core) error {
		out, err := c.PredictDuration(in, speakerID)
		if err != nil {
			return err
		}
		writeArray(a.reg, out, outLength, outData)
		return nil
	}))
}

// PredictDurationDataFree 释放 PredictDuration 的结果。
func (a *API) PredictDurationDataFree(p *float32) {
	registry.Reclaim(a.reg, p)
}

// PredictIntonation 预测 length 拍的音高。六个数组的长度都必须是 length。
// 成功时结果写入 outLength/outData，调用方必须用 PredictIntonationDataFree 释放。
func (a *API) PredictIntonation(length uintptr, vowel, consonant, startAccent, endAccent, startAccentPhrase, endAccentPhrase *int64,
	speakerID uint32, outLength *uintptr, outData **float32) resultcode.Code {
	in := engine.IntonationInput{
		Vowel:             arrayArg(vowel, length),
		Consonant:         arrayArg(consonant, length),
		StartAccent:       arrayArg(startAccent, length),
		EndAccent:         arrayArg(endAccent, length),
		StartAccentPhrase: arrayArg(startAccentPhrase, length),
		EndAccentPhrase:   arrayArg(endAccentPhrase, length),
	}
	return a.result("predict_intonation", a.guard.Do(func(c *engine.Core) error {
		out, err := c.PredictIntonation(int(length), in, speakerID)
		if err != nil {
			return err
		}
		writeArray(a.reg, out, outLength, outData)
		return nil
	}))
}

// PredictIntonationDataFree 释放 PredictIntonation 的结果。
func (a *API) PredictIntonationDataFree(p *float32) {
	registry.Reclaim(a.reg, p)
}

// Decode 解码 length 帧。f0 有 length 个元素，phoneme 有 length*phonemeSize 个元素。
// 成功时结果写入 outLength/outData，调用方必须用 DecodeDataFree 释放。
func (a *API) Decode(length, phonemeSize uintptr, f0, phoneme *float32, speakerID uint32, outLength *uintptr, outData **float32) resultcode.Code {
	f0s := arrayArg(f0, length)
	phonemes := arrayArg(phoneme, length*phonemeSize)
	return a.result("decode", a.guard.Do(func(c *engine.Core) error {
		out, err := c.Decode(int(length), int(phonemeSize), f0s, phonemes, speakerID)
		if err != nil {
			return err
		}
		writeArray(a.reg, out, outLength, outData)
		return nil
	}))
}

// DecodeDataFree 释放 Decode 的结果。
func (a *API) DecodeDataFree(p *float32) {
	registry.Reclaim(a.reg, p)
}
