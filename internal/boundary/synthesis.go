package boundary

import (
	"unsafe"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/registry"
	"github.com/iabetor/voicevox-capi/internal/resultcode"
)

// AudioQuery 生成文本的 AudioQuery JSON。
// 成功时 JSON 写入 out，调用方必须用 AudioQueryJSONFree 释放。
func (a *API) AudioQuery(text *byte, speakerID uint32, opts AudioQueryOptions, out **byte) resultcode.Code {
	s, err := textArg(text)
	if err != nil {
		return a.result("audio_query", err)
	}

	var data []byte
	err = a.guard.Do(func(c *engine.Core) error {
		q, err := c.AudioQuery(s, speakerID, opts.engineOptions())
		if err != nil {
			return err
		}
		data, err = q.Marshal()
		return err
	})
	if err != nil {
		return a.result("audio_query", err)
	}
	*out = a.allocString(string(data))
	return resultcode.OK
}

// AudioQueryJSONFree 释放 AudioQuery 返回的 JSON。不经过登记表。
func (a *API) AudioQueryJSONFree(p *byte) {
	a.alloc.Free(unsafe.Pointer(p))
}

// Synthesis 按 AudioQuery JSON 合成 WAV。
// 成功时结果写入 outLength/outWav，调用方必须用 WavFree 释放。
func (a *API) Synthesis(queryJSON *byte, speakerID uint32, opts SynthesisOptions, outLength *uintptr, outWav **uint8) resultcode.Code {
	s, err := textArg(queryJSON)
	if err != nil {
		return a.result("synthesis", err)
	}
	q, err := audioquery.Parse([]byte(s))
	if err != nil {
		return a.result("synthesis", &resultcode.AudioQueryError{Err: err})
	}

	return a.result("synthesis", a.guard.Do(func(c *engine.Core) error {
		wav, err := c.Synthesis(q, speakerID, opts.engineOptions())
		if err != nil {
			return err
		}
		writeArray(a.reg, wav, outLength, outWav)
		return nil
	}))
}

// TTS 从文本合成 WAV。
// 成功时结果写入 outLength/outWav，调用方必须用 WavFree 释放。
func (a *API) TTS(text *byte, speakerID uint32, opts TtsOptions, outLength *uintptr, outWav **uint8) resultcode.Code {
	s, err := textArg(text)
	if err != nil {
		return a.result("tts", err)
	}
	return a.result("tts", a.guard.Do(func(c *engine.Core) error {
		wav, err := c.TTS(s, speakerID, opts.engineOptions())
		if err != nil {
			return err
		}
		writeArray(a.reg, wav, outLength, outWav)
		return nil
	}))
}

// WavFree 释放 Synthesis 或 TTS 返回的 WAV。
func (a *API) WavFree(p *uint8) {
	registry.Reclaim(a.reg, p)
}
