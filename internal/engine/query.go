package engine

import (
	"github.com/iabetor/voicevox-capi/internal/audioquery"
	"github.com/iabetor/voicevox-capi/internal/text"
)

// AudioQueryOptions 是 AudioQuery 的参数。
type AudioQueryOptions struct {
	// Kana 为 true 时把输入当作假名记法解析。
	Kana bool
}

// DefaultAudioQueryOptions 返回默认参数。
func DefaultAudioQueryOptions() AudioQueryOptions {
	return AudioQueryOptions{}
}

// AudioQuery 分析文本并预测每拍的长度和音高，生成合成参数。
func (c *Core) AudioQuery(s string, speakerID uint32, opts AudioQueryOptions) (*audioquery.AudioQuery, error) {
	phrases, err := c.accentPhrases(s, opts.Kana)
	if err != nil {
		return nil, err
	}
	if err := c.replaceMoraData(phrases, speakerID); err != nil {
		return nil, err
	}

	q := audioquery.New(phrases, text.CreateKana(phrases))
	q.OutputSamplingRate = c.cfg.Engine.SampleRate
	return q, nil
}

func (c *Core) accentPhrases(s string, kana bool) ([]audioquery.AccentPhrase, error) {
	if kana {
		phrases, err := text.ParseKana(s)
		if err != nil {
			return nil, newError(KindParseKana, err)
		}
		return phrases, nil
	}
	if c.analyzer == nil {
		return nil, newError(KindNotLoadedOpenjtalkDict, nil)
	}
	phrases, err := c.analyzer.Analyze(s)
	if err != nil {
		return nil, newError(KindExtractFullContextLabel, err)
	}
	return phrases, nil
}

// replaceMoraData 用预测值填充每拍的长度和音高。
func (c *Core) replaceMoraData(phrases []audioquery.AccentPhrase, speakerID uint32) error {
	// 先确认话者可用，空文本也要报告未初始化或无效话者
	if _, err := c.session(speakerID); err != nil {
		return err
	}
	moras := flattenMoras(phrases)
	if len(moras) == 0 {
		return nil
	}
	if err := c.replacePhonemeLength(moras, speakerID); err != nil {
		return err
	}
	return c.replaceMoraPitch(phrases, moras, speakerID)
}

// flattenMoras 按顺序返回所有 mora（含停顿）的指针。
func flattenMoras(phrases []audioquery.AccentPhrase) []*audioquery.Mora {
	var out []*audioquery.Mora
	for i := range phrases {
		ap := &phrases[i]
		for j := range ap.Moras {
			out = append(out, &ap.Moras[j])
		}
		if ap.PauseMora != nil {
			out = append(out, ap.PauseMora)
		}
	}
	return out
}

func phonemeID(p string) int64 {
	id, _ := audioquery.PhonemeID(p)
	return id
}

// replacePhonemeLength 预测首尾带静音的音素序列的长度，写回子音和母音长度。
func (c *Core) replacePhonemeLength(moras []*audioquery.Mora, speakerID uint32) error {
	ids := []int64{phonemeID(audioquery.Pau)}
	for _, m := range moras {
		if m.Consonant != nil {
			ids = append(ids, phonemeID(*m.Consonant))
		}
		ids = append(ids, phonemeID(m.Vowel))
	}
	ids = append(ids, phonemeID(audioquery.Pau))

	lengths, err := c.PredictDuration(ids, speakerID)
	if err != nil {
		return err
	}

	idx := 1
	for _, m := range moras {
		if m.Consonant != nil {
			l := lengths[idx]
			m.ConsonantLength = &l
			idx++
		}
		m.VowelLength = lengths[idx]
		idx++
	}
	return nil
}

// replaceMoraPitch 构造每拍的重音特征并预测音高。无声母音的音高为 0。
func (c *Core) replaceMoraPitch(phrases []audioquery.AccentPhrase, moras []*audioquery.Mora, speakerID uint32) error {
	var in IntonationInput
	push := func(vowel, consonant, startAccent, endAccent, startPhrase, endPhrase int64) {
		in.Vowel = append(in.Vowel, vowel)
		in.Consonant = append(in.Consonant, consonant)
		in.StartAccent = append(in.StartAccent, startAccent)
		in.EndAccent = append(in.EndAccent, endAccent)
		in.StartAccentPhrase = append(in.StartAccentPhrase, startPhrase)
		in.EndAccentPhrase = append(in.EndAccentPhrase, endPhrase)
	}
	pau := phonemeID(audioquery.Pau)

	push(pau, -1, 0, 0, 0, 0)
	for _, ap := range phrases {
		// 重音核在第一拍时从第一拍开始高，否则从第二拍开始
		highStart := 1
		if ap.Accent == 1 {
			highStart = 0
		}
		for j, m := range ap.Moras {
			consonant := int64(-1)
			if m.Consonant != nil {
				consonant = phonemeID(*m.Consonant)
			}
			push(phonemeID(m.Vowel), consonant,
				flag(j == highStart), flag(j == ap.Accent-1),
				flag(j == 0), flag(j == len(ap.Moras)-1))
		}
		if ap.PauseMora != nil {
			push(pau, -1, 0, 0, 0, 0)
		}
	}
	push(pau, -1, 0, 0, 0, 0)

	f0, err := c.PredictIntonation(in.Len(), in, speakerID)
	if err != nil {
		return err
	}
	for i, m := range moras {
		if audioquery.IsUnvoiced(m.Vowel) {
			m.Pitch = 0
			continue
		}
		m.Pitch = f0[i+1]
	}
	return nil
}

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
