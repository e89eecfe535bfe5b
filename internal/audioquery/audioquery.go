// Package audioquery 定义 AudioQuery 及其 JSON 形式。
package audioquery

import (
	"encoding/json"
	"fmt"
)

// Mora 是一拍。Consonant 为空表示没有子音。
type Mora struct {
	Text            string   `json:"text"`
	Consonant       *string  `json:"consonant"`
	ConsonantLength *float32 `json:"consonant_length"`
	Vowel           string   `json:"vowel"`
	VowelLength     float32  `json:"vowel_length"`
	Pitch           float32  `json:"pitch"`
}

// AccentPhrase 是一个重音短语。Accent 是重音核所在 mora 的序号（从 1 开始）。
type AccentPhrase struct {
	Moras           []Mora `json:"moras"`
	Accent          int    `json:"accent"`
	PauseMora       *Mora  `json:"pause_mora"`
	IsInterrogative bool   `json:"is_interrogative"`
}

// AudioQuery 是合成参数。
type AudioQuery struct {
	AccentPhrases      []AccentPhrase `json:"accent_phrases"`
	SpeedScale         float32        `json:"speedScale"`
	PitchScale         float32        `json:"pitchScale"`
	IntonationScale    float32        `json:"intonationScale"`
	VolumeScale        float32        `json:"volumeScale"`
	PrePhonemeLength   float32        `json:"prePhonemeLength"`
	PostPhonemeLength  float32        `json:"postPhonemeLength"`
	OutputSamplingRate int            `json:"outputSamplingRate"`
	OutputStereo       bool           `json:"outputStereo"`
	Kana               string         `json:"kana"`
}

// DefaultSamplingRate 是解码器的原生采样率。
const DefaultSamplingRate = 24000

// New 用默认合成参数包装重音短语。
func New(phrases []AccentPhrase, kana string) *AudioQuery {
	if phrases == nil {
		phrases = []AccentPhrase{}
	}
	return &AudioQuery{
		AccentPhrases:      phrases,
		SpeedScale:         1.0,
		PitchScale:         0.0,
		IntonationScale:    1.0,
		VolumeScale:        1.0,
		PrePhonemeLength:   0.1,
		PostPhonemeLength:  0.1,
		OutputSamplingRate: DefaultSamplingRate,
		OutputStereo:       false,
		Kana:               kana,
	}
}

// Marshal 序列化为 JSON。
func (q *AudioQuery) Marshal() ([]byte, error) {
	return json.Marshal(q)
}

// Parse 解析并校验 AudioQuery JSON。
func Parse(data []byte) (*AudioQuery, error) {
	var q AudioQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// Validate 检查合成参数是否可用于合成。
func (q *AudioQuery) Validate() error {
	if q.AccentPhrases == nil {
		return fmt.Errorf("缺少 accent_phrases")
	}
	if q.SpeedScale <= 0 {
		return fmt.Errorf("speedScale 必须大于 0: %v", q.SpeedScale)
	}
	if q.VolumeScale < 0 {
		return fmt.Errorf("volumeScale 不能为负: %v", q.VolumeScale)
	}
	if q.PrePhonemeLength < 0 || q.PostPhonemeLength < 0 {
		return fmt.Errorf("前后静音长度不能为负")
	}
	if q.OutputSamplingRate <= 0 {
		return fmt.Errorf("outputSamplingRate 必须大于 0: %d", q.OutputSamplingRate)
	}
	for i, ap := range q.AccentPhrases {
		if len(ap.Moras) > 0 && (ap.Accent < 1 || ap.Accent > len(ap.Moras)) {
			return fmt.Errorf("accent_phrases[%d]: accent %d 超出范围 [1, %d]", i, ap.Accent, len(ap.Moras))
		}
		for j := range ap.Moras {
			if err := ap.Moras[j].validate(); err != nil {
				return fmt.Errorf("accent_phrases[%d].moras[%d]: %w", i, j, err)
			}
		}
		if ap.PauseMora != nil {
			if err := ap.PauseMora.validate(); err != nil {
				return fmt.Errorf("accent_phrases[%d].pause_mora: %w", i, err)
			}
		}
	}
	return nil
}

func (m *Mora) validate() error {
	if !IsVowel(m.Vowel) {
		return fmt.Errorf("未知母音 %q", m.Vowel)
	}
	if m.Consonant != nil && !IsConsonant(*m.Consonant) {
		return fmt.Errorf("未知子音 %q", *m.Consonant)
	}
	if m.VowelLength < 0 || (m.ConsonantLength != nil && *m.ConsonantLength < 0) {
		return fmt.Errorf("音素长度不能为负")
	}
	return nil
}

// Clone 深拷贝重音短语。
func Clone(phrases []AccentPhrase) []AccentPhrase {
	out := make([]AccentPhrase, len(phrases))
	for i, ap := range phrases {
		out[i] = ap
		out[i].Moras = make([]Mora, len(ap.Moras))
		for j, m := range ap.Moras {
			out[i].Moras[j] = m.clone()
		}
		if ap.PauseMora != nil {
			pm := ap.PauseMora.clone()
			out[i].PauseMora = &pm
		}
	}
	return out
}

func (m Mora) clone() Mora {
	if m.Consonant != nil {
		c := *m.Consonant
		m.Consonant = &c
	}
	if m.ConsonantLength != nil {
		l := *m.ConsonantLength
		m.ConsonantLength = &l
	}
	return m
}

// PauseMora 返回标点处插入的静音 mora。
func PauseMora() *Mora {
	return &Mora{Text: "、", Vowel: Pau}
}
