package text

import (
	"fmt"
	"strings"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
)

// 假名记法中的控制字符。
const (
	accentSymbol        = '\''
	phraseSeparator     = '/'
	pauseSeparator      = '、'
	devoiceSymbol       = '_'
	interrogativeSymbol = '？'
)

// KanaError 表示假名记法解析失败。
type KanaError struct {
	Text   string
	Pos    int
	Reason string
}

func (e *KanaError) Error() string {
	return fmt.Sprintf("解析假名 %q 失败 (位置 %d): %s", e.Text, e.Pos, e.Reason)
}

// ParseKana 解析 AquesTalk 风格的假名记法：
//
//	コンニチワ'/ボイス'ボックス、ゲンキデ_ス'カ？
//
// "/" 分隔重音短语，"、" 分隔并插入停顿，"'" 标记重音核（紧跟重音 mora 之后），
// "_" 使下一拍无声化，短语末尾的 "？" 表示疑问。
func ParseKana(s string) ([]audioquery.AccentPhrase, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil, &KanaError{Text: s, Reason: "文本为空"}
	}

	var phrases []audioquery.AccentPhrase
	start := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != phraseSeparator && runes[i] != pauseSeparator {
			continue
		}
		ap, err := parsePhrase(s, runes[start:i], start)
		if err != nil {
			return nil, err
		}
		if i < len(runes) && runes[i] == pauseSeparator {
			ap.PauseMora = audioquery.PauseMora()
		}
		phrases = append(phrases, ap)
		start = i + 1
	}
	return phrases, nil
}

func parsePhrase(src string, runes []rune, offset int) (audioquery.AccentPhrase, error) {
	var (
		ap          audioquery.AccentPhrase
		unvoiceNext bool
	)
	fail := func(i int, reason string) (audioquery.AccentPhrase, error) {
		return audioquery.AccentPhrase{}, &KanaError{Text: src, Pos: offset + i, Reason: reason}
	}
	if len(runes) == 0 {
		return fail(0, "重音短语为空")
	}

	for i := 0; i < len(runes); {
		switch r := runes[i]; {
		case r == accentSymbol:
			if len(ap.Moras) == 0 {
				return fail(i, "重音符号不能位于短语开头")
			}
			if ap.Accent != 0 {
				return fail(i, "一个短语只能有一个重音符号")
			}
			ap.Accent = len(ap.Moras)
			i++
		case r == devoiceSymbol:
			unvoiceNext = true
			i++
		case r == interrogativeSymbol:
			if i != len(runes)-1 {
				return fail(i, "疑问符号只能位于短语末尾")
			}
			ap.IsInterrogative = true
			i++
		case r == 'ー':
			if len(ap.Moras) == 0 {
				return fail(i, "长音符号前没有 mora")
			}
			ap.Moras = append(ap.Moras, newMora("ー", "", voiced(ap.Moras[len(ap.Moras)-1].Vowel)))
			i++
		default:
			e, n, ok := lookupMora(runes[i:])
			if !ok {
				return fail(i, "无法识别的字符 "+string(r))
			}
			m := newMora(e.kana, e.consonant, e.vowel)
			if unvoiceNext {
				v, ok := devoice(m.Vowel)
				if !ok {
					return fail(i, "该 mora 不能无声化")
				}
				m.Vowel = v
				unvoiceNext = false
			}
			ap.Moras = append(ap.Moras, m)
			i += n
		}
	}

	if unvoiceNext {
		return fail(len(runes), "无声化符号后缺少 mora")
	}
	if len(ap.Moras) == 0 {
		return fail(0, "重音短语中没有 mora")
	}
	if ap.Accent == 0 {
		return fail(len(runes), "缺少重音符号")
	}
	return ap, nil
}

// CreateKana 把重音短语渲染为假名记法，是 ParseKana 的逆操作。
func CreateKana(phrases []audioquery.AccentPhrase) string {
	var b strings.Builder
	for i, ap := range phrases {
		for j, m := range ap.Moras {
			if m.Vowel != voiced(m.Vowel) {
				b.WriteRune(devoiceSymbol)
			}
			b.WriteString(m.Text)
			if j+1 == ap.Accent {
				b.WriteRune(accentSymbol)
			}
		}
		if ap.IsInterrogative {
			b.WriteRune(interrogativeSymbol)
		}
		if i < len(phrases)-1 {
			if ap.PauseMora != nil {
				b.WriteRune(pauseSeparator)
			} else {
				b.WriteRune(phraseSeparator)
			}
		}
	}
	return b.String()
}
