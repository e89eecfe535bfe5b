// Package text 把文本转换为重音短语。
package text

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
)

// ErrNothingToRead 表示非空文本中没有任何可发音的内容。
var ErrNothingToRead = errors.New("文本中没有可发音的内容")

// hanChunk 是汉字串切分为重音短语时每段的最大字数。
const hanChunk = 2

// Analyzer 把普通文本转换为重音短语。
// 依次尝试：用户词典最长匹配、假名、汉字拼音、字母和数字读法；标点决定停顿和疑问。
type Analyzer struct {
	lex Lexicon
	han *hanReader
}

// NewAnalyzer 创建分析器。lex 可以为 nil。
func NewAnalyzer(lex Lexicon) *Analyzer {
	return &Analyzer{lex: lex, han: newHanReader()}
}

// Analyze 分析文本。空文本返回空结果。
func (a *Analyzer) Analyze(s string) ([]audioquery.AccentPhrase, error) {
	runes := []rune(s)
	var phrases []audioquery.AccentPhrase

	for i := 0; i < len(runes); {
		if a.lex != nil {
			if w, n, ok := a.lex.Match(runes[i:]); ok {
				ap, err := w.Phrase()
				if err != nil {
					return nil, fmt.Errorf("词条 %q: %w", w.Surface, err)
				}
				phrases = append(phrases, ap)
				i += n
				continue
			}
		}

		r := runes[i]
		switch {
		case r == '?' || r == '？':
			if len(phrases) > 0 {
				phrases[len(phrases)-1].IsInterrogative = true
				setPause(phrases)
			}
			i++
		case isPause(r):
			setPause(phrases)
			i++
		case isKana(r):
			j := runEnd(runes, i, isKana)
			moras := scanMoras(runes[i:j])
			if len(moras) > 0 {
				phrases = append(phrases, audioquery.AccentPhrase{Moras: moras, Accent: len(moras)})
			}
			i = j
		case unicode.Is(unicode.Han, r):
			j := runEnd(runes, i, func(r rune) bool { return unicode.Is(unicode.Han, r) })
			for k := i; k < j; k += hanChunk {
				end := k + hanChunk
				if end > j {
					end = j
				}
				if ap, ok := a.hanPhrase(string(runes[k:end])); ok {
					phrases = append(phrases, ap)
				}
			}
			i = j
		case isASCIILetter(r) || isDigit(r):
			pred := isDigit
			if isASCIILetter(r) {
				pred = isASCIILetter
			}
			j := runEnd(runes, i, pred)
			var reading []rune
			for _, c := range runes[i:j] {
				reading = append(reading, []rune(readingOf(c))...)
			}
			moras := scanMoras(reading)
			if len(moras) > 0 {
				phrases = append(phrases, audioquery.AccentPhrase{Moras: moras, Accent: len(moras)})
			}
			i = j
		default:
			i++
		}
	}

	if len(phrases) == 0 && len(runes) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrNothingToRead, s)
	}
	return phrases, nil
}

func (a *Analyzer) hanPhrase(s string) (audioquery.AccentPhrase, bool) {
	var moras []audioquery.Mora
	for _, syl := range a.han.Syllables(s) {
		moras = append(moras, syllableMoras(syl)...)
	}
	if len(moras) == 0 {
		return audioquery.AccentPhrase{}, false
	}
	return audioquery.AccentPhrase{Moras: moras, Accent: 1}, true
}

// setPause 给最后一个短语加上停顿。
func setPause(phrases []audioquery.AccentPhrase) {
	if len(phrases) == 0 {
		return
	}
	if last := &phrases[len(phrases)-1]; last.PauseMora == nil {
		last.PauseMora = audioquery.PauseMora()
	}
}

func isPause(r rune) bool {
	switch r {
	case '、', ',', '，', '。', '.', '!', '！', ';', '；', ':', '：', '…', '\n':
		return true
	}
	return false
}

func runEnd(runes []rune, i int, pred func(rune) bool) int {
	for i < len(runes) && pred(runes[i]) {
		i++
	}
	return i
}
