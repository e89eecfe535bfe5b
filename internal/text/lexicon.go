package text

import (
	"fmt"
	"strings"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
)

// Word 是一条用户词典词条。Pronunciation 为片假名，Accent 为 0 表示平板型。
type Word struct {
	Surface       string
	Pronunciation string
	Accent        int
}

// Lexicon 按最长匹配查找词条。
type Lexicon interface {
	// Match 返回以 runes 开头的最长词条及其字符数。
	Match(runes []rune) (Word, int, bool)
}

// Phrase 把词条转为一个重音短语。
func (w Word) Phrase() (audioquery.AccentPhrase, error) {
	moras, err := scanMorasStrict([]rune(w.Pronunciation))
	if err != nil {
		return audioquery.AccentPhrase{}, err
	}
	if len(moras) == 0 {
		return audioquery.AccentPhrase{}, fmt.Errorf("词条 %q 的读音为空", w.Surface)
	}
	accent := w.Accent
	if accent == 0 {
		accent = len(moras)
	}
	if accent < 0 || accent > len(moras) {
		return audioquery.AccentPhrase{}, fmt.Errorf("词条 %q 的重音 %d 超出范围 [0, %d]", w.Surface, w.Accent, len(moras))
	}
	return audioquery.AccentPhrase{Moras: moras, Accent: accent}, nil
}

// ValidateWord 检查词条能否用于分析。
func ValidateWord(w Word) error {
	if strings.TrimSpace(w.Surface) == "" {
		return fmt.Errorf("词条表记为空")
	}
	_, err := w.Phrase()
	return err
}

// MapLexicon 是内存中的词典。不是并发安全的。
type MapLexicon struct {
	words  map[string]Word
	maxLen int
}

// NewMapLexicon 创建空词典。
func NewMapLexicon() *MapLexicon {
	return &MapLexicon{words: make(map[string]Word)}
}

// Add 添加或覆盖词条。
func (l *MapLexicon) Add(w Word) error {
	if err := ValidateWord(w); err != nil {
		return err
	}
	l.words[w.Surface] = w
	if n := len([]rune(w.Surface)); n > l.maxLen {
		l.maxLen = n
	}
	return nil
}

// Remove 删除词条，返回是否存在。
func (l *MapLexicon) Remove(surface string) bool {
	_, ok := l.words[surface]
	delete(l.words, surface)
	return ok
}

// Len 返回词条数。
func (l *MapLexicon) Len() int {
	return len(l.words)
}

// Match 实现 Lexicon。
func (l *MapLexicon) Match(runes []rune) (Word, int, bool) {
	n := l.maxLen
	if n > len(runes) {
		n = len(runes)
	}
	for ; n > 0; n-- {
		if w, ok := l.words[string(runes[:n])]; ok {
			return w, n, true
		}
	}
	return Word{}, 0, false
}
