package text

import (
	"strings"

	"github.com/mozillazg/go-pinyin"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
)

// pinyinInitials 把拼音声母映射为最接近的子音，双字母声母在前。
var pinyinInitials = []struct {
	initial   string
	consonant string
}{
	{"zh", "j"}, {"ch", "ch"}, {"sh", "sh"},
	{"b", "b"}, {"p", "p"}, {"m", "m"}, {"f", "f"},
	{"d", "d"}, {"t", "t"}, {"n", "n"}, {"l", "r"},
	{"g", "g"}, {"k", "k"}, {"h", "h"},
	{"j", "j"}, {"q", "ch"}, {"x", "sh"},
	{"r", "r"}, {"z", "z"}, {"c", "ts"}, {"s", "s"},
	{"y", "y"}, {"w", "w"},
}

// hanReader 把汉字转换为 mora。
type hanReader struct {
	args pinyin.Args
}

func newHanReader() *hanReader {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal
	return &hanReader{args: args}
}

// Syllables 返回每个汉字的无调拼音，无法注音的字被跳过。
func (h *hanReader) Syllables(s string) []string {
	var out []string
	for _, readings := range pinyin.Pinyin(s, h.args) {
		if len(readings) > 0 && readings[0] != "" {
			out = append(out, readings[0])
		}
	}
	return out
}

// syllableMoras 把一个拼音音节转写为 mora。
func syllableMoras(syllable string) []audioquery.Mora {
	s := strings.ToLower(strings.ReplaceAll(syllable, "ü", "v"))

	var initial, consonant string
	for _, in := range pinyinInitials {
		if strings.HasPrefix(s, in.initial) {
			initial, consonant = in.initial, in.consonant
			break
		}
	}
	final := s[len(initial):]

	var vowels []string
	switch {
	case final == "i" && (initial == "z" || initial == "c" || initial == "s"):
		// 舌尖元音
		vowels = []string{"u"}
	default:
		vowels = finalVowels(final)
	}
	if len(vowels) == 0 {
		if consonant == "" {
			return nil
		}
		vowels = []string{"u"}
	}
	if (consonant == "y" && vowels[0] == "i") || (consonant == "w" && vowels[0] == "u") {
		consonant = ""
	}

	moras := make([]audioquery.Mora, 0, len(vowels))
	moras = append(moras, moraFor(consonant, vowels[0]))
	for _, v := range vowels[1:] {
		moras = append(moras, moraFor("", v))
	}
	return moras
}

// finalVowels 把韵母拆为母音序列，结尾的 n/ng 成为拨音。
func finalVowels(final string) []string {
	var vowels []string
	for i := 0; i < len(final); i++ {
		rest := final[i:]
		if rest == "n" || rest == "ng" {
			vowels = append(vowels, "N")
			break
		}
		switch final[i] {
		case 'a', 'i', 'u', 'e', 'o':
			vowels = append(vowels, string(final[i]))
		case 'v':
			vowels = append(vowels, "u")
		}
	}
	return vowels
}

// moraFor 找到与子音、母音组合对应的假名；组合不存在时退化为单独的母音。
func moraFor(consonant, vowel string) audioquery.Mora {
	if kana, ok := phonemeToKana[consonant+"/"+vowel]; ok {
		return newMora(kana, consonant, vowel)
	}
	return newMora(vowelKana[vowel], "", vowel)
}
