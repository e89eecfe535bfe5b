package text

import (
	"github.com/iabetor/voicevox-capi/internal/audioquery"
)

// moraEntry 是片假名一拍与音素的对应。
type moraEntry struct {
	kana      string
	consonant string
	vowel     string
}

var moraList = []moraEntry{
	{"ア", "", "a"}, {"イ", "", "i"}, {"ウ", "", "u"}, {"エ", "", "e"}, {"オ", "", "o"},
	{"カ", "k", "a"}, {"キ", "k", "i"}, {"ク", "k", "u"}, {"ケ", "k", "e"}, {"コ", "k", "o"},
	{"ガ", "g", "a"}, {"ギ", "g", "i"}, {"グ", "g", "u"}, {"ゲ", "g", "e"}, {"ゴ", "g", "o"},
	{"サ", "s", "a"}, {"シ", "sh", "i"}, {"ス", "s", "u"}, {"セ", "s", "e"}, {"ソ", "s", "o"},
	{"ザ", "z", "a"}, {"ジ", "j", "i"}, {"ズ", "z", "u"}, {"ゼ", "z", "e"}, {"ゾ", "z", "o"},
	{"タ", "t", "a"}, {"チ", "ch", "i"}, {"ツ", "ts", "u"}, {"テ", "t", "e"}, {"ト", "t", "o"},
	{"ダ", "d", "a"}, {"ヂ", "j", "i"}, {"ヅ", "z", "u"}, {"デ", "d", "e"}, {"ド", "d", "o"},
	{"ナ", "n", "a"}, {"ニ", "n", "i"}, {"ヌ", "n", "u"}, {"ネ", "n", "e"}, {"ノ", "n", "o"},
	{"ハ", "h", "a"}, {"ヒ", "h", "i"}, {"フ", "f", "u"}, {"ヘ", "h", "e"}, {"ホ", "h", "o"},
	{"バ", "b", "a"}, {"ビ", "b", "i"}, {"ブ", "b", "u"}, {"ベ", "b", "e"}, {"ボ", "b", "o"},
	{"パ", "p", "a"}, {"ピ", "p", "i"}, {"プ", "p", "u"}, {"ペ", "p", "e"}, {"ポ", "p", "o"},
	{"マ", "m", "a"}, {"ミ", "m", "i"}, {"ム", "m", "u"}, {"メ", "m", "e"}, {"モ", "m", "o"},
	{"ヤ", "y", "a"}, {"ユ", "y", "u"}, {"ヨ", "y", "o"},
	{"ラ", "r", "a"}, {"リ", "r", "i"}, {"ル", "r", "u"}, {"レ", "r", "e"}, {"ロ", "r", "o"},
	{"ワ", "w", "a"}, {"ヲ", "", "o"}, {"ン", "", "N"}, {"ッ", "", "cl"}, {"ヴ", "v", "u"},

	{"キャ", "ky", "a"}, {"キュ", "ky", "u"}, {"キョ", "ky", "o"}, {"キェ", "ky", "e"},
	{"ギャ", "gy", "a"}, {"ギュ", "gy", "u"}, {"ギョ", "gy", "o"},
	{"シャ", "sh", "a"}, {"シュ", "sh", "u"}, {"ショ", "sh", "o"}, {"シェ", "sh", "e"},
	{"ジャ", "j", "a"}, {"ジュ", "j", "u"}, {"ジョ", "j", "o"}, {"ジェ", "j", "e"},
	{"チャ", "ch", "a"}, {"チュ", "ch", "u"}, {"チョ", "ch", "o"}, {"チェ", "ch", "e"},
	{"ニャ", "ny", "a"}, {"ニュ", "ny", "u"}, {"ニョ", "ny", "o"},
	{"ヒャ", "hy", "a"}, {"ヒュ", "hy", "u"}, {"ヒョ", "hy", "o"}, {"ヒェ", "hy", "e"},
	{"ビャ", "by", "a"}, {"ビュ", "by", "u"}, {"ビョ", "by", "o"},
	{"ピャ", "py", "a"}, {"ピュ", "py", "u"}, {"ピョ", "py", "o"},
	{"ミャ", "my", "a"}, {"ミュ", "my", "u"}, {"ミョ", "my", "o"},
	{"リャ", "ry", "a"}, {"リュ", "ry", "u"}, {"リョ", "ry", "o"},
	{"ティ", "t", "i"}, {"トゥ", "t", "u"}, {"テュ", "ty", "u"},
	{"ディ", "d", "i"}, {"ドゥ", "d", "u"}, {"デュ", "dy", "u"},
	{"ファ", "f", "a"}, {"フィ", "f", "i"}, {"フェ", "f", "e"}, {"フォ", "f", "o"},
	{"ウィ", "w", "i"}, {"ウェ", "w", "e"}, {"ウォ", "w", "o"},
	{"ツァ", "ts", "a"}, {"ツィ", "ts", "i"}, {"ツェ", "ts", "e"}, {"ツォ", "ts", "o"},
	{"ヴァ", "v", "a"}, {"ヴィ", "v", "i"}, {"ヴェ", "v", "e"}, {"ヴォ", "v", "o"},
	{"イェ", "y", "e"}, {"クァ", "kw", "a"}, {"グァ", "gw", "a"},
	{"スィ", "s", "i"}, {"ズィ", "z", "i"},
}

var (
	kanaToMora = make(map[string]moraEntry, len(moraList))
	// phonemeToKana 以 "子音/母音" 为键反查片假名，用于拼音转写。
	phonemeToKana = make(map[string]string, len(moraList))
)

// vowelKana 是单独母音对应的片假名。
var vowelKana = map[string]string{
	"a": "ア", "i": "イ", "u": "ウ", "e": "エ", "o": "オ", "N": "ン", "cl": "ッ",
}

func init() {
	for _, e := range moraList {
		kanaToMora[e.kana] = e
		key := e.consonant + "/" + e.vowel
		if _, ok := phonemeToKana[key]; !ok {
			phonemeToKana[key] = e.kana
		}
	}
}

// lookupMora 按最长匹配从 runes 开头取一拍，返回该拍及消耗的字符数。
func lookupMora(runes []rune) (moraEntry, int, bool) {
	if len(runes) >= 2 {
		if e, ok := kanaToMora[string(runes[:2])]; ok {
			return e, 2, true
		}
	}
	if len(runes) >= 1 {
		if e, ok := kanaToMora[string(runes[:1])]; ok {
			return e, 1, true
		}
	}
	return moraEntry{}, 0, false
}

// newMora 构造长度和音高都为 0 的 mora。
func newMora(text, consonant, vowel string) audioquery.Mora {
	m := audioquery.Mora{Text: text, Vowel: vowel}
	if consonant != "" {
		c := consonant
		var l float32
		m.Consonant = &c
		m.ConsonantLength = &l
	}
	return m
}

// devoice 把母音转为无声化母音。
func devoice(vowel string) (string, bool) {
	switch vowel {
	case "a":
		return "A", true
	case "i":
		return "I", true
	case "u":
		return "U", true
	case "e":
		return "E", true
	case "o":
		return "O", true
	}
	return vowel, false
}

// voiced 把无声化母音还原。
func voiced(vowel string) string {
	switch vowel {
	case "A":
		return "a"
	case "I":
		return "i"
	case "U":
		return "u"
	case "E":
		return "e"
	case "O":
		return "o"
	}
	return vowel
}

// katakanaOf 把平假名转为片假名，其他字符原样返回。
func katakanaOf(r rune) rune {
	if r >= 'ぁ' && r <= 'ゖ' {
		return r + ('ァ' - 'ぁ')
	}
	return r
}

func isKana(r rune) bool {
	return (r >= 'ぁ' && r <= 'ゖ') || (r >= 'ァ' && r <= 'ヺ') || r == 'ー'
}

// moraScan 是切分假名串的结果。
type moraScan struct {
	moras  []audioquery.Mora
	badPos int // 第一个被跳过的字符位置，-1 表示全部识别
	reason string
}

// splitMoras 把假名串切分为 mora，平假名按片假名处理，"ー" 重复上一拍的母音。
// 无法识别的字符被跳过，第一处记录在结果中。
func splitMoras(runes []rune) moraScan {
	res := moraScan{badPos: -1}
	skip := func(pos int, reason string) {
		if res.badPos < 0 {
			res.badPos, res.reason = pos, reason
		}
	}
	for i := 0; i < len(runes); {
		if runes[i] == 'ー' {
			if n := len(res.moras); n == 0 || res.moras[n-1].Vowel == "cl" {
				skip(i, "长音符号前没有可延长的 mora")
				i++
				continue
			}
			res.moras = append(res.moras, newMora("ー", "", voiced(res.moras[len(res.moras)-1].Vowel)))
			i++
			continue
		}

		// 平假名逐字转为片假名后再查表
		window := make([]rune, 0, 2)
		for j := i; j < len(runes) && j < i+2; j++ {
			window = append(window, katakanaOf(runes[j]))
		}
		e, n, ok := lookupMora(window)
		if !ok {
			skip(i, "无法识别的假名 "+string(runes[i]))
			i++
			continue
		}
		res.moras = append(res.moras, newMora(e.kana, e.consonant, e.vowel))
		i += n
	}
	return res
}

// scanMoras 切分假名串，跳过无法识别的字符。
func scanMoras(runes []rune) []audioquery.Mora {
	return splitMoras(runes).moras
}

// scanMorasStrict 切分假名串，遇到无法识别的字符时返回 KanaError。
func scanMorasStrict(runes []rune) ([]audioquery.Mora, error) {
	res := splitMoras(runes)
	if res.badPos >= 0 {
		return nil, &KanaError{Text: string(runes), Pos: res.badPos, Reason: res.reason}
	}
	return res.moras, nil
}
