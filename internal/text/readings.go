package text

// 字母和数字的片假名读法。
var (
	letterReadings = map[rune]string{
		'A': "エー", 'B': "ビー", 'C': "シー", 'D': "ディー", 'E': "イー",
		'F': "エフ", 'G': "ジー", 'H': "エイチ", 'I': "アイ", 'J': "ジェー",
		'K': "ケー", 'L': "エル", 'M': "エム", 'N': "エヌ", 'O': "オー",
		'P': "ピー", 'Q': "キュー", 'R': "アール", 'S': "エス", 'T': "ティー",
		'U': "ユー", 'V': "ブイ", 'W': "ダブリュー", 'X': "エックス", 'Y': "ワイ",
		'Z': "ゼット",
	}
	digitReadings = map[rune]string{
		'0': "ゼロ", '1': "イチ", '2': "ニ", '3': "サン", '4': "ヨン",
		'5': "ゴ", '6': "ロク", '7': "ナナ", '8': "ハチ", '9': "キュウ",
	}
)

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// readingOf 返回字母或数字的读法。
func readingOf(r rune) string {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if s, ok := letterReadings[r]; ok {
		return s
	}
	return digitReadings[r]
}
