package audioquery

// Phonemes 是声学模型使用的音素表，下标即音素 ID。
var Phonemes = [...]string{
	"pau", "A", "E", "I", "N", "O", "U", "a", "b", "by",
	"ch", "cl", "d", "dy", "e", "f", "g", "gw", "gy", "h",
	"hy", "i", "j", "k", "kw", "ky", "m", "my", "n", "ny",
	"o", "p", "py", "r", "ry", "s", "sh", "t", "ts", "ty",
	"u", "v", "w", "y", "z",
}

// PhonemeSize 是音素表的大小，也是解码器 one-hot 向量的宽度。
const PhonemeSize = len(Phonemes)

// Pau 是静音音素。
const Pau = "pau"

var phonemeIDs = func() map[string]int64 {
	m := make(map[string]int64, PhonemeSize)
	for i, p := range Phonemes {
		m[p] = int64(i)
	}
	return m
}()

// PhonemeID 返回音素的 ID。
func PhonemeID(p string) (int64, bool) {
	id, ok := phonemeIDs[p]
	return id, ok
}

// IsVowel 判断音素能否作为 mora 的母音。
func IsVowel(p string) bool {
	switch p {
	case "a", "i", "u", "e", "o", "N", "A", "I", "U", "E", "O", "cl", "pau":
		return true
	}
	return false
}

// IsUnvoiced 判断母音是否无声（无声化母音、促音、静音）。
func IsUnvoiced(vowel string) bool {
	switch vowel {
	case "A", "I", "U", "E", "O", "cl", "pau":
		return true
	}
	return false
}

// IsConsonant 判断音素能否作为 mora 的子音。
func IsConsonant(p string) bool {
	_, ok := phonemeIDs[p]
	return ok && !IsVowel(p)
}
