package engine

// 解码器的原生参数。
const (
	// DecoderSampleRate 是解码器输出的采样率。
	DecoderSampleRate = 24000
	// HopSize 是每帧对应的样本数。
	HopSize = 256
	// FrameRate 是每秒的帧数 (24000/256 = 93.75)。
	FrameRate = float64(DecoderSampleRate) / HopSize
)

// SessionOptions 是加载模型时的推理设置。
type SessionOptions struct {
	UseGPU     bool
	CPUThreads int
}

// Backend 加载模型并创建推理会话。
type Backend interface {
	Load(m Model, opts SessionOptions) (Session, error)
}

// Session 是已加载模型上的推理会话。
// 所有方法都在引擎锁内调用，实现无需自行加锁。
type Session interface {
	PredictDuration(styleID uint32, phonemes []int64) ([]float32, error)
	PredictIntonation(styleID uint32, in IntonationInput) ([]float32, error)
	Decode(styleID uint32, in DecodeInput) ([]float32, error)
	Close() error
}

// Speaker 由能直接从文本合成的会话实现，TTS 优先使用它。
type Speaker interface {
	Speak(styleID uint32, text string) (samples []float32, sampleRate int, err error)
}

// IntonationInput 是音高预测的输入，各切片长度相同，每个元素对应一拍。
// Consonant 中 -1 表示没有子音。
type IntonationInput struct {
	Vowel             []int64
	Consonant         []int64
	StartAccent       []int64
	EndAccent         []int64
	StartAccentPhrase []int64
	EndAccentPhrase   []int64
}

// Len 返回拍数。
func (in IntonationInput) Len() int {
	return len(in.Vowel)
}

// DecodeInput 是解码器的输入。F0 每帧一个值，Phoneme 为 Length×PhonemeSize 的 one-hot 矩阵。
type DecodeInput struct {
	Length      int
	PhonemeSize int
	F0          []float32
	Phoneme     []float32
}
