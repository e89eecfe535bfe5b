// Package engine 实现语音合成引擎：模型管理、推理调度、AudioQuery 生成与波形合成。
//
// Core 不是并发安全的，调用方必须串行访问（见 internal/guard）。
package engine

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iabetor/voicevox-capi/internal/config"
	"github.com/iabetor/voicevox-capi/internal/dict"
	"github.com/iabetor/voicevox-capi/internal/logger"
	"github.com/iabetor/voicevox-capi/internal/text"
)

// Version 是库的版本号。
const Version = "0.14.0"

// AccelerationMode 选择推理设备。
type AccelerationMode int32

const (
	AccelerationAuto AccelerationMode = iota
	AccelerationCPU
	AccelerationGPU
)

func (m AccelerationMode) String() string {
	switch m {
	case AccelerationAuto:
		return "auto"
	case AccelerationCPU:
		return "cpu"
	case AccelerationGPU:
		return "gpu"
	}
	return fmt.Sprintf("AccelerationMode(%d)", int32(m))
}

// InitializeOptions 是 Initialize 的参数。
type InitializeOptions struct {
	AccelerationMode AccelerationMode
	// CPUNumThreads 为 0 时使用逻辑 CPU 数。
	CPUNumThreads uint16
	LoadAllModels bool
	// DictDir 为空时只使用内置读法和配置中的词条。
	DictDir string
}

// DefaultInitializeOptions 返回默认初始化参数。
func DefaultInitializeOptions() InitializeOptions {
	return InitializeOptions{AccelerationMode: AccelerationAuto}
}

// Core 是合成引擎。
type Core struct {
	id      string
	cfg     *config.Config
	backend Backend
	probe   DeviceProbe
	log     *zap.SugaredLogger

	catalog    *catalog
	catalogErr error

	initialized bool
	useGPU      bool
	cpuThreads  int
	sessions    map[int]Session
	analyzer    *text.Analyzer
	userDict    *dict.Store
}

// Option 配置 Core。
type Option func(*Core)

// WithDeviceProbe 替换设备探测函数。
func WithDeviceProbe(p DeviceProbe) Option {
	return func(c *Core) {
		c.probe = p
	}
}

// New 创建引擎。话者元数据在此时确定，整个进程内不变。
func New(cfg *config.Config, backend Backend, opts ...Option) *Core {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Core{
		id:      uuid.NewString(),
		cfg:     cfg,
		backend: backend,
		probe:   ProbeDevices,
	}
	if !cfg.Engine.ProbeDevices() {
		c.probe = CPUOnly
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.Named("voicevox_core").With("engine", c.id)

	c.catalog, c.catalogErr = loadCatalog(cfg.Models)
	if c.catalogErr != nil {
		c.log.Errorf("话者元数据无效，只使用内置话者: %v", c.catalogErr)
		c.catalog, _ = loadCatalog(nil)
	}
	return c
}

// ID 返回引擎实例 ID。
func (c *Core) ID() string {
	return c.id
}

// Initialize 初始化引擎。已初始化时先释放原有状态。
func (c *Core) Initialize(opts InitializeOptions) error {
	if c.initialized {
		c.Finalize()
	}
	if c.catalogErr != nil {
		return newError(KindLoadMetas, c.catalogErr)
	}

	var useGPU bool
	switch opts.AccelerationMode {
	case AccelerationCPU:
	case AccelerationAuto, AccelerationGPU:
		devices, err := c.probe()
		if err != nil {
			return newError(KindGetSupportedDevices, err)
		}
		if opts.AccelerationMode == AccelerationGPU && !devices.GPU() {
			return newError(KindGpuSupport, nil)
		}
		useGPU = devices.GPU()
	default:
		return fmt.Errorf("未知的加速模式 %d", int32(opts.AccelerationMode))
	}

	threads := int(opts.CPUNumThreads)
	if threads == 0 {
		threads = runtime.NumCPU()
	}

	c.useGPU = useGPU
	c.cpuThreads = threads
	c.sessions = make(map[int]Session)
	c.initialized = true

	if opts.LoadAllModels {
		for i := range c.catalog.models {
			if err := c.loadModel(i); err != nil {
				c.Finalize()
				return err
			}
		}
	}
	if err := c.loadDictionary(opts.DictDir); err != nil {
		c.Finalize()
		return err
	}

	c.log.Infof("初始化完成: mode=%s gpu=%v threads=%d models=%d", opts.AccelerationMode, useGPU, threads, len(c.sessions))
	return nil
}

// loadDictionary 打开用户词典并写入配置中的词条。
func (c *Core) loadDictionary(dir string) error {
	var (
		lex  text.Lexicon
		seed func(text.Word) error
	)
	if dir != "" {
		store, err := dict.Open(dir)
		if err != nil {
			return &Error{Kind: KindNotLoadedOpenjtalkDict, Path: dir, Err: err}
		}
		c.userDict = store
		lex, seed = store, store.AddWord
	} else {
		m := text.NewMapLexicon()
		lex, seed = m, m.Add
	}

	for _, w := range c.cfg.Dict.Words {
		word := text.Word{Surface: w.Surface, Pronunciation: w.Pronunciation, Accent: w.Accent}
		if err := seed(word); err != nil {
			return &Error{Kind: KindNotLoadedOpenjtalkDict, Path: dir, Err: fmt.Errorf("词条 %q: %w", w.Surface, err)}
		}
	}
	c.analyzer = text.NewAnalyzer(lex)
	return nil
}

// Finalize 释放所有模型和词典，引擎回到未初始化状态。
func (c *Core) Finalize() {
	indexes := make([]int, 0, len(c.sessions))
	for i := range c.sessions {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		if err := c.sessions[i].Close(); err != nil {
			c.log.Warnf("释放模型 %d 失败: %v", i, err)
		}
	}
	if c.userDict != nil {
		if err := c.userDict.Close(); err != nil {
			c.log.Warnf("关闭用户词典失败: %v", err)
		}
	}

	if c.initialized {
		c.log.Info("引擎已释放")
	}
	c.sessions = nil
	c.userDict = nil
	c.analyzer = nil
	c.useGPU = false
	c.initialized = false
}

// IsInitialized 返回引擎是否已初始化。
func (c *Core) IsInitialized() bool {
	return c.initialized
}

// IsGPUMode 返回是否使用 GPU 推理。
func (c *Core) IsGPUMode() bool {
	return c.useGPU
}

// MetasJSON 返回所有话者元数据的 JSON。
func (c *Core) MetasJSON() string {
	return c.catalog.metasJSON
}

// Models 返回所有模型。
func (c *Core) Models() []Model {
	return c.catalog.models
}

// SupportedDevices 探测可用设备。
func (c *Core) SupportedDevices() (SupportedDevices, error) {
	d, err := c.probe()
	if err != nil {
		return SupportedDevices{}, newError(KindGetSupportedDevices, err)
	}
	return d, nil
}

// UserDict 返回已打开的用户词典，未指定词典目录时为 nil。
func (c *Core) UserDict() *dict.Store {
	return c.userDict
}

// LoadModel 加载话者所属的模型。已加载时什么都不做。
func (c *Core) LoadModel(speakerID uint32) error {
	if !c.initialized {
		return newError(KindUninitializedStatus, nil)
	}
	idx, err := c.catalog.modelIndex(speakerID)
	if err != nil {
		return err
	}
	return c.loadModel(idx)
}

// IsModelLoaded 返回话者所属的模型是否已加载。未知话者返回 false。
func (c *Core) IsModelLoaded(speakerID uint32) bool {
	idx, err := c.catalog.modelIndex(speakerID)
	if err != nil {
		return false
	}
	_, ok := c.sessions[idx]
	return ok
}

func (c *Core) loadModel(idx int) error {
	if _, ok := c.sessions[idx]; ok {
		return nil
	}
	m := c.catalog.models[idx]
	s, err := c.backend.Load(m, SessionOptions{UseGPU: c.useGPU, CPUThreads: c.cpuThreads})
	if err != nil {
		e := &Error{Kind: KindLoadModel, Model: idx, Err: err}
		if m.Sherpa != nil {
			e.Path = m.Sherpa.Model
		}
		return e
	}
	c.sessions[idx] = s
	c.log.Infof("模型 %d (%s, %s) 已加载", idx, m.Name, m.Kind)
	return nil
}

// session 返回话者的推理会话，必要时加载模型。
func (c *Core) session(speakerID uint32) (Session, error) {
	if !c.initialized {
		return nil, newError(KindUninitializedStatus, nil)
	}
	idx, err := c.catalog.modelIndex(speakerID)
	if err != nil {
		return nil, err
	}
	if err := c.loadModel(idx); err != nil {
		return nil, err
	}
	return c.sessions[idx], nil
}

// PredictDuration 预测每个音素的长度（秒）。
func (c *Core) PredictDuration(phonemes []int64, speakerID uint32) ([]float32, error) {
	s, err := c.session(speakerID)
	if err != nil {
		return nil, err
	}
	out, err := s.PredictDuration(speakerID, phonemes)
	if err != nil {
		return nil, newError(KindInference, err)
	}
	if len(out) != len(phonemes) {
		return nil, newError(KindInference, fmt.Errorf("输出长度 %d 与输入长度 %d 不一致", len(out), len(phonemes)))
	}
	return out, nil
}

// PredictIntonation 预测每拍的音高（对数 F0）。
func (c *Core) PredictIntonation(length int, in IntonationInput, speakerID uint32) ([]float32, error) {
	s, err := c.session(speakerID)
	if err != nil {
		return nil, err
	}
	inputs := []struct {
		name string
		v    []int64
	}{
		{"vowel", in.Vowel},
		{"consonant", in.Consonant},
		{"start_accent", in.StartAccent},
		{"end_accent", in.EndAccent},
		{"start_accent_phrase", in.StartAccentPhrase},
		{"end_accent_phrase", in.EndAccentPhrase},
	}
	for _, input := range inputs {
		if len(input.v) != length {
			return nil, newError(KindInference, fmt.Errorf("%s 长度 %d 与 length %d 不一致", input.name, len(input.v), length))
		}
	}
	out, err := s.PredictIntonation(speakerID, in)
	if err != nil {
		return nil, newError(KindInference, err)
	}
	if len(out) != length {
		return nil, newError(KindInference, fmt.Errorf("输出长度 %d 与 length %d 不一致", len(out), length))
	}
	return out, nil
}

// Decode 从逐帧的 F0 和音素生成波形。
func (c *Core) Decode(length, phonemeSize int, f0, phoneme []float32, speakerID uint32) ([]float32, error) {
	s, err := c.session(speakerID)
	if err != nil {
		return nil, err
	}
	if len(f0) != length || len(phoneme) != length*phonemeSize {
		return nil, newError(KindInference, fmt.Errorf("输入形状不一致: f0=%d phoneme=%d length=%d phoneme_size=%d",
			len(f0), len(phoneme), length, phonemeSize))
	}
	out, err := s.Decode(speakerID, DecodeInput{Length: length, PhonemeSize: phonemeSize, F0: f0, Phoneme: phoneme})
	if err != nil {
		return nil, newError(KindInference, err)
	}
	return out, nil
}
