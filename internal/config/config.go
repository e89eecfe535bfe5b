package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath 指向 YAML 配置文件的环境变量。
const EnvConfigPath = "VOICEVOX_CORE_CONFIG"

// Config 是引擎的顶层配置结构。
type Config struct {
	Log    LogConfig     `yaml:"log"`
	Engine EngineConfig  `yaml:"engine"`
	Models []ModelConfig `yaml:"models"`
	Dict   DictConfig    `yaml:"dict"`
}

// LogConfig 日志配置。
type LogConfig struct {
	// Filter 日志过滤规则，如 "error,voicevox_core=info"。
	// 环境变量 VOICEVOX_LOG 优先。
	Filter     string `yaml:"filter"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// EngineConfig 合成引擎配置。
type EngineConfig struct {
	// SampleRate 解码器输出采样率（Hz）。
	SampleRate int `yaml:"sample_rate"`
	// DeviceProbe 为 false 时跳过 GPU 探测，只报告 CPU。
	DeviceProbe *bool `yaml:"device_probe"`
}

// ModelConfig 把一个话者绑定到 sherpa-onnx VITS 模型。
type ModelConfig struct {
	SpeakerID  uint32  `yaml:"speaker_id"`
	Name       string  `yaml:"name"`
	Model      string  `yaml:"model"`
	Tokens     string  `yaml:"tokens"`
	Lexicon    string  `yaml:"lexicon"`
	DataDir    string  `yaml:"data_dir"`
	DictDir    string  `yaml:"dict_dir"`
	SherpaSID  int     `yaml:"sherpa_sid"`
	NumThreads int     `yaml:"num_threads"`
	Speed      float32 `yaml:"speed"`
}

// DictConfig 用户词典配置。
type DictConfig struct {
	// Words 初始化时写入用户词典的词条。
	Words []WordConfig `yaml:"words"`
}

// WordConfig 一条用户词典词条。
type WordConfig struct {
	Surface       string `yaml:"surface"`
	Pronunciation string `yaml:"pronunciation"`
	Accent        int    `yaml:"accent"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${VOICEVOX_MODEL_DIR}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("配置文件 %s 无效: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// LoadFromEnv 读取 VOICEVOX_CORE_CONFIG 指向的配置文件；未设置时返回默认配置。
func LoadFromEnv() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Default 返回填充了默认值的配置。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// ProbeDevices 返回是否需要探测 GPU。
func (e EngineConfig) ProbeDevices() bool {
	return e.DeviceProbe == nil || *e.DeviceProbe
}

func validate(cfg *Config) error {
	seen := make(map[uint32]bool, len(cfg.Models))
	for i, m := range cfg.Models {
		if m.Model == "" {
			return fmt.Errorf("models[%d]: 缺少 model 路径", i)
		}
		if seen[m.SpeakerID] {
			return fmt.Errorf("models[%d]: speaker_id %d 重复", i, m.SpeakerID)
		}
		seen[m.SpeakerID] = true
	}
	for i, w := range cfg.Dict.Words {
		if strings.TrimSpace(w.Surface) == "" || strings.TrimSpace(w.Pronunciation) == "" {
			return fmt.Errorf("dict.words[%d]: surface 和 pronunciation 不能为空", i)
		}
	}
	return nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Engine.SampleRate == 0 {
		cfg.Engine.SampleRate = 24000
	}
	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = 64
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAge == 0 {
		cfg.Log.MaxAge = 7
	}

	for i := range cfg.Models {
		m := &cfg.Models[i]
		if m.Name == "" {
			m.Name = fmt.Sprintf("sherpa-%d", m.SpeakerID)
		}
		if m.NumThreads == 0 {
			m.NumThreads = 1
		}
		if m.Speed == 0 {
			m.Speed = 1.0
		}
		m.DataDir = expandHome(m.DataDir)
		m.DictDir = expandHome(m.DictDir)
		m.Model = expandHome(m.Model)
		m.Tokens = expandHome(m.Tokens)
		m.Lexicon = expandHome(m.Lexicon)
	}

	cfg.Log.File = expandHome(cfg.Log.File)
}

// expandHome 把 "~/" 开头的路径展开为用户主目录。
// Go 不会自动展开 ~，需要手动替换。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	return home + path[1:]
}
