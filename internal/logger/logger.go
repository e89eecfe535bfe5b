// Package logger 提供按名称过滤的全局 zap logger。
//
// 过滤规则与 VOICEVOX_LOG 的写法一致，例如 "error,voicevox_core=info"。
// 各包通过 Named 取得子 logger；Init 之后重新调用 Named 才会使用新的输出。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 环境变量名。
const (
	EnvLog     = "VOICEVOX_LOG"      // 过滤规则，如 "error,voicevox_core=debug"
	EnvLogFile = "VOICEVOX_LOG_FILE" // 日志文件路径，为空则只输出到 stderr
)

// 日志文件轮转的默认值。
const (
	defaultMaxSize    = 64 // MB
	defaultMaxBackups = 3
	defaultMaxAge     = 7 // 天
)

var (
	// L 是全局 logger 实例。
	L *zap.SugaredLogger
	// Z 是全局 zap.Logger 实例。
	Z *zap.Logger

	mu sync.Mutex
	// file 是当前的日志文件，重新初始化时关闭
	file io.Closer
)

func init() {
	_ = Init(Config{})
}

// Config 日志配置。
type Config struct {
	Level      string // 过滤规则，既可以是单个级别，也可以是 "级别,名称=级别" 列表；为空使用 DefaultFilterSpec
	File       string // 日志文件路径，为空则只输出到 stderr
	MaxSize    int    // 单个日志文件最大大小（MB）
	MaxBackups int    // 保留的旧日志文件最大数量
	MaxAge     int    // 保留旧日志文件的最大天数
}

// InitFromEnv 根据 VOICEVOX_LOG 和 VOICEVOX_LOG_FILE 初始化全局 logger。
func InitFromEnv() error {
	return Init(Config{
		Level: os.Getenv(EnvLog),
		File:  os.Getenv(EnvLogFile),
	})
}

// Init 根据配置重建全局 logger。失败时保留原来的 logger。
func Init(cfg Config) error {
	filter := DefaultFilter()
	if cfg.Level != "" {
		f, err := ParseFilter(cfg.Level)
		if err != nil {
			return err
		}
		filter = f
	}

	output, closer, err := openOutput(cfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(newEncoder(), zapcore.AddSync(output), zapcore.DebugLevel)
	z := zap.New(&filterCore{Core: core, filter: filter}, zap.AddCallerSkip(1))

	mu.Lock()
	defer mu.Unlock()
	if Z != nil {
		_ = Z.Sync()
	}
	if file != nil {
		_ = file.Close()
	}
	Z, L, file = z, z.Sugar(), closer
	return nil
}

// newEncoder 返回单行文本格式的编码器，logger 名称作为过滤目标一并输出。
func newEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	})
}

// openOutput 返回 stderr，指定了文件时同时写入轮转的日志文件。
func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.File == "" {
		return os.Stderr, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSize, defaultMaxSize),
		MaxBackups: orDefault(cfg.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(cfg.MaxAge, defaultMaxAge),
		Compress:   true,
	}
	return io.MultiWriter(os.Stderr, lj), lj, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Named 返回带名称的子 logger，名称参与过滤规则匹配。
func Named(name string) *zap.SugaredLogger {
	mu.Lock()
	z := Z
	mu.Unlock()
	return z.Named(name).Sugar()
}

// Sync 刷新缓冲区，应在程序退出前调用。
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if Z != nil {
		_ = Z.Sync()
	}
}
