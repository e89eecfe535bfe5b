// Package guard 串行化对全局引擎的访问。
//
// 所有入口在同一把锁内调用引擎，引擎在第一次获取时构造。锁不可重入。
package guard

import (
	"os"
	"sync"

	"github.com/iabetor/voicevox-capi/internal/config"
	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/inference"
	"github.com/iabetor/voicevox-capi/internal/logger"
)

// Guard 持有引擎及保护它的锁。
type Guard struct {
	mu    sync.Mutex
	build func() *engine.Core
	core  *engine.Core
}

// New 创建 Guard。build 在第一次 Acquire 时于锁内调用一次。
func New(build func() *engine.Core) *Guard {
	return &Guard{build: build}
}

// Default 创建使用 Build 的 Guard。
func Default() *Guard {
	return New(Build)
}

// Build 按环境变量初始化日志和配置，并用内置及 sherpa-onnx 后端构造引擎。
// 日志初始化失败时保留默认日志设置；配置无效时使用默认配置。
func Build() *engine.Core {
	_ = logger.InitFromEnv()

	log := logger.Named("voicevox_core_c_api")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Errorf("加载配置失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	// 环境变量未指定时使用配置文件中的日志设置
	if os.Getenv(logger.EnvLog) == "" && os.Getenv(logger.EnvLogFile) == "" && (cfg.Log.Filter != "" || cfg.Log.File != "") {
		if err := logger.Init(logger.Config{
			Level:      cfg.Log.Filter,
			File:       cfg.Log.File,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
		}); err != nil {
			log.Errorf("应用配置中的日志设置失败: %v", err)
		}
	}

	core := engine.New(cfg, inference.New())
	logger.Named("voicevox_core_c_api").Debugf("引擎已构造: %s (%d 个模型)", core.ID(), len(core.Models()))
	return core
}

// Acquire 阻塞直到取得锁，返回引擎和释放函数。释放函数只能调用一次。
func (g *Guard) Acquire() (*engine.Core, func()) {
	g.mu.Lock()
	if g.core == nil {
		g.core = g.build()
	}
	return g.core, g.mu.Unlock
}

// Do 在锁内执行 fn。fn 返回或 panic 时都会释放锁。
func (g *Guard) Do(fn func(*engine.Core) error) error {
	core, release := g.Acquire()
	defer release()
	return fn(core)
}
