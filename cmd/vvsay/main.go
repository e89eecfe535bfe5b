// vvsay 在命令行合成语音，写入 WAV 文件或直接播放。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iabetor/voicevox-capi/internal/audio"
	"github.com/iabetor/voicevox-capi/internal/config"
	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/guard"
	"github.com/iabetor/voicevox-capi/internal/inference"
	"github.com/iabetor/voicevox-capi/internal/logger"
	"github.com/iabetor/voicevox-capi/internal/tts"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认读取 VOICEVOX_CORE_CONFIG）")
	text := flag.String("text", "", "要合成的文本")
	speaker := flag.Uint("speaker", 0, "话者 ID")
	kana := flag.Bool("kana", false, "按 AquesTalk 风格读音记法解析文本")
	upspeak := flag.Bool("upspeak", true, "疑问句句尾上扬")
	dictDir := flag.String("dict", "", "用户词典目录")
	out := flag.String("out", "", "输出 WAV 文件路径")
	play := flag.Bool("play", false, "播放合成结果")
	metas := flag.Bool("metas", false, "打印话者元数据后退出")
	flag.Parse()

	_ = logger.InitFromEnv()
	defer logger.Sync()
	log := logger.Named("vvsay")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	g := guard.New(func() *engine.Core {
		return engine.New(cfg, inference.New())
	})

	if *metas {
		c, release := g.Acquire()
		fmt.Println(c.MetasJSON())
		release()
		return
	}

	if *text == "" {
		fmt.Fprintln(os.Stderr, "需要 -text")
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" && !*play {
		fmt.Fprintln(os.Stderr, "需要 -out 或 -play")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，中断播放
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("收到信号 %v，正在退出...", sig)
		cancel()
	}()

	eng := tts.NewVoicevoxEngine(g, uint32(*speaker), engine.TtsOptions{
		Kana:                       *kana,
		EnableInterrogativeUpspeak: *upspeak,
	})
	eng.InitOptions.DictDir = *dictDir
	defer func() {
		_ = g.Do(func(c *engine.Core) error {
			c.Finalize()
			return nil
		})
	}()

	wav, err := eng.SynthesizeWAV(ctx, *text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "合成失败: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := os.WriteFile(*out, wav, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "写入 %s 失败: %v\n", *out, err)
			os.Exit(1)
		}
		log.Infof("已写入 %s (%d 字节)", *out, len(wav))
	}

	if *play {
		player, err := audio.NewPlayer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "创建播放器失败: %v\n", err)
			os.Exit(1)
		}
		defer player.Close()

		if err := player.PlayWAV(ctx, wav); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "播放失败: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadConfig 读取 path 指向的配置；path 为空时读取环境变量指定的配置。
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
