package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultFilterSpec 是未设置 VOICEVOX_LOG 时使用的过滤规则。
const DefaultFilterSpec = "error,voicevox_core=info,voicevox_core_c_api=info,onnxruntime=info"

// offLevel 高于所有 zap 级别，用于关闭某个名称的输出。
const offLevel = zapcore.FatalLevel + 1

// Filter 按 logger 名称决定最低输出级别。
// 名称按 "." 分段做前缀匹配，最长匹配优先；未匹配时使用 Default。
type Filter struct {
	Default zapcore.Level
	Targets map[string]zapcore.Level
}

// DefaultFilter 返回内置过滤规则。
func DefaultFilter() Filter {
	f, _ := ParseFilter(DefaultFilterSpec)
	return f
}

// ParseFilter 解析 "级别,名称=级别,..." 形式的过滤规则。
func ParseFilter(spec string) (Filter, error) {
	f := Filter{Default: zapcore.ErrorLevel, Targets: make(map[string]zapcore.Level)}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvl, hasName := strings.Cut(part, "=")
		if !hasName {
			level, err := parseLevel(part)
			if err != nil {
				return Filter{}, err
			}
			f.Default = level
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return Filter{}, fmt.Errorf("过滤规则缺少名称: %q", part)
		}
		level, err := parseLevel(lvl)
		if err != nil {
			return Filter{}, err
		}
		f.Targets[name] = level
	}
	return f, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off":
		return offLevel, nil
	default:
		return 0, fmt.Errorf("不支持的日志级别: %s", s)
	}
}

// LevelFor 返回指定 logger 名称的最低输出级别。
func (f Filter) LevelFor(name string) zapcore.Level {
	best, bestLen := f.Default, -1
	for target, level := range f.Targets {
		if name == target || strings.HasPrefix(name, target+".") {
			if len(target) > bestLen {
				best, bestLen = level, len(target)
			}
		}
	}
	return best
}

// minLevel 返回所有规则中最低的级别，用于 Enabled 快速判断。
func (f Filter) minLevel() zapcore.Level {
	lowest := f.Default
	for _, level := range f.Targets {
		if level < lowest {
			lowest = level
		}
	}
	return lowest
}

// String 以 ParseFilter 可接受的格式输出规则。
func (f Filter) String() string {
	names := make([]string, 0, len(f.Targets))
	for name := range f.Targets {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := []string{levelName(f.Default)}
	for _, name := range names {
		parts = append(parts, name+"="+levelName(f.Targets[name]))
	}
	return strings.Join(parts, ",")
}

func levelName(l zapcore.Level) string {
	if l >= offLevel {
		return "off"
	}
	return l.String()
}

// filterCore 在写入前按 logger 名称过滤日志条目。
type filterCore struct {
	zapcore.Core
	filter Filter
}

func (c *filterCore) Enabled(l zapcore.Level) bool {
	return l >= c.filter.minLevel() && c.Core.Enabled(l)
}

func (c *filterCore) With(fields []zapcore.Field) zapcore.Core {
	return &filterCore{Core: c.Core.With(fields), filter: c.filter}
}

func (c *filterCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level < c.filter.LevelFor(ent.LoggerName) {
		return ce
	}
	return c.Core.Check(ent, ce)
}
