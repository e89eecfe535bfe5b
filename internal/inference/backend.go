// Package inference 提供引擎的推理后端。
package inference

import (
	"fmt"

	"github.com/iabetor/voicevox-capi/internal/engine"
)

// Router 按模型类型把加载请求分发给对应后端。
type Router struct {
	builtin engine.Backend
	sherpa  engine.Backend
}

var _ engine.Backend = (*Router)(nil)

// New 创建包含内置后端和 sherpa-onnx 后端的 Router。
func New() *Router {
	return &Router{builtin: Builtin{}, sherpa: Sherpa{}}
}

// Load 实现 engine.Backend。
func (r *Router) Load(m engine.Model, opts engine.SessionOptions) (engine.Session, error) {
	switch m.Kind {
	case engine.ModelBuiltin:
		return r.builtin.Load(m, opts)
	case engine.ModelSherpa:
		return r.sherpa.Load(m, opts)
	}
	return nil, fmt.Errorf("不支持的模型类型 %s", m.Kind)
}
