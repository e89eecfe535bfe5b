package boundary

import (
	"github.com/iabetor/voicevox-capi/internal/engine"
	"github.com/iabetor/voicevox-capi/internal/resultcode"
)

// Initialize 初始化引擎。
func (a *API) Initialize(opts InitializeOptions) resultcode.Code {
	o, err := opts.engineOptions()
	if err != nil {
		return a.result("initialize", err)
	}
	return a.result("initialize", a.guard.Do(func(c *engine.Core) error {
		return c.Initialize(o)
	}))
}

// Version 返回版本号字符串。
func (a *API) Version() *byte {
	return a.version
}

// LoadModel 加载话者所属的模型。
func (a *API) LoadModel(speakerID uint32) resultcode.Code {
	return a.result("load_model", a.guard.Do(func(c *engine.Core) error {
		return c.LoadModel(speakerID)
	}))
}

// IsGPUMode 返回是否使用 GPU 推理。
func (a *API) IsGPUMode() bool {
	c, release := a.guard.Acquire()
	defer release()
	return c.IsGPUMode()
}

// IsModelLoaded 返回话者所属的模型是否已加载。
func (a *API) IsModelLoaded(speakerID uint32) bool {
	c, release := a.guard.Acquire()
	defer release()
	return c.IsModelLoaded(speakerID)
}

// Finalize 释放引擎持有的资源。
func (a *API) Finalize() {
	c, release := a.guard.Acquire()
	defer release()
	c.Finalize()
}

// MetasJSON 返回话者元数据 JSON。返回值在进程内一直有效，不需要释放。
func (a *API) MetasJSON() *byte {
	return a.metas.get(func() *byte {
		c, release := a.guard.Acquire()
		s := c.MetasJSON()
		release()
		return a.allocString(s)
	})
}

// SupportedDevicesJSON 返回可用设备 JSON。探测失败时只报告 CPU。
// 返回值在进程内一直有效，不需要释放。
func (a *API) SupportedDevicesJSON() *byte {
	return a.devices.get(func() *byte {
		c, release := a.guard.Acquire()
		d, err := c.SupportedDevices()
		release()
		if err != nil {
			a.result("get_supported_devices_json", err)
			d, _ = engine.CPUOnly()
		}
		return a.allocString(d.JSON())
	})
}

// ErrorResultToMessage 返回结果码的说明。返回值在进程内一直有效。
// 未定义的数值返回未知错误的说明。
func (a *API) ErrorResultToMessage(code int32) *byte {
	if p, ok := a.messages[resultcode.Code(code)]; ok {
		return p
	}
	return a.messages[resultcode.UnknownError]
}
