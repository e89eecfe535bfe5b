package engine

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"runtime"
)

// SupportedDevices 描述可用的推理设备。
type SupportedDevices struct {
	CPU  bool `json:"cpu"`
	CUDA bool `json:"cuda"`
	DML  bool `json:"dml"`
}

// GPU 返回是否有任一 GPU 可用。
func (d SupportedDevices) GPU() bool {
	return d.CUDA || d.DML
}

// JSON 返回 {"cpu":..,"cuda":..,"dml":..}。
func (d SupportedDevices) JSON() string {
	data, _ := json.Marshal(d)
	return string(data)
}

// DeviceProbe 探测可用设备。
type DeviceProbe func() (SupportedDevices, error)

// nvidiaVersionFile 存在表示已加载 NVIDIA 驱动。
var nvidiaVersionFile = "/proc/driver/nvidia/version"

// ProbeDevices 根据驱动状态探测设备。CPU 总是可用；DML 只在 Windows 上可用。
func ProbeDevices() (SupportedDevices, error) {
	d := SupportedDevices{CPU: true, DML: runtime.GOOS == "windows"}
	if runtime.GOOS == "linux" {
		_, err := os.Stat(nvidiaVersionFile)
		switch {
		case err == nil:
			d.CUDA = true
		case !errors.Is(err, fs.ErrNotExist):
			return SupportedDevices{}, err
		}
	}
	return d, nil
}

// CPUOnly 是不做探测的 DeviceProbe。
func CPUOnly() (SupportedDevices, error) {
	return SupportedDevices{CPU: true}, nil
}
