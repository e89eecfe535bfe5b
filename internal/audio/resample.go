package audio

import (
	"fmt"
	"math"
)

// Resample 使用线性插值把单声道样本从 inputRate 转换到 outputRate。
//
//	ratio = inputRate / outputRate
//	position = outputIndex * ratio
//	output[outputIndex] = input[i] * (1 - frac) + input[i+1] * frac
func Resample(input []float32, inputRate, outputRate int) ([]float32, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("无效采样率: input=%d, output=%d", inputRate, outputRate)
	}
	if inputRate == outputRate || len(input) == 0 {
		out := make([]float32, len(input))
		copy(out, input)
		return out, nil
	}

	ratio := float64(inputRate) / float64(outputRate)
	n := int(math.Ceil(float64(len(input)) / ratio))
	out := make([]float32, n)
	last := len(input) - 1

	for i := range out {
		position := float64(i) * ratio
		idx := int(position)
		if idx >= last {
			out[i] = input[last]
			continue
		}
		frac := float32(position - float64(idx))
		out[i] = input[idx]*(1-frac) + input[idx+1]*frac
	}
	return out, nil
}
