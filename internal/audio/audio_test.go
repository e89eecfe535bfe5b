package audio

import (
	"errors"
	"math"
	"testing"
)

func TestFloat32ToInt16_ClampAndRound(t *testing.T) {
	out := Float32ToInt16([]float32{0, 0.5, -0.5, 1.5, -1.5})
	want := []int16{0, 16384, -16384, math.MaxInt16, -math.MaxInt16}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, out[i], want[i])
		}
	}
}

func TestInt16ToFloat32_MaxInt16(t *testing.T) {
	out := Int16ToFloat32([]int16{math.MaxInt16, 0})
	if out[0] != 1.0 || out[1] != 0 {
		t.Fatalf("got %v", out)
	}
}

func TestInterleaveDownmix(t *testing.T) {
	mono := []float32{0.1, 0.2, 0.3}
	stereo := Interleave(mono, 2)
	if len(stereo) != 6 || stereo[2] != 0.2 || stereo[3] != 0.2 {
		t.Fatalf("Interleave: got %v", stereo)
	}
	back := Downmix(stereo, 2)
	for i := range mono {
		if back[i] != mono[i] {
			t.Errorf("Downmix index %d: got %v, want %v", i, back[i], mono[i])
		}
	}
}

func TestEncodeDecodeWAV(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.5}
	data := EncodeWAV(samples, 24000, 2)

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("bad header: %q", data[:12])
	}
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("size: got %d, want %d", len(data), 44+len(samples)*2)
	}

	w, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if w.SampleRate != 24000 || w.Channels != 2 || len(w.Samples) != len(samples) {
		t.Fatalf("decoded: %+v", w)
	}
	for i := range samples {
		if math.Abs(float64(w.Samples[i]-samples[i])) > 1e-4 {
			t.Errorf("sample %d: got %v, want %v", i, w.Samples[i], samples[i])
		}
	}
	if d := w.Duration(); d != 2.0/24000 {
		t.Errorf("Duration: got %v", d)
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("RIFF"), []byte("RIFF\x00\x00\x00\x00WAVEdata\xff\x00\x00\x00")} {
		if _, err := DecodeWAV(data); !errors.Is(err, ErrNotWAV) {
			t.Errorf("DecodeWAV(%q): expected ErrNotWAV, got %v", data, err)
		}
	}
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 2, 3}

	same, err := Resample(in, 24000, 24000)
	if err != nil || len(same) != 4 {
		t.Fatalf("same rate: (%v, %v)", same, err)
	}

	up, err := Resample(in, 24000, 48000)
	if err != nil {
		t.Fatalf("upsample: %v", err)
	}
	if len(up) != 8 || up[1] != 0.5 || up[2] != 1 {
		t.Errorf("upsample: got %v", up)
	}

	down, err := Resample(in, 48000, 24000)
	if err != nil {
		t.Fatalf("downsample: %v", err)
	}
	if len(down) != 2 || down[0] != 0 || down[1] != 2 {
		t.Errorf("downsample: got %v", down)
	}

	if _, err := Resample(in, 0, 24000); err == nil {
		t.Error("expected error for zero rate")
	}
}

func TestPCMSource_FillPadsSilence(t *testing.T) {
	src := newPCMSource([]float32{1, -1, 0.5})
	if len(src.pcm) != 6 {
		t.Fatalf("expected 6 PCM bytes, got %d", len(src.pcm))
	}

	out := []byte{9, 9, 9, 9}
	src.fill(out)
	if out[0] != 0xff || out[1] != 0x7f {
		t.Errorf("first sample: got % x", out[:2])
	}
	select {
	case <-src.done:
		t.Fatal("done signalled before data ran out")
	default:
	}

	out = []byte{9, 9, 9, 9}
	src.fill(out)
	if out[2] != 0 || out[3] != 0 {
		t.Errorf("tail should be silence, got % x", out)
	}
	select {
	case <-src.done:
	default:
		t.Fatal("done should be signalled once data ran out")
	}
}
