package engine

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iabetor/voicevox-capi/internal/audioquery"
	"github.com/iabetor/voicevox-capi/internal/config"
)

// fakeBackend 返回固定预测值的会话，并记录加载和释放。
type fakeBackend struct {
	loads  []int
	closed []int
	fail   map[int]error
}

func (b *fakeBackend) Load(m Model, _ SessionOptions) (Session, error) {
	if err := b.fail[m.Index]; err != nil {
		return nil, err
	}
	b.loads = append(b.loads, m.Index)
	s := &fakeSession{backend: b, index: m.Index}
	if m.Kind == ModelSherpa {
		return &fakeSpeaker{s}, nil
	}
	return s, nil
}

type fakeSession struct {
	backend *fakeBackend
	index   int
}

func (s *fakeSession) PredictDuration(_ uint32, phonemes []int64) ([]float32, error) {
	out := make([]float32, len(phonemes))
	for i := range out {
		out[i] = 0.1
	}
	return out, nil
}

func (s *fakeSession) PredictIntonation(_ uint32, in IntonationInput) ([]float32, error) {
	out := make([]float32, in.Len())
	for i, v := range in.Vowel {
		if v != 0 {
			out[i] = 5.5
		}
	}
	return out, nil
}

func (s *fakeSession) Decode(_ uint32, in DecodeInput) ([]float32, error) {
	out := make([]float32, in.Length*HopSize)
	for i := range out {
		out[i] = 0.25
	}
	return out, nil
}

func (s *fakeSession) Close() error {
	s.backend.closed = append(s.backend.closed, s.index)
	return nil
}

type fakeSpeaker struct{ *fakeSession }

func (s *fakeSpeaker) Speak(_ uint32, text string) ([]float32, int, error) {
	return make([]float32, len(text)), 16000, nil
}

func newTestCore(t *testing.T, cfg *config.Config, probe DeviceProbe) (*Core, *fakeBackend) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	if probe == nil {
		probe = CPUOnly
	}
	b := &fakeBackend{fail: map[int]error{}}
	return New(cfg, b, WithDeviceProbe(probe)), b
}

func mustInit(t *testing.T, c *Core, opts InitializeOptions) {
	t.Helper()
	if err := c.Initialize(opts); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
}

func TestCore_Uninitialized(t *testing.T) {
	c, _ := newTestCore(t, nil, nil)

	if err := c.LoadModel(0); !errors.Is(err, ErrUninitializedStatus) {
		t.Errorf("LoadModel: expected ErrUninitializedStatus, got %v", err)
	}
	if _, err := c.PredictDuration([]int64{0}, 0); !errors.Is(err, ErrUninitializedStatus) {
		t.Errorf("PredictDuration: expected ErrUninitializedStatus, got %v", err)
	}
	if _, err := c.AudioQuery("ア'", 0, AudioQueryOptions{Kana: true}); !errors.Is(err, ErrUninitializedStatus) {
		t.Errorf("AudioQuery kana: expected ErrUninitializedStatus, got %v", err)
	}
	if _, err := c.AudioQuery("text", 0, AudioQueryOptions{}); !errors.Is(err, ErrNotLoadedOpenjtalkDict) {
		t.Errorf("AudioQuery text: expected ErrNotLoadedOpenjtalkDict, got %v", err)
	}
	if c.IsModelLoaded(0) {
		t.Error("no model should be loaded before initialize")
	}
}

func TestCore_AccelerationModes(t *testing.T) {
	gpuProbe := func() (SupportedDevices, error) { return SupportedDevices{CPU: true, CUDA: true}, nil }
	failProbe := func() (SupportedDevices, error) { return SupportedDevices{}, errors.New("probe failed") }

	tests := []struct {
		name    string
		probe   DeviceProbe
		mode    AccelerationMode
		wantGPU bool
		wantErr error
	}{
		{"cpu", gpuProbe, AccelerationCPU, false, nil},
		{"auto without gpu", CPUOnly, AccelerationAuto, false, nil},
		{"auto with gpu", gpuProbe, AccelerationAuto, true, nil},
		{"gpu with gpu", gpuProbe, AccelerationGPU, true, nil},
		{"gpu without gpu", CPUOnly, AccelerationGPU, false, ErrGpuSupport},
		{"probe failure", failProbe, AccelerationAuto, false, ErrGetSupportedDevices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCore(t, nil, tt.probe)
			err := c.Initialize(InitializeOptions{AccelerationMode: tt.mode})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if c.IsInitialized() {
					t.Error("engine should stay uninitialized after a failed initialize")
				}
				return
			}
			if err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if c.IsGPUMode() != tt.wantGPU {
				t.Errorf("IsGPUMode: got %v, want %v", c.IsGPUMode(), tt.wantGPU)
			}
		})
	}

	c, _ := newTestCore(t, nil, nil)
	err := c.Initialize(InitializeOptions{AccelerationMode: 7})
	var ee *Error
	if err == nil || errors.As(err, &ee) {
		t.Errorf("unknown mode should be a plain error, got %v", err)
	}
}

func TestCore_LoadModel(t *testing.T) {
	c, b := newTestCore(t, nil, nil)
	mustInit(t, c, DefaultInitializeOptions())

	if err := c.LoadModel(0); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if err := c.LoadModel(1); err != nil {
		t.Fatalf("LoadModel same model: %v", err)
	}
	if !c.IsModelLoaded(0) || !c.IsModelLoaded(1) {
		t.Error("styles 0 and 1 share model 0 and should both be loaded")
	}
	if c.IsModelLoaded(2) {
		t.Error("model of style 2 should not be loaded yet")
	}
	if len(b.loads) != 1 {
		t.Errorf("expected a single backend load, got %v", b.loads)
	}

	if err := c.LoadModel(99); !errors.Is(err, ErrInvalidSpeakerID) {
		t.Errorf("expected ErrInvalidSpeakerID, got %v", err)
	}
	if c.IsModelLoaded(99) {
		t.Error("unknown speaker should report not loaded")
	}

	c.catalog.styleModel[50] = 9
	if err := c.LoadModel(50); !errors.Is(err, ErrInvalidModelIndex) {
		t.Errorf("expected ErrInvalidModelIndex, got %v", err)
	}

	b.fail[1] = errors.New("broken file")
	err := c.LoadModel(2)
	if !errors.Is(err, ErrLoadModel) || !strings.Contains(err.Error(), "broken file") {
		t.Errorf("expected ErrLoadModel with cause, got %v", err)
	}
}

func TestCore_LoadAllAndFinalize(t *testing.T) {
	c, b := newTestCore(t, nil, nil)
	mustInit(t, c, InitializeOptions{AccelerationMode: AccelerationCPU, LoadAllModels: true})

	if !c.IsModelLoaded(0) || !c.IsModelLoaded(3) {
		t.Fatal("all models should be loaded")
	}
	c.Finalize()
	if len(b.closed) != 2 {
		t.Errorf("expected both sessions closed, got %v", b.closed)
	}
	if c.IsModelLoaded(0) || c.IsInitialized() {
		t.Error("finalize should unload everything")
	}

	// 重新初始化
	mustInit(t, c, DefaultInitializeOptions())
	if c.IsModelLoaded(0) {
		t.Error("models should load lazily after re-initialize")
	}
}

func TestCore_InferenceShapes(t *testing.T) {
	c, _ := newTestCore(t, nil, nil)
	mustInit(t, c, DefaultInitializeOptions())

	out, err := c.PredictDuration([]int64{0, 7, 0}, 0)
	if err != nil || len(out) != 3 {
		t.Fatalf("PredictDuration: (%v, %v)", out, err)
	}
	if !c.IsModelLoaded(0) {
		t.Error("inference should load the model lazily")
	}

	in := IntonationInput{
		Vowel: []int64{0, 7}, Consonant: []int64{-1, -1},
		StartAccent: []int64{0, 1}, EndAccent: []int64{0, 1},
		StartAccentPhrase: []int64{0, 1}, EndAccentPhrase: []int64{0},
	}
	if _, err := c.PredictIntonation(2, in, 0); !errors.Is(err, ErrInference) {
		t.Errorf("mismatched intonation input: expected ErrInference, got %v", err)
	}
	in.EndAccentPhrase = []int64{0, 1}
	if f0, err := c.PredictIntonation(2, in, 0); err != nil || len(f0) != 2 {
		t.Errorf("PredictIntonation: (%v, %v)", f0, err)
	}

	if _, err := c.Decode(2, 45, make([]float32, 2), make([]float32, 89), 0); !errors.Is(err, ErrInference) {
		t.Errorf("mismatched decode input: expected ErrInference, got %v", err)
	}
	wave, err := c.Decode(2, 45, make([]float32, 2), make([]float32, 90), 0)
	if err != nil || len(wave) != 2*HopSize {
		t.Errorf("Decode: (%d, %v)", len(wave), err)
	}
}

func TestCore_AudioQueryKana(t *testing.T) {
	c, _ := newTestCore(t, nil, nil)
	mustInit(t, c, DefaultInitializeOptions())

	q, err := c.AudioQuery("コ'ンニチワ、_キ'ミ", 0, AudioQueryOptions{Kana: true})
	if err != nil {
		t.Fatalf("AudioQuery: %v", err)
	}
	if q.Kana != "コ'ンニチワ、_キ'ミ" {
		t.Errorf("Kana: got %q", q.Kana)
	}
	if q.OutputSamplingRate != 24000 || q.SpeedScale != 1 || q.PrePhonemeLength != 0.1 {
		t.Errorf("unexpected defaults: %+v", q)
	}

	first := q.AccentPhrases[0].Moras[0]
	if first.ConsonantLength == nil || *first.ConsonantLength != 0.1 || first.VowelLength != 0.1 {
		t.Errorf("lengths not filled: %+v", first)
	}
	if first.Pitch != 5.5 {
		t.Errorf("voiced pitch: got %v", first.Pitch)
	}
	if pm := q.AccentPhrases[0].PauseMora; pm == nil || pm.Pitch != 0 || pm.VowelLength != 0.1 {
		t.Errorf("pause mora: %+v", pm)
	}
	if devoiced := q.AccentPhrases[1].Moras[0]; devoiced.Pitch != 0 {
		t.Errorf("devoiced mora should have pitch 0, got %v", devoiced.Pitch)
	}

	if _, err := c.AudioQuery("コンニチワ", 0, AudioQueryOptions{Kana: true}); !errors.Is(err, ErrParseKana) {
		t.Errorf("expected ErrParseKana, got %v", err)
	}
	if _, err := c.AudioQuery("😀", 0, AudioQueryOptions{}); !errors.Is(err, ErrExtractFullContextLabel) {
		t.Errorf("expected ErrExtractFullContextLabel, got %v", err)
	}
	if _, err := c.AudioQuery("text", 42, AudioQueryOptions{}); !errors.Is(err, ErrInvalidSpeakerID) {
		t.Errorf("expected ErrInvalidSpeakerID, got %v", err)
	}
}

func TestCore_Synthesis(t *testing.T) {
	c, _ := newTestCore(t, nil, nil)
	mustInit(t, c, DefaultInitializeOptions())

	q, err := c.AudioQuery("text", 0, DefaultAudioQueryOptions())
	if err != nil {
		t.Fatalf("AudioQuery: %v", err)
	}
	wav, err := c.Synthesis(q, 0, DefaultSynthesisOptions())
	if err != nil {
		t.Fatalf("Synthesis: %v", err)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("bad WAV header: %q", wav[:12])
	}
	if len(wav) <= 44 {
		t.Fatal("WAV has no samples")
	}

	q.OutputStereo = true
	q.OutputSamplingRate = 48000
	wav, err = c.Synthesis(q, 0, DefaultSynthesisOptions())
	if err != nil {
		t.Fatalf("Synthesis stereo: %v", err)
	}
	if ch := binary.LittleEndian.Uint16(wav[22:]); ch != 2 {
		t.Errorf("channels: got %d", ch)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:]); rate != 48000 {
		t.Errorf("sample rate: got %d", rate)
	}
}

func TestCore_TTS(t *testing.T) {
	cfg := config.Default()
	cfg.Models = []config.ModelConfig{{SpeakerID: 100, Name: "vits", Model: "/models/vits.onnx"}}
	c, _ := newTestCore(t, cfg, nil)
	mustInit(t, c, DefaultInitializeOptions())

	wav, err := c.TTS("ボイス'", 0, TtsOptions{Kana: true, EnableInterrogativeUpspeak: true})
	if err != nil || string(wav[0:4]) != "RIFF" {
		t.Fatalf("TTS builtin: (%d bytes, %v)", len(wav), err)
	}

	wav, err = c.TTS("hello", 100, DefaultTtsOptions())
	if err != nil {
		t.Fatalf("TTS speaker: %v", err)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:]); rate != 16000 {
		t.Errorf("speaker sessions should keep their own rate, got %d", rate)
	}
}

func TestApplyInterrogativeUpspeak(t *testing.T) {
	phrases := []audioquery.AccentPhrase{
		{Moras: []audioquery.Mora{{Text: "カ", Vowel: "a", Pitch: 6.4}}, Accent: 1, IsInterrogative: true},
		{Moras: []audioquery.Mora{{Text: "ス", Vowel: "U", Pitch: 0}}, Accent: 1, IsInterrogative: true},
		{Moras: []audioquery.Mora{{Text: "ネ", Vowel: "e", Pitch: 5}}, Accent: 1},
	}
	applyInterrogativeUpspeak(phrases)

	if n := len(phrases[0].Moras); n != 2 {
		t.Fatalf("expected an extra mora, got %d", n)
	}
	added := phrases[0].Moras[1]
	if added.Vowel != "a" || added.Text != "ア" || added.VowelLength != 0.15 || added.Pitch != 6.5 {
		t.Errorf("added mora: %+v", added)
	}
	if len(phrases[1].Moras) != 1 {
		t.Error("unvoiced ending should not be raised")
	}
	if len(phrases[2].Moras) != 1 {
		t.Error("non-interrogative phrase should not change")
	}
}

func TestCore_Metas(t *testing.T) {
	cfg := config.Default()
	cfg.Models = []config.ModelConfig{{SpeakerID: 100, Name: "vits", Model: "m.onnx"}}
	c, _ := newTestCore(t, cfg, nil)

	metas := c.MetasJSON()
	for _, want := range []string{`"name":"ひより"`, `"name":"vits"`, `"id":100`, `"speaker_uuid"`} {
		if !strings.Contains(metas, want) {
			t.Errorf("metas missing %s: %s", want, metas)
		}
	}
	if len(c.Models()) != 3 || c.Models()[2].Kind != ModelSherpa {
		t.Errorf("models: %+v", c.Models())
	}

	// 与内置风格冲突
	bad := config.Default()
	bad.Models = []config.ModelConfig{{SpeakerID: 1, Name: "dup", Model: "m.onnx"}}
	c, _ = newTestCore(t, bad, nil)
	if err := c.Initialize(DefaultInitializeOptions()); !errors.Is(err, ErrLoadMetas) {
		t.Errorf("expected ErrLoadMetas, got %v", err)
	}
	if strings.Contains(c.MetasJSON(), "dup") {
		t.Error("invalid config speakers should not appear in metas")
	}
}

func TestCore_Dictionary(t *testing.T) {
	cfg := config.Default()
	cfg.Dict.Words = []config.WordConfig{{Surface: "VV", Pronunciation: "ブイブイ", Accent: 1}}
	dir := t.TempDir()

	c, _ := newTestCore(t, cfg, nil)
	mustInit(t, c, InitializeOptions{DictDir: dir})
	if c.UserDict() == nil {
		t.Fatal("user dictionary should be open")
	}
	if _, err := os.Stat(filepath.Join(dir, "user_dict.db")); err != nil {
		t.Errorf("dictionary file missing: %v", err)
	}

	q, err := c.AudioQuery("VV", 0, DefaultAudioQueryOptions())
	if err != nil {
		t.Fatalf("AudioQuery: %v", err)
	}
	if q.Kana != "ブ'イブイ" {
		t.Errorf("dictionary word not used: %q", q.Kana)
	}
	c.Finalize()

	err = c.Initialize(InitializeOptions{DictDir: filepath.Join(dir, "missing")})
	if !errors.Is(err, ErrNotLoadedOpenjtalkDict) {
		t.Errorf("expected ErrNotLoadedOpenjtalkDict, got %v", err)
	}
	if c.IsInitialized() {
		t.Error("failed dictionary load should leave the engine uninitialized")
	}
}
