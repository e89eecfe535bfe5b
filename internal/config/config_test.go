package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Engine.SampleRate", cfg.Engine.SampleRate, 24000},
		{"Log.MaxSize", cfg.Log.MaxSize, 64},
		{"Log.MaxBackups", cfg.Log.MaxBackups, 3},
		{"Log.MaxAge", cfg.Log.MaxAge, 7},
		{"Log.Filter", cfg.Log.Filter, ""},
	}

	for _, c := range checks {
		switch want := c.want.(type) {
		case int:
			if c.got.(int) != want {
				t.Errorf("%s: got %v, want %v", c.name, c.got, want)
			}
		case string:
			if c.got.(string) != want {
				t.Errorf("%s: got %v, want %v", c.name, c.got, want)
			}
		}
	}

	if !cfg.Engine.ProbeDevices() {
		t.Error("device probing should default to enabled")
	}
}

func TestSetDefaults_DoesNotOverride(t *testing.T) {
	probe := false
	cfg := &Config{
		Engine: EngineConfig{SampleRate: 48000, DeviceProbe: &probe},
		Log:    LogConfig{MaxSize: 10, MaxBackups: 1, MaxAge: 2},
		Models: []ModelConfig{{SpeakerID: 3, Name: "vits", Model: "m.onnx", NumThreads: 4, Speed: 1.5}},
	}
	setDefaults(cfg)

	if cfg.Engine.SampleRate != 48000 {
		t.Errorf("SampleRate should not be overridden: got %d", cfg.Engine.SampleRate)
	}
	if cfg.Engine.ProbeDevices() {
		t.Error("DeviceProbe=false should not be overridden")
	}
	if cfg.Log.MaxSize != 10 || cfg.Log.MaxBackups != 1 || cfg.Log.MaxAge != 2 {
		t.Errorf("log rotation should not be overridden: %+v", cfg.Log)
	}
	m := cfg.Models[0]
	if m.Name != "vits" || m.NumThreads != 4 || m.Speed != 1.5 {
		t.Errorf("model settings should not be overridden: %+v", m)
	}
}

func TestSetDefaults_ModelDefaults(t *testing.T) {
	cfg := &Config{Models: []ModelConfig{{SpeakerID: 7, Model: "m.onnx"}}}
	setDefaults(cfg)

	m := cfg.Models[0]
	if m.Name != "sherpa-7" {
		t.Errorf("Name: got %q, want sherpa-7", m.Name)
	}
	if m.NumThreads != 1 {
		t.Errorf("NumThreads: got %d, want 1", m.NumThreads)
	}
	if m.Speed != 1.0 {
		t.Errorf("Speed: got %v, want 1.0", m.Speed)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	yamlContent := `
log:
  filter: "warn,voicevox_core=debug"
engine:
  sample_rate: 22050
models:
  - speaker_id: 100
    model: /models/vits.onnx
    tokens: /models/tokens.txt
    sherpa_sid: 2
dict:
  words:
    - surface: ボイボ
      pronunciation: ボイボ
      accent: 1
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Filter != "warn,voicevox_core=debug" {
		t.Errorf("Log.Filter: got %q", cfg.Log.Filter)
	}
	if cfg.Engine.SampleRate != 22050 {
		t.Errorf("Engine.SampleRate: got %d, want 22050", cfg.Engine.SampleRate)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].SpeakerID != 100 || cfg.Models[0].SherpaSID != 2 {
		t.Fatalf("Models: got %+v", cfg.Models)
	}
	if len(cfg.Dict.Words) != 1 || cfg.Dict.Words[0].Accent != 1 {
		t.Errorf("Dict.Words: got %+v", cfg.Dict.Words)
	}
	// Defaults should be applied for unset fields
	if cfg.Log.MaxSize != 64 {
		t.Errorf("Log.MaxSize should default to 64, got %d", cfg.Log.MaxSize)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_MODEL_DIR", "/opt/models")

	yamlContent := `
models:
  - speaker_id: 1
    model: "${TEST_MODEL_DIR}/vits.onnx"
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Models[0].Model != "/opt/models/vits.onnx" {
		t.Errorf("expected env var expansion, got %q", cfg.Models[0].Model)
	}
}

func TestLoad_RejectsDuplicateSpeaker(t *testing.T) {
	yamlContent := `
models:
  - speaker_id: 1
    model: a.onnx
  - speaker_id: 1
    model: b.onnx
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Load(tmpFile)
	if err == nil || !strings.Contains(err.Error(), "重复") {
		t.Fatalf("expected duplicate speaker error, got %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv without file failed: %v", err)
	}
	if cfg.Engine.SampleRate != 24000 {
		t.Errorf("expected defaults, got %+v", cfg.Engine)
	}

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte("engine:\n  sample_rate: 16000\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	t.Setenv(EnvConfigPath, tmpFile)
	cfg, err = LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Engine.SampleRate != 16000 {
		t.Errorf("SampleRate: got %d, want 16000", cfg.Engine.SampleRate)
	}
}
