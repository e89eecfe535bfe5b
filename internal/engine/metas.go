package engine

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iabetor/voicevox-capi/internal/config"
)

//go:embed metas.json
var builtinMetas []byte

// Style 是话者的一种风格，ID 即 API 中的 speaker_id。
type Style struct {
	Name string `json:"name"`
	ID   uint32 `json:"id"`
}

// SpeakerMeta 是一个话者的元数据。
type SpeakerMeta struct {
	Name        string  `json:"name"`
	Styles      []Style `json:"styles"`
	SpeakerUUID string  `json:"speaker_uuid"`
	Version     string  `json:"version"`
}

// ModelKind 区分模型由哪个推理后端加载。
type ModelKind int

const (
	ModelBuiltin ModelKind = iota
	ModelSherpa
)

func (k ModelKind) String() string {
	switch k {
	case ModelBuiltin:
		return "builtin"
	case ModelSherpa:
		return "sherpa"
	}
	return fmt.Sprintf("ModelKind(%d)", int(k))
}

// Model 是一组可以一起加载的模型文件。
type Model struct {
	Index  int
	Kind   ModelKind
	Name   string
	Styles []uint32
	Sherpa *config.ModelConfig // 仅 ModelSherpa
}

// catalog 记录话者元数据和风格到模型的映射。
type catalog struct {
	speakers   []SpeakerMeta
	models     []Model
	styleModel map[uint32]int
	metasJSON  string
}

// loadCatalog 合并内置话者和配置中的 sherpa-onnx 话者。
// 每个内置话者对应一个内置模型，每个配置项对应一个 sherpa 模型。
func loadCatalog(models []config.ModelConfig) (*catalog, error) {
	var speakers []SpeakerMeta
	if err := json.Unmarshal(builtinMetas, &speakers); err != nil {
		return nil, fmt.Errorf("解析内置话者元数据失败: %w", err)
	}

	c := &catalog{styleModel: make(map[uint32]int)}
	addStyles := func(m Model, meta SpeakerMeta) error {
		for _, st := range meta.Styles {
			if _, dup := c.styleModel[st.ID]; dup {
				return fmt.Errorf("话者 %q 的风格 ID %d 与已有风格重复", meta.Name, st.ID)
			}
			c.styleModel[st.ID] = m.Index
			m.Styles = append(m.Styles, st.ID)
		}
		c.models = append(c.models, m)
		c.speakers = append(c.speakers, meta)
		return nil
	}

	for _, meta := range speakers {
		m := Model{Index: len(c.models), Kind: ModelBuiltin, Name: "builtin-" + meta.SpeakerUUID[:8]}
		if err := addStyles(m, meta); err != nil {
			return nil, err
		}
	}
	for i := range models {
		mc := &models[i]
		meta := SpeakerMeta{
			Name:        mc.Name,
			Styles:      []Style{{Name: "ノーマル", ID: mc.SpeakerID}},
			SpeakerUUID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("voicevox-capi:sherpa:"+mc.Name)).String(),
			Version:     Version,
		}
		m := Model{Index: len(c.models), Kind: ModelSherpa, Name: mc.Name, Sherpa: mc}
		if err := addStyles(m, meta); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(c.speakers)
	if err != nil {
		return nil, err
	}
	c.metasJSON = string(data)
	return c, nil
}

// modelIndex 返回风格所属的模型序号。
func (c *catalog) modelIndex(speakerID uint32) (int, error) {
	idx, ok := c.styleModel[speakerID]
	if !ok {
		return 0, speakerError(KindInvalidSpeakerID, speakerID)
	}
	if idx < 0 || idx >= len(c.models) {
		e := speakerError(KindInvalidModelIndex, speakerID)
		e.Model = idx
		return 0, e
	}
	return idx, nil
}
