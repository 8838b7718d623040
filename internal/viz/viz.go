// Package viz генерирует neuroglancer-состояние для обработанного
// датасета: по одному image-слою на канал, с цветом по длине волны
// эмиссии. Состояние пишется рядом с run record, downstream-этапы
// выкладывают его в хранилище вместе с результатами.
package viz

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/domain"
)

// Filename — имя файла состояния в папке результатов.
const Filename = "neuroglancer_config.json"

// Dimension — размер вокселя по одной оси.
type Dimension struct {
	VoxelSize float64 `json:"voxel_size"`
	Unit      string  `json:"unit"`
}

// Shader — цветовая настройка слоя.
type Shader struct {
	Color   string `json:"color"`
	Emitter string `json:"emitter"`
	Vec     string `json:"vec"`
}

// Layer — один image-слой состояния.
type Layer struct {
	Source  string `json:"source"`
	Type    string `json:"type"`
	Channel int    `json:"channel"`
	Name    string `json:"name"`
	Opacity int    `json:"opacity"`
	Blend   string `json:"blend"`
	Tab     string `json:"tab"`
	Shader  Shader `json:"shader"`

	ShaderControls map[string]any `json:"shaderControls"`
}

// State — neuroglancer-состояние датасета.
type State struct {
	Title                   string               `json:"title"`
	Dimensions              map[string]Dimension `json:"dimensions"`
	Layers                  []Layer              `json:"layers"`
	CrossSectionOrientation [4]float64           `json:"crossSectionOrientation"`
	CrossSectionScale       float64              `json:"crossSectionScale"`

	// Link — готовая ссылка на состояние после выкладки в хранилище.
	Link string `json:"ng_link,omitempty"`
}

// Build собирает состояние из успешно отправленных запусков.
//
// Слои следуют порядку handles (отсортированы по имени канала);
// источник каждого слоя — zarr поверх output-префикса запуска.
func Build(cfg config.Viz, dataset, bucket string, handles []domain.RunHandle) (*State, error) {
	if len(handles) == 0 {
		return nil, fmt.Errorf("viz state for %s: no runs", dataset)
	}

	layers := make([]Layer, 0, len(handles))
	for _, h := range handles {
		ch := domain.Channel{Name: h.Channel}
		layers = append(layers, Layer{
			Source:  fmt.Sprintf("zarr://s3://%s/%s", bucket, h.OutputPrefix),
			Type:    "image",
			Channel: 0,
			Name:    h.Channel,
			Opacity: 1,
			Blend:   "additive",
			Tab:     "rendering",
			Shader: Shader{
				Color:   ColorForEmission(ch.Emission()),
				Emitter: "RGB",
				Vec:     "vec3",
			},
			ShaderControls: map[string]any{
				"normalized": map[string]any{"range": []int{0, 200}},
			},
		})
	}

	state := &State{
		Title: dataset,
		Dimensions: map[string]Dimension{
			"x": {VoxelSize: cfg.ResolutionXYZ[0], Unit: "microns"},
			"y": {VoxelSize: cfg.ResolutionXYZ[1], Unit: "microns"},
			"z": {VoxelSize: cfg.ResolutionXYZ[2], Unit: "microns"},
			"t": {VoxelSize: 0.001, Unit: "seconds"},
		},
		Layers:                  layers,
		CrossSectionOrientation: [4]float64{0.5, 0.5, 0.5, -0.5},
		CrossSectionScale:       15,
	}

	if cfg.BaseURL != "" {
		state.Link = cfg.BaseURL + "#!" +
			"s3://" + path.Join(bucket, dataset, Filename)
	}

	return state, nil
}

// Write сохраняет состояние в dir/Filename.
func Write(dir string, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal viz state: %w", err)
	}
	p := filepath.Join(dir, Filename)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write viz state %s: %w", p, err)
	}
	return nil
}
