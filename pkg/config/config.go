// Package config loads facet settings from TOML.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default.
//
//	[mesh]
//	min = [-500.0, -500.0, -10.0]
//	max = [500.0, 500.0, 10.0]
//
//	[index]
//	cell_load = 16
//
//	[script]
//	timeout = "2s"
//
//	[kernel]
//	mesh_cells = 120
//
//	[log]
//	level = "debug"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/octree"
	"github.com/chazu/facet/pkg/script"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full settings tree.
type Config struct {
	Mesh   MeshConfig   `toml:"mesh"`
	Index  IndexConfig  `toml:"index"`
	Script ScriptConfig `toml:"script"`
	Kernel KernelConfig `toml:"kernel"`
	Log    LogConfig    `toml:"log"`
}

// MeshConfig bounds the region meshes may occupy.
type MeshConfig struct {
	Min [3]float64 `toml:"min"`
	Max [3]float64 `toml:"max"`
}

// IndexConfig tunes the octree behind every mesh.
type IndexConfig struct {
	CellLoad     int `toml:"cell_load"`
	CollapseLoad int `toml:"collapse_load"`
	MaxDepth     int `toml:"max_depth"`
}

// ScriptConfig tunes the script engine.
type ScriptConfig struct {
	Timeout       string `toml:"timeout"` // time.ParseDuration syntax
	CurveSegments int    `toml:"curve_segments"`
}

// KernelConfig tunes extrusion meshing.
type KernelConfig struct {
	MeshCells int `toml:"mesh_cells"` // marching cubes cells along the longest axis
}

// LogConfig selects the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Min: [3]float64{-1000, -1000, -1000},
			Max: [3]float64{1000, 1000, 1000},
		},
		Index: IndexConfig{
			CellLoad:     octree.DefaultCellLoad,
			CollapseLoad: octree.DefaultCollapseLoad,
			MaxDepth:     octree.DefaultMaxDepth,
		},
		Script: ScriptConfig{
			Timeout:       script.DefaultTimeout.String(),
			CurveSegments: script.DefaultCurveSegments,
		},
		Kernel: KernelConfig{MeshCells: sdfx.DefaultMeshCells},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return data, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	for i := range 3 {
		if c.Mesh.Min[i] >= c.Mesh.Max[i] {
			return fmt.Errorf("mesh: min[%d]=%g not below max[%d]=%g: %w",
				i, c.Mesh.Min[i], i, c.Mesh.Max[i], ErrInvalid)
		}
	}
	if c.Index.CellLoad < 1 {
		return fmt.Errorf("index: cell_load must be positive, got %d: %w", c.Index.CellLoad, ErrInvalid)
	}
	if c.Index.CollapseLoad < 0 || c.Index.CollapseLoad >= c.Index.CellLoad {
		return fmt.Errorf("index: collapse_load must be in [0, cell_load), got %d: %w",
			c.Index.CollapseLoad, ErrInvalid)
	}
	if c.Index.MaxDepth < 1 {
		return fmt.Errorf("index: max_depth must be positive, got %d: %w", c.Index.MaxDepth, ErrInvalid)
	}
	if _, err := c.ScriptTimeout(); err != nil {
		return err
	}
	if c.Script.CurveSegments < 1 {
		return fmt.Errorf("script: curve_segments must be positive, got %d: %w",
			c.Script.CurveSegments, ErrInvalid)
	}
	if c.Kernel.MeshCells < 8 {
		return fmt.Errorf("kernel: mesh_cells must be at least 8, got %d: %w", c.Kernel.MeshCells, ErrInvalid)
	}
	return nil
}

// Extent is the mesh bounding box.
func (c *Config) Extent() geom.AlignedCube {
	return geom.Cube(
		geom.V(c.Mesh.Min[0], c.Mesh.Min[1], c.Mesh.Min[2]),
		geom.V(c.Mesh.Max[0], c.Mesh.Max[1], c.Mesh.Max[2]),
	)
}

// ScriptTimeout parses Script.Timeout.
func (c *Config) ScriptTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Script.Timeout)
	if err != nil {
		return 0, fmt.Errorf("script: timeout: %w: %w", err, ErrInvalid)
	}
	if d <= 0 {
		return 0, fmt.Errorf("script: timeout must be positive, got %s: %w", d, ErrInvalid)
	}
	return d, nil
}

// LogLevel maps Log.Level to a slog level.
func (c *Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Log.Level)
}

// MeshOptions converts the index settings into mesh options.
func (c *Config) MeshOptions() []mesh.Option {
	return []mesh.Option{
		mesh.WithIndex(
			octree.WithCellLoad(c.Index.CellLoad),
			octree.WithCollapseLoad(c.Index.CollapseLoad),
			octree.WithMaxDepth(c.Index.MaxDepth),
		),
	}
}

// ScriptOptions configures a script engine from c. c must be valid.
func (c *Config) ScriptOptions() []script.Option {
	d, _ := c.ScriptTimeout()
	return []script.Option{
		script.WithExtent(c.Extent()),
		script.WithTimeout(d),
		script.WithCurveSegments(c.Script.CurveSegments),
		script.WithMeshOptions(c.MeshOptions()...),
	}
}

// NewKernel returns the extrusion kernel configured by c.
func (c *Config) NewKernel() *sdfx.SdfxKernel {
	return sdfx.New(c.Kernel.MeshCells)
}

// NewMesh returns an empty mesh built from c.
func (c *Config) NewMesh(opts ...mesh.Option) *mesh.Mesh {
	return mesh.New(c.Extent(), append(c.MeshOptions(), opts...)...)
}
