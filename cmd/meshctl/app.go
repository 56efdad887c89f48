package main

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/ops"
	"github.com/chazu/facet/pkg/script"
	"github.com/chazu/facet/pkg/tessellate"
)

// App runs scripts and turns the resulting mesh into a report.
type App struct {
	engine *script.Engine
	kernel kernel.Kernel
}

// EvalOptions selects the steps run after the script.
type EvalOptions struct {
	CreateFaces bool
	CloseHoles  bool    // implies CreateFaces
	Triangles   bool    // tessellate proper faces
	Extrude     float64 // > 0 extrudes through the kernel instead of flat triangles
	Solid       bool    // with Extrude, union the faces into one part
}

// FaceData describes one face of the result.
type FaceData struct {
	ID     int     `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Hole   bool    `json:"hole" yaml:"hole"`
	Parent int     `json:"parent" yaml:"parent"`
	Edges  int     `json:"edges" yaml:"edges"`
	Area   float64 `json:"area" yaml:"area"`
}

// MeshData is one tessellated face.
type MeshData struct {
	Vertices []float32 `json:"vertices" yaml:"vertices,flow"`
	Normals  []float32 `json:"normals" yaml:"normals,flow"`
	Indices  []uint32  `json:"indices" yaml:"indices,flow"`
	FaceName string    `json:"faceName" yaml:"faceName"`
	Color    string    `json:"color" yaml:"color"`
}

// EvalErrorData is a script or pipeline error.
type EvalErrorData struct {
	Line    int    `json:"line" yaml:"line"`
	Col     int    `json:"col" yaml:"col"`
	Message string `json:"message" yaml:"message"`
}

// FindingData is one mesh validation finding.
type FindingData struct {
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
}

// EvalResult is the full report of one run.
type EvalResult struct {
	Vertices    int             `json:"vertices" yaml:"vertices"`
	Edges       int             `json:"edges" yaml:"edges"`
	Faces       []FaceData      `json:"faces" yaml:"faces"`
	Linked      int             `json:"linked" yaml:"linked"`
	HolesClosed int             `json:"holesClosed" yaml:"holesClosed"`
	Meshes      []MeshData      `json:"meshes" yaml:"meshes"`
	Findings    []FindingData   `json:"findings" yaml:"findings"`
	Errors      []EvalErrorData `json:"errors" yaml:"errors"`
}

// HasErrors reports whether the run failed or produced an invalid mesh.
func (r EvalResult) HasErrors() bool {
	if len(r.Errors) > 0 {
		return true
	}
	for _, f := range r.Findings {
		if f.Severity == mesh.SeverityError.String() {
			return true
		}
	}
	return false
}

// NewApp creates an App from cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		engine: script.NewEngine(cfg.ScriptOptions()...),
		kernel: cfg.NewKernel(),
	}
}

// Evaluate runs source and the steps in opts.
func (a *App) Evaluate(source string, opts EvalOptions) EvalResult {
	result := EvalResult{
		Faces:    []FaceData{},
		Meshes:   []MeshData{},
		Findings: []FindingData{},
		Errors:   []EvalErrorData{},
	}
	fail := func(msg string) EvalResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	m, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logging.Logger().Error("meshctl: evaluate", "err", err)
		return fail(err.Error())
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(evalErrs) > 0 {
		return result
	}

	if opts.CreateFaces || opts.CloseHoles {
		sum, err := ops.CreateFaces(m)
		if err != nil {
			return fail("create faces: " + err.Error())
		}
		result.Linked = sum.Linked
	}
	if opts.CloseHoles {
		n, err := ops.CloseHoles(m)
		if err != nil {
			return fail("close holes: " + err.Error())
		}
		result.HolesClosed = n
	}

	result.Vertices = m.NumVertices()
	result.Edges = m.NumEdges() / 2
	for _, id := range m.Faces() {
		f := m.MustFace(id)
		result.Faces = append(result.Faces, FaceData{
			ID:     int(f.ID),
			Name:   f.Name,
			Hole:   f.Hole,
			Parent: int(f.Parent),
			Edges:  len(m.FaceBoundary(id)),
			Area:   math.Abs(geom.SignedArea(m.BoundaryPoints(f.Edge))),
		})
	}
	for _, v := range mesh.Validate(m) {
		result.Findings = append(result.Findings, FindingData{Severity: v.Severity.String(), Message: v.Error()})
	}

	if !opts.Triangles {
		return result
	}
	var meshes []*kernel.Mesh
	switch {
	case opts.Extrude > 0 && opts.Solid:
		var part *kernel.Mesh
		if part, err = tessellate.Solid(m, a.kernel, opts.Extrude); part != nil {
			meshes = []*kernel.Mesh{part}
		}
	case opts.Extrude > 0:
		meshes, err = tessellate.Extrude(m, a.kernel, opts.Extrude)
	default:
		meshes, err = tessellate.Flat(m)
	}
	if err != nil {
		return fail("tessellation failed: " + err.Error())
	}
	colors := palette(len(meshes))
	for i, km := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: km.Vertices,
			Normals:  km.Normals,
			Indices:  km.Indices,
			FaceName: km.FaceName,
			Color:    colors[i],
		})
	}
	return result
}

// palette returns n distinct hex colors spaced evenly around the hue wheel.
func palette(n int) []string {
	out := make([]string, n)
	for i := range out {
		h := math.Mod(210+float64(i)*360/float64(max(n, 1)), 360)
		out[i] = colorful.Hsv(h, 0.55, 0.85).Hex()
	}
	return out
}
