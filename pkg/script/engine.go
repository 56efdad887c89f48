// Package script is the Lisp front-end for building meshes.
// It wraps zygomys in a sandboxed environment and produces a *mesh.Mesh
// from user source code.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/logging"
	"github.com/chazu/facet/pkg/mesh"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// DefaultExtent bounds meshes built by an Engine without WithExtent.
var DefaultExtent = geom.Cube(geom.V(-1000, -1000, -1000), geom.V(1000, 1000, 1000))

// DefaultCurveSegments is the number of segments a bezier is flattened into
// when the script does not pass :segments.
const DefaultCurveSegments = 8

// Option configures an Engine.
type Option func(*Engine)

// WithExtent sets the extent of every mesh the engine builds.
func WithExtent(c geom.AlignedCube) Option {
	return func(e *Engine) { e.extent = c }
}

// WithTimeout replaces DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMeshOptions passes options to mesh.New for every evaluation.
func WithMeshOptions(opts ...mesh.Option) Option {
	return func(e *Engine) { e.meshOpts = append(e.meshOpts, opts...) }
}

// WithCurveSegments sets the default bezier flattening.
func WithCurveSegments(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.segments = n
		}
	}
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh mesh.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	extent   geom.AlignedCube
	timeout  time.Duration
	segments int
	meshOpts []mesh.Option
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		extent:   DefaultExtent,
		timeout:  DefaultTimeout,
		segments: DefaultCurveSegments,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate runs Lisp source code and returns the mesh it built.
//
// Return semantics:
//   - On success: returns mesh + nil errors + nil error
//   - On parse/eval failure: returns nil mesh + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*mesh.Mesh, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("script: panic during evaluation: %v", r)}
			}
		}()

		m, evalErrs, err := e.evaluate(source)
		ch <- evalResult{mesh: m, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*mesh.Mesh, []EvalError, error) {
	m := mesh.New(e.extent, e.meshOpts...)

	// Empty source is a valid program that produces an empty mesh.
	if strings.TrimSpace(source) == "" {
		return m, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &builder{m: m, segments: e.segments})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	logging.Logger().Debug("script: evaluated",
		"vertices", m.NumVertices(), "edges", m.NumEdges(), "faces", m.NumFaces())
	return m, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
