package script

import (
	"errors"
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/ops"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
// It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//  2. Kebab-case to underscore: create-faces -> create_faces
//  3. Lisp line comments: ; and ;; become //
//
// zygomys reads a hyphen inside an identifier as subtraction, so builtin
// names are registered in underscore form. All transformations respect
// string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipString(b, i)
			result = append(result, b[i:j]...)
			i = j
		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			result = append(result, b[i:j]...)
			i = j
		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipString returns the index just past the double-quoted literal that
// starts at b[i].
func skipString(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing mesh handles through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec geom.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpVertex struct {
	id mesh.VertexID
}

func (v *sexpVertex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertex #%d)", v.id)
}
func (v *sexpVertex) Type() *zygo.RegisteredType { return nil }

type sexpEdge struct {
	id mesh.EdgeID
}

func (e *sexpEdge) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(edge #%d)", e.id)
}
func (e *sexpEdge) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports the keyword name of a preprocessed keyword string.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toEdge extracts an EdgeID from a sexpEdge.
func toEdge(s zygo.Sexp) (mesh.EdgeID, error) {
	if e, ok := s.(*sexpEdge); ok {
		return e.id, nil
	}
	return mesh.NoEdge, fmt.Errorf("expected edge, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands list and array arguments in place, one level deep.
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

func sexpInt(n int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(n)}
}

// ---------------------------------------------------------------------------
// Mesh building
// ---------------------------------------------------------------------------

// builder applies builtin calls to the mesh under construction.
type builder struct {
	m        *mesh.Mesh
	segments int
}

// addVertex inserts p, reusing the vertex already at p.
func (b *builder) addVertex(p geom.Vec) (mesh.VertexID, error) {
	v, err := b.m.AddVertex(p, nil)
	var dup *mesh.DuplicateError
	if errors.As(err, &dup) {
		return dup.Vertex, nil
	}
	return v, err
}

// vertex resolves a vertex reference or a vec3 to a vertex of the mesh.
func (b *builder) vertex(s zygo.Sexp) (mesh.VertexID, error) {
	switch v := s.(type) {
	case *sexpVertex:
		if _, ok := b.m.Vertex(v.id); !ok {
			return mesh.NoVertex, fmt.Errorf("vertex #%d: %w", v.id, mesh.ErrNotFound)
		}
		return v.id, nil
	case *sexpVec3:
		return b.addVertex(v.vec)
	}
	return mesh.NoVertex, fmt.Errorf("expected vertex or vec3, got %T (%s)", s, s.SexpString(nil))
}

// point resolves a vertex reference or a vec3 to a position.
func (b *builder) point(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	id, err := b.vertex(s)
	if err != nil {
		return geom.Vec{}, err
	}
	return b.m.Position(id), nil
}

// connect links a and c, reusing an existing edge between them.
func (b *builder) connect(a, c mesh.VertexID) (mesh.EdgeID, error) {
	if e, ok := b.m.EdgeBetween(a, c); ok {
		return e, nil
	}
	return b.m.Connect(a, c, nil, nil)
}

// chain connects consecutive vertices, closing the loop when closed is set.
// It returns the first edge.
func (b *builder) chain(vs []mesh.VertexID, closed bool) (mesh.EdgeID, error) {
	first := mesh.NoEdge
	n := len(vs)
	if !closed {
		n--
	}
	for i := 0; i < n; i++ {
		a, c := vs[i], vs[(i+1)%len(vs)]
		if a == c {
			continue
		}
		e, err := b.connect(a, c)
		if err != nil {
			return mesh.NoEdge, err
		}
		if first == mesh.NoEdge {
			first = e
		}
	}
	return first, nil
}

// position parses (x y) or (x y z) numbers, or a single vec3.
func position(args []zygo.Sexp) (geom.Vec, error) {
	if len(args) == 1 {
		if v, ok := args[0].(*sexpVec3); ok {
			return v.vec, nil
		}
	}
	if len(args) != 2 && len(args) != 3 {
		return geom.Vec{}, fmt.Errorf("expected a vec3 or 2-3 coordinates, got %d arguments", len(args))
	}
	var c [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return geom.Vec{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		c[i] = f
	}
	return geom.V(c[0], c[1], c[2]), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the mesh builtins into a zygomys environment.
// Source code must be preprocessed with preprocessSource() so that
// :keyword tokens and kebab-case names match.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		p, err := position(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: p}, nil
	})

	// -----------------------------------------------------------------------
	// (vertex x y) (vertex x y z) (vertex (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := position(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: %w", err)
		}
		id, err := b.addVertex(p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: %w", err)
		}
		return &sexpVertex{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (connect a b) where a and b are vertices or vec3s
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("connect requires exactly 2 arguments, got %d", len(args))
		}
		a, err := b.vertex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: from: %w", err)
		}
		c, err := b.vertex(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: to: %w", err)
		}
		e, err := b.connect(a, c)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		return &sexpEdge{id: e}, nil
	})

	// -----------------------------------------------------------------------
	// (disconnect edge)
	// -----------------------------------------------------------------------
	env.AddFunction("disconnect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("disconnect requires exactly 1 argument, got %d", len(args))
		}
		e, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("disconnect: %w", err)
		}
		if err := b.m.Disconnect(e); err != nil {
			return zygo.SexpNull, fmt.Errorf("disconnect: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (polygon p0 p1 p2 ...) closed loop through vertices, vec3s or lists
	// of them. Returns the first edge.
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items, err := flatten(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if len(items) < 3 {
			return zygo.SexpNull, fmt.Errorf("polygon requires at least 3 points, got %d", len(items))
		}
		vs := make([]mesh.VertexID, 0, len(items))
		for i, it := range items {
			v, err := b.vertex(it)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: point %d: %w", i, err)
			}
			vs = append(vs, v)
		}
		e, err := b.chain(vs, true)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		return &sexpEdge{id: e}, nil
	})

	// -----------------------------------------------------------------------
	// (bezier p0 p1 p2 p3 :segments 8) open polyline along a cubic curve.
	// Returns the array of vertices so it can feed polygon.
	// -----------------------------------------------------------------------
	env.AddFunction("bezier", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 4 {
			return zygo.SexpNull, fmt.Errorf("bezier requires 4 control points, got %d", len(pa.positional))
		}
		var ctl [4]geom.Vec
		for i, s := range pa.positional {
			p, err := b.point(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bezier: control point %d: %w", i, err)
			}
			ctl[i] = p
		}
		n := b.segments
		if v, ok := pa.kw["segments"]; ok {
			k, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bezier: segments: %w", err)
			}
			if k < 1 {
				return zygo.SexpNull, fmt.Errorf("bezier: segments must be positive, got %d", k)
			}
			n = k
		}

		curve := geom.Curve{P0: ctl[0], P1: ctl[1], P2: ctl[2], P3: ctl[3]}
		var vs []mesh.VertexID
		for _, p := range curve.Flatten(n) {
			v, err := b.addVertex(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bezier: %w", err)
			}
			vs = append(vs, v)
		}
		if _, err := b.chain(vs, false); err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: %w", err)
		}

		refs := make([]zygo.Sexp, len(vs))
		for i, v := range vs {
			refs[i] = &sexpVertex{id: v}
		}
		return &zygo.SexpArray{Val: refs}, nil
	})

	// -----------------------------------------------------------------------
	// (name-face edge "label") names the face left of edge.
	// -----------------------------------------------------------------------
	env.AddFunction("name_face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("name-face requires an edge and a name")
		}
		e, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name-face: %w", err)
		}
		label, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name-face: %w", err)
		}
		f := b.m.OwnerFace(e)
		if f == mesh.NoFace {
			return zygo.SexpNull, fmt.Errorf("name-face: edge #%d bounds no face", e)
		}
		if err := b.m.SetFaceName(f, label); err != nil {
			return zygo.SexpNull, fmt.Errorf("name-face: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (create-faces) returns the number of faces linked.
	// -----------------------------------------------------------------------
	env.AddFunction("create_faces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		sum, err := ops.CreateFaces(b.m)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("create-faces: %w", err)
		}
		return sexpInt(sum.Linked), nil
	})

	// -----------------------------------------------------------------------
	// (close-holes) returns the number of holes bridged.
	// -----------------------------------------------------------------------
	env.AddFunction("close_holes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := ops.CloseHoles(b.m)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("close-holes: %w", err)
		}
		return sexpInt(n), nil
	})

	// -----------------------------------------------------------------------
	// (face-count)
	// -----------------------------------------------------------------------
	env.AddFunction("face_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return sexpInt(b.m.NumFaces()), nil
	})
}
