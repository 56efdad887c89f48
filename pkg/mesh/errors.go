package mesh

import (
	"errors"
	"fmt"

	"github.com/chazu/facet/pkg/geom"
)

var (
	// ErrDuplicate is matched by every *DuplicateError.
	ErrDuplicate = errors.New("mesh: duplicate element")

	// ErrInvalidState reports a request that would break the mesh's
	// invariants, such as removing a vertex that still has edges.
	ErrInvalidState = errors.New("mesh: invalid state")

	// ErrNotFound reports a handle that does not belong to the mesh.
	ErrNotFound = errors.New("mesh: element not found")

	// ErrOutOfExtent reports a position outside the mesh extent.
	ErrOutOfExtent = errors.New("mesh: position outside extent")
)

// DuplicateError is returned when an element already exists. It carries
// the existing element so callers can reuse it.
type DuplicateError struct {
	Vertex   VertexID // existing vertex at Position (vertex duplicates)
	Edge     EdgeID   // existing half-edge (edge duplicates)
	Position geom.Vec
}

func (e *DuplicateError) Error() string {
	if e.Edge != NoEdge {
		return fmt.Sprintf("mesh: duplicate element: half-edge %d already connects these vertices", e.Edge)
	}
	return fmt.Sprintf("mesh: duplicate element: vertex %d already at %v", e.Vertex, e.Position)
}

// Is makes errors.Is(err, ErrDuplicate) hold.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
