package mesh

import (
	"fmt"
	"sync/atomic"
)

// VertexID identifies a vertex. Ids are unique within the process and
// strictly increasing in creation order.
type VertexID int64

// EdgeID identifies a half-edge. Ids are unique within the process.
type EdgeID int64

// FaceID identifies a face within one mesh. Negative ids are reserved labels.
type FaceID int

const (
	NoVertex VertexID = 0
	NoEdge   EdgeID   = 0

	NoFace       FaceID = 0
	InfinityFace FaceID = -1 // the unbounded outer region
	HoleFace     FaceID = -2 // region enclosed by a hole rim
)

func (f FaceID) String() string {
	switch f {
	case NoFace:
		return "none"
	case InfinityFace:
		return "infinity"
	case HoleFace:
		return "hole"
	}
	return fmt.Sprintf("f%d", int(f))
}

// Reserved reports whether f is one of the reserved labels, not a real face.
func (f FaceID) Reserved() bool {
	return f <= 0
}

var (
	vertexCounter atomic.Int64
	edgeCounter   atomic.Int64
)

func nextVertexID() VertexID {
	return VertexID(vertexCounter.Add(1))
}

func nextEdgeID() EdgeID {
	return EdgeID(edgeCounter.Add(1))
}
