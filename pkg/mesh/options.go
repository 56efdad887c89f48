package mesh

import (
	"fmt"

	"github.com/chazu/facet/pkg/octree"
)

// FaceFactory supplies the payload of a face that closes without replacing
// an existing face. edge is a boundary half-edge of the new face.
type FaceFactory func(edge EdgeID, parent FaceID) any

// Option configures a Mesh.
type Option func(*options)

type options struct {
	factory FaceFactory
	index   []octree.Option
}

func defaultOptions() options {
	return options{
		factory: func(edge EdgeID, _ FaceID) any { return fmt.Sprintf("face@%d", edge) },
	}
}

// WithFaceFactory sets the payload factory for newly closed faces.
func WithFaceFactory(f FaceFactory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithIndex passes options through to the octree.
func WithIndex(opts ...octree.Option) Option {
	return func(o *options) {
		o.index = append(o.index, opts...)
	}
}
