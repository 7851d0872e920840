// Package extents reads local space vertex extents out of glTF documents, so colliders
// can be fitted to renderable geometry without loading it for rendering.
package extents

import (
	"io"

	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Mesh holds the POSITION data of every primitive of one glTF mesh, in mesh space.
type Mesh struct {
	Name   string
	Points []mgl64.Vec3
}

// LocalExtremes returns the vertices of the mesh.
func (m Mesh) LocalExtremes() []mgl64.Vec3 {
	return m.Points
}

func (m Mesh) Bounds() volume.Bounds {
	return volume.BoundsFromPoints(m.Points)
}

// Volume fits a volume of the given kind around the mesh.
func (m Mesh) Volume(kind volume.Kind) volume.Volume {
	return volume.FromExtents(kind, m)
}

// Read decodes a glTF or GLB stream. Buffers must be embedded.
func Read(r io.Reader) ([]Mesh, error) {
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to read gltf")
	}

	return FromDocument(doc)
}

// Load opens a glTF file, external buffers are resolved relative to it.
func Load(path string) ([]Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open gltf %q", path)
	}

	return FromDocument(doc)
}

// FromDocument extracts one Mesh per document mesh, in document order.
// Meshes without any POSITION attribute are skipped.
func FromDocument(doc *gltf.Document) ([]Mesh, error) {
	meshes := make([]Mesh, 0, len(doc.Meshes))

	for iMesh, mesh := range doc.Meshes {
		var points []mgl64.Vec3

		for iPrimitive, primitive := range mesh.Primitives {
			accessor, ok := primitive.Attributes["POSITION"]
			if !ok {
				continue
			}
			if int(accessor) >= len(doc.Accessors) {
				return nil, errors.Errorf("mesh %d primitive %d: position accessor %d out of range", iMesh, iPrimitive, accessor)
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[accessor], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to read positions of mesh %q", mesh.Name)
			}
			for _, p := range positions {
				points = append(points, mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
			}
		}

		if len(points) == 0 {
			continue
		}
		meshes = append(meshes, Mesh{Name: mesh.Name, Points: points})
	}

	return meshes, nil
}

// Find returns the first mesh called name.
func Find(meshes []Mesh, name string) (Mesh, bool) {
	for _, m := range meshes {
		if m.Name == name {
			return m, true
		}
	}

	return Mesh{}, false
}
