package volume

// FromExtents builds a volume of the given kind around the local extreme points of src.
// A frustum cannot be fitted to points and panics.
func FromExtents(kind Kind, src ExtentSource) Volume {
	points := src.LocalExtremes()
	if len(points) == 0 {
		fatalf("extent source has no points")
	}

	switch kind {
	case KindAABB:
		return NewAABBFromPoints(points)
	case KindOBB:
		return NewOBBFromPoints(points)
	case KindSphere:
		return NewSphereFromPoints(points)
	}

	fatalf("cannot fit a %s volume to extents", kind)
	return nil
}
