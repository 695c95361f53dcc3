package model

// --- Transform Types ---

// Transform represents a decomposed local transform.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a Transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// --- Topology ---

// Topology is the primitive assembly mode of a SubMesh.
type Topology int

const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyLineLoop
	TopologyLineStrip
	TopologyTriangles
	TopologyTriangleStrip
	TopologyTriangleFan
)

func (t Topology) String() string {
	switch t {
	case TopologyPoints:
		return "points"
	case TopologyLines:
		return "lines"
	case TopologyLineLoop:
		return "line_loop"
	case TopologyLineStrip:
		return "line_strip"
	case TopologyTriangles:
		return "triangles"
	case TopologyTriangleStrip:
		return "triangle_strip"
	case TopologyTriangleFan:
		return "triangle_fan"
	default:
		return "unknown"
	}
}

// --- Animation Types ---

// Interpolation selects how an AnimationTrack blends between keys.
type Interpolation int

const (
	// InterpolationLinear blends linearly (spherically for rotations).
	InterpolationLinear Interpolation = iota
	// InterpolationStep holds each key's value until the next key.
	InterpolationStep
	// InterpolationCubicSpline uses Hermite splines with per-key tangents.
	InterpolationCubicSpline
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationStep:
		return "STEP"
	case InterpolationCubicSpline:
		return "CUBICSPLINE"
	default:
		return "LINEAR"
	}
}

// AnimationProperty names the node property an AnimationTrack drives.
type AnimationProperty string

const (
	PropertyTranslation AnimationProperty = "translation"
	PropertyRotation    AnimationProperty = "rotation"
	PropertyScale       AnimationProperty = "scale"
	// PropertyMorphWeight drives Node.MorphWeights[TargetIndex].
	PropertyMorphWeight AnimationProperty = "weight"
)

// Keyframe stores a value at a specific time. Tangents are only set for cubic-spline tracks.
type Keyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value holds 3 floats for translation/scale, 4 for rotation, 1 for morph weights.
	Value []float32

	// InTangent is the incoming tangent (cubic spline only).
	InTangent []float32

	// OutTangent is the outgoing tangent (cubic spline only).
	OutTangent []float32
}
