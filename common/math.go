package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// IdentityMatrix returns a 4x4 identity matrix in column-major order.
//
// Returns:
//   - [16]float32: the identity matrix
func IdentityMatrix() [16]float32 {
	return [16]float32(mgl32.Ident4())
}

// IdentityQuaternion returns the identity rotation as (x, y, z, w).
func IdentityQuaternion() [4]float32 {
	return [4]float32{0, 0, 0, 1}
}

// ComposeMatrix builds a column-major local matrix from translation, rotation and scale,
// applied in T * R * S order as glTF requires.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion (x, y, z, w)
//   - s: the scale
//
// Returns:
//   - [16]float32: the composed matrix
func ComposeMatrix(t [3]float32, r [4]float32, s [3]float32) [16]float32 {
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	if q.Len() > 0 {
		q = q.Normalize()
	} else {
		q = mgl32.QuatIdent()
	}
	m := mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	return [16]float32(m)
}

// DecomposeMatrix splits a column-major matrix into translation, rotation and scale.
// Shear is not represented; a negative determinant is folded into the X scale.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - [3]float32: the translation
//   - [4]float32: the rotation quaternion (x, y, z, w)
//   - [3]float32: the scale
func DecomposeMatrix(m [16]float32) ([3]float32, [4]float32, [3]float32) {
	mat := mgl32.Mat4(m)
	t := [3]float32{m[12], m[13], m[14]}

	sx := mat.Col(0).Vec3().Len()
	sy := mat.Col(1).Vec3().Len()
	sz := mat.Col(2).Vec3().Len()
	if mat.Mat3().Det() < 0 {
		sx = -sx
	}
	s := [3]float32{sx, sy, sz}

	if math32.Abs(sx) < 1e-6 || math32.Abs(sy) < 1e-6 || math32.Abs(sz) < 1e-6 {
		return t, IdentityQuaternion(), s
	}

	rot := mgl32.Mat3FromCols(
		mat.Col(0).Vec3().Mul(1/sx),
		mat.Col(1).Vec3().Mul(1/sy),
		mat.Col(2).Vec3().Mul(1/sz),
	)
	q := mgl32.Mat4ToQuat(rot.Mat4()).Normalize()
	return t, [4]float32{q.V[0], q.V[1], q.V[2], q.W}, s
}

// MulMatrix multiplies two column-major matrices (a * b).
func MulMatrix(a, b [16]float32) [16]float32 {
	return [16]float32(mgl32.Mat4(a).Mul4(mgl32.Mat4(b)))
}

// InvertMatrix returns the inverse of a column-major matrix. A singular matrix yields the zero matrix.
func InvertMatrix(m [16]float32) [16]float32 {
	return [16]float32(mgl32.Mat4(m).Inv())
}

// TransformPoint applies a column-major matrix to a point.
func TransformPoint(m [16]float32, p [3]float32) [3]float32 {
	v := mgl32.Mat4(m).Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	return [3]float32{v[0], v[1], v[2]}
}

// Normalize3 returns v scaled to unit length, or fallback when v is degenerate.
func Normalize3(v, fallback [3]float32) [3]float32 {
	length := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 1e-6 {
		return fallback
	}
	inv := 1 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// BoundingBox computes the axis-aligned bounds of a flat xyz position array.
//
// Parameters:
//   - positions: packed positions, three floats per vertex
//
// Returns:
//   - [3]float32: the minimum corner
//   - [3]float32: the maximum corner
func BoundingBox(positions []float32) ([3]float32, [3]float32) {
	if len(positions) < 3 {
		return [3]float32{}, [3]float32{}
	}

	bmin := [3]float32{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	bmax := [3]float32{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}

	for i := 0; i+2 < len(positions); i += 3 {
		for j := 0; j < 3; j++ {
			v := positions[i+j]
			if v < bmin[j] {
				bmin[j] = v
			}
			if v > bmax[j] {
				bmax[j] = v
			}
		}
	}

	return bmin, bmax
}
