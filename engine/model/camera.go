package model

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraType distinguishes perspective from orthographic projection.
type CameraType int

const (
	CameraPerspective CameraType = iota
	CameraOrthographic
)

// Camera holds projection parameters. It is attached to a Node, which provides the view transform.
type Camera struct {
	Name string
	Type CameraType

	// YFov is the vertical field of view in radians (perspective only).
	YFov float32

	// AspectRatio is 0 when the viewport aspect should be used (perspective only).
	AspectRatio float32

	// XMag and YMag are the half extents of the view volume (orthographic only).
	XMag float32
	YMag float32

	ZNear float32

	// ZFar is 0 for an infinite perspective projection.
	ZFar float32
}

// ProjectionMatrix returns the column-major projection matrix of the camera.
//
// Parameters:
//   - viewportAspect: the width / height ratio used when the camera has no aspect ratio
//
// Returns:
//   - [16]float32: the projection matrix
func (c *Camera) ProjectionMatrix(viewportAspect float32) [16]float32 {
	if c.Type == CameraOrthographic {
		return [16]float32(mgl32.Ortho(-c.XMag, c.XMag, -c.YMag, c.YMag, c.ZNear, c.ZFar))
	}

	aspect := common.Coalesce(c.AspectRatio, viewportAspect, 1)
	if c.ZFar != 0 {
		return [16]float32(mgl32.Perspective(c.YFov, aspect, c.ZNear, c.ZFar))
	}

	// infinite far plane
	f := 1 / math32.Tan(c.YFov/2)
	var m [16]float32
	m[0] = f / aspect
	m[5] = f
	m[10] = -1
	m[11] = -1
	m[14] = -2 * c.ZNear
	return m
}

// ViewMatrix returns the view matrix of the camera when placed by node: the inverse of the
// node's world matrix.
//
// Parameters:
//   - node: the node carrying the camera
//
// Returns:
//   - [16]float32: the view matrix
func (c *Camera) ViewMatrix(node *Node) [16]float32 {
	return common.InvertMatrix(node.WorldMatrix())
}
