package loader

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AccessorData is a decoded accessor: exactly one typed slice is populated, matching
// ComponentType, holding Count * components values.
type AccessorData struct {
	ComponentType ComponentType
	Type          AccessorType
	Count         int
	Normalized    bool

	Int8    []int8
	Uint8   []uint8
	Int16   []int16
	Uint16  []uint16
	Uint32  []uint32
	Float32 []float32
}

// Components returns the number of components per element.
func (a *AccessorData) Components() int {
	return a.Type.ComponentCount()
}

// Len returns the total number of component values.
func (a *AccessorData) Len() int {
	switch a.ComponentType {
	case ComponentTypeByte:
		return len(a.Int8)
	case ComponentTypeUnsignedByte:
		return len(a.Uint8)
	case ComponentTypeShort:
		return len(a.Int16)
	case ComponentTypeUnsignedShort:
		return len(a.Uint16)
	case ComponentTypeUnsignedInt:
		return len(a.Uint32)
	default:
		return len(a.Float32)
	}
}

// Float32s converts the values to float32, applying the normalized-integer mapping
// when Normalized is set. Float data is returned without copying.
func (a *AccessorData) Float32s() []float32 {
	switch a.ComponentType {
	case ComponentTypeFloat:
		return a.Float32
	case ComponentTypeByte:
		return convert(a.Int8, func(v int8) float32 {
			if a.Normalized {
				return max(float32(v)/127, -1)
			}
			return float32(v)
		})
	case ComponentTypeUnsignedByte:
		return convert(a.Uint8, func(v uint8) float32 {
			if a.Normalized {
				return float32(v) / 255
			}
			return float32(v)
		})
	case ComponentTypeShort:
		return convert(a.Int16, func(v int16) float32 {
			if a.Normalized {
				return max(float32(v)/32767, -1)
			}
			return float32(v)
		})
	case ComponentTypeUnsignedShort:
		return convert(a.Uint16, func(v uint16) float32 {
			if a.Normalized {
				return float32(v) / 65535
			}
			return float32(v)
		})
	case ComponentTypeUnsignedInt:
		return convert(a.Uint32, func(v uint32) float32 { return float32(v) })
	default:
		return nil
	}
}

// Uint32s converts the values to uint32 (indices, joints). Negative integers clamp to zero.
func (a *AccessorData) Uint32s() []uint32 {
	switch a.ComponentType {
	case ComponentTypeUnsignedInt:
		return a.Uint32
	case ComponentTypeByte:
		return convert(a.Int8, func(v int8) uint32 { return uint32(max(v, 0)) })
	case ComponentTypeUnsignedByte:
		return convert(a.Uint8, func(v uint8) uint32 { return uint32(v) })
	case ComponentTypeShort:
		return convert(a.Int16, func(v int16) uint32 { return uint32(max(v, 0)) })
	case ComponentTypeUnsignedShort:
		return convert(a.Uint16, func(v uint16) uint32 { return uint32(v) })
	case ComponentTypeFloat:
		return convert(a.Float32, func(v float32) uint32 { return uint32(max(v, 0)) })
	default:
		return nil
	}
}

// Matrices groups MAT4 float data into column-major matrices.
func (a *AccessorData) Matrices() ([][16]float32, error) {
	if a.Type != AccessorMat4 {
		return nil, parseErrorf("expected MAT4 accessor, got %s", a.Type)
	}
	values := a.Float32s()
	out := make([][16]float32, a.Count)
	for i := range out {
		copy(out[i][:], values[i*16:(i+1)*16])
	}
	return out, nil
}

// --- Decoding ---

// accessorLayout describes where each component of an element lives.
type accessorLayout struct {
	componentType ComponentType
	count         int
	stride        int
	offsets       []int
}

// newAccessorLayout computes the component offsets of one element, padding matrix
// columns to 4-byte boundaries.
func newAccessorLayout(ct ComponentType, at AccessorType, count, stride int) (*accessorLayout, error) {
	size := ct.Size()
	if size == 0 {
		return nil, parseErrorf("invalid component type %d", ct)
	}
	n := at.ComponentCount()
	if n == 0 {
		return nil, parseErrorf("invalid accessor type %q", at)
	}

	offsets := make([]int, 0, n)
	if cols := at.columns(); cols > 0 {
		rows := n / cols
		colBytes := alignTo4(rows * size)
		for c := 0; c < cols; c++ {
			for r := 0; r < rows; r++ {
				offsets = append(offsets, c*colBytes+r*size)
			}
		}
	} else {
		for i := 0; i < n; i++ {
			offsets = append(offsets, i*size)
		}
	}

	return &accessorLayout{componentType: ct, count: count, stride: stride, offsets: offsets}, nil
}

// elementSize is the byte span of one element (last component end).
func (l *accessorLayout) elementSize() int {
	return l.offsets[len(l.offsets)-1] + l.componentType.Size()
}

// span is the number of bytes the layout reads starting at its first element.
func (l *accessorLayout) span() int {
	if l.count == 0 {
		return 0
	}
	return l.stride*(l.count-1) + l.elementSize()
}

// decode reads every element from raw into a new AccessorData.
func (l *accessorLayout) decode(raw []byte, at AccessorType, normalized bool) (*AccessorData, error) {
	if len(raw) < l.span() {
		return nil, parseErrorf("Buffer access is out of range: need %d bytes, have %d", l.span(), len(raw))
	}

	out := &AccessorData{ComponentType: l.componentType, Type: at, Count: l.count, Normalized: normalized}
	le := binary.LittleEndian

	switch l.componentType {
	case ComponentTypeByte:
		out.Int8 = decodeComponents(raw, l, func(b []byte) int8 { return int8(b[0]) })
	case ComponentTypeUnsignedByte:
		out.Uint8 = decodeComponents(raw, l, func(b []byte) uint8 { return b[0] })
	case ComponentTypeShort:
		out.Int16 = decodeComponents(raw, l, func(b []byte) int16 { return int16(le.Uint16(b)) })
	case ComponentTypeUnsignedShort:
		out.Uint16 = decodeComponents(raw, l, le.Uint16)
	case ComponentTypeUnsignedInt:
		out.Uint32 = decodeComponents(raw, l, le.Uint32)
	case ComponentTypeFloat:
		out.Float32 = decodeComponents(raw, l, func(b []byte) float32 { return math.Float32frombits(le.Uint32(b)) })
	default:
		return nil, parseErrorf("invalid component type %d", l.componentType)
	}
	return out, nil
}

// zeroAccessorData allocates a zero-filled AccessorData (accessors without a buffer view).
func zeroAccessorData(ct ComponentType, at AccessorType, count int, normalized bool) (*AccessorData, error) {
	n := at.ComponentCount() * count
	out := &AccessorData{ComponentType: ct, Type: at, Count: count, Normalized: normalized}
	switch ct {
	case ComponentTypeByte:
		out.Int8 = make([]int8, n)
	case ComponentTypeUnsignedByte:
		out.Uint8 = make([]uint8, n)
	case ComponentTypeShort:
		out.Int16 = make([]int16, n)
	case ComponentTypeUnsignedShort:
		out.Uint16 = make([]uint16, n)
	case ComponentTypeUnsignedInt:
		out.Uint32 = make([]uint32, n)
	case ComponentTypeFloat:
		out.Float32 = make([]float32, n)
	default:
		return nil, parseErrorf("invalid component type %d", ct)
	}
	if at.ComponentCount() == 0 {
		return nil, parseErrorf("invalid accessor type %q", at)
	}
	return out, nil
}

// applySparse overwrites the elements listed in indices with the matching elements of values.
func (a *AccessorData) applySparse(indices []uint32, values *AccessorData) error {
	if values.ComponentType != a.ComponentType {
		return parseErrorf("sparse values component type %s does not match %s", values.ComponentType, a.ComponentType)
	}
	n := a.Components()
	for _, idx := range indices {
		if int(idx) >= a.Count {
			return parseErrorf("sparse index %d out of range [0, %d)", idx, a.Count)
		}
	}

	switch a.ComponentType {
	case ComponentTypeByte:
		overrideElements(a.Int8, values.Int8, indices, n)
	case ComponentTypeUnsignedByte:
		overrideElements(a.Uint8, values.Uint8, indices, n)
	case ComponentTypeShort:
		overrideElements(a.Int16, values.Int16, indices, n)
	case ComponentTypeUnsignedShort:
		overrideElements(a.Uint16, values.Uint16, indices, n)
	case ComponentTypeUnsignedInt:
		overrideElements(a.Uint32, values.Uint32, indices, n)
	case ComponentTypeFloat:
		overrideElements(a.Float32, values.Float32, indices, n)
	default:
		return fmt.Errorf("invalid component type %d", a.ComponentType)
	}
	return nil
}

// --- Helper Functions ---

func decodeComponents[T any](raw []byte, l *accessorLayout, read func([]byte) T) []T {
	n := len(l.offsets)
	out := make([]T, l.count*n)
	for i := 0; i < l.count; i++ {
		base := i * l.stride
		for c, off := range l.offsets {
			out[i*n+c] = read(raw[base+off:])
		}
	}
	return out
}

func overrideElements[T any](dst, src []T, indices []uint32, n int) {
	for i, idx := range indices {
		if (i+1)*n > len(src) {
			return
		}
		copy(dst[int(idx)*n:int(idx)*n+n], src[i*n:(i+1)*n])
	}
}

func convert[S, D any](src []S, fn func(S) D) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = fn(v)
	}
	return out
}
