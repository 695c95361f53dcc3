package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeDecomposeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		t    [3]float32
		r    [4]float32
		s    [3]float32
	}{
		{"identity", [3]float32{}, IdentityQuaternion(), [3]float32{1, 1, 1}},
		{"translate scale", [3]float32{1, 2, 3}, IdentityQuaternion(), [3]float32{2, 3, 4}},
		{"rotate y 90", [3]float32{0, 5, 0}, [4]float32{0, 0.70710677, 0, 0.70710677}, [3]float32{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComposeMatrix(tt.t, tt.r, tt.s)
			gotT, gotR, gotS := DecomposeMatrix(m)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.t[i], gotT[i], 1e-5)
				assert.InDelta(t, tt.s[i], gotS[i], 1e-5)
			}
			// q and -q describe the same rotation
			sign := float32(1)
			if gotR[3]*tt.r[3] < 0 {
				sign = -1
			}
			for i := 0; i < 4; i++ {
				assert.InDelta(t, tt.r[i], sign*gotR[i], 1e-5)
			}
		})
	}
}

func TestInvertMatrix(t *testing.T) {
	m := ComposeMatrix([3]float32{1, 2, 3}, IdentityQuaternion(), [3]float32{2, 2, 2})
	got := MulMatrix(m, InvertMatrix(m))
	want := IdentityMatrix()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5)
	}
}

func TestBoundingBox(t *testing.T) {
	bmin, bmax := BoundingBox([]float32{0, 0, 0, 1, -2, 3, -1, 4, 0.5})
	assert.Equal(t, [3]float32{-1, -2, 0}, bmin)
	assert.Equal(t, [3]float32{1, 4, 3}, bmax)

	bmin, bmax = BoundingBox(nil)
	assert.Equal(t, [3]float32{}, bmin)
	assert.Equal(t, [3]float32{}, bmax)
}

func TestCoalesceAndDeref(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, "", Coalesce[string]())

	v := float32(0.25)
	assert.Equal(t, float32(0.25), Deref(&v, 1))
	assert.Equal(t, float32(1), Deref[float32](nil, 1))
}
