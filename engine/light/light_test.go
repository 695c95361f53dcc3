package light

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint)
	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.Zero(t, l.Range())
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())
	assert.InDelta(t, 1.0, l.InnerCone(), 1e-6)
	assert.InDelta(t, math32.Cos(math32.Pi/4), l.OuterCone(), 1e-6)
	assert.True(t, l.Enabled())
}

func TestLightOptions(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithName("lamp"),
		WithColor(1, 0.5, 0),
		WithIntensity(40),
		WithRange(12),
		WithSpotCone(0, math32.Pi/2),
	)

	assert.Equal(t, "lamp", l.Name())
	assert.Equal(t, [3]float32{}, l.Position())
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())
	assert.Equal(t, [3]float32{1, 0.5, 0}, l.Color())
	assert.Equal(t, float32(40), l.Intensity())
	assert.Equal(t, float32(12), l.Range())
	assert.InDelta(t, 1.0, l.InnerCone(), 1e-6)
	assert.InDelta(t, 0.0, l.OuterCone(), 1e-6)
	assert.True(t, l.Enabled())
}

func TestLightSetters(t *testing.T) {
	l := NewLight(LightTypeDirectional)
	l.SetDirection(3, 0, 4)
	d := l.Direction()
	assert.InDeltaSlice(t, []float32{0.6, 0, 0.8}, d[:], 1e-6)

	l.SetDirection(0, 0, 0)
	assert.Equal(t, [3]float32{}, l.Direction())

	l.SetSpotCone(math32.Pi/3, math32.Pi/3)
	assert.InDelta(t, 0.5, l.InnerCone(), 1e-6)
	assert.InDelta(t, 0.5, l.OuterCone(), 1e-6)

	l.SetColor(0, 0, 1)
	l.SetIntensity(3)
	l.SetRange(5)
	l.SetPosition(4, 5, 6)
	l.SetEnabled(false)
	assert.Equal(t, [3]float32{0, 0, 1}, l.Color())
	assert.Equal(t, float32(3), l.Intensity())
	assert.Equal(t, float32(5), l.Range())
	assert.Equal(t, [3]float32{4, 5, 6}, l.Position())
	assert.False(t, l.Enabled())
}

func TestLightTypeString(t *testing.T) {
	assert.Equal(t, "directional", LightTypeDirectional.String())
	assert.Equal(t, "point", LightTypePoint.String())
	assert.Equal(t, "spot", LightTypeSpot.String())
	assert.Equal(t, "unknown", LightType(9).String())
}
