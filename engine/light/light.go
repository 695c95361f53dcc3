package light

import (
	"sync"

	"github.com/chewxy/math32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional is a light with no position that shines along its direction,
	// like the sun. It does not attenuate with distance.
	LightTypeDirectional LightType = iota

	// LightTypePoint emits in all directions from its position.
	LightTypePoint

	// LightTypeSpot emits in a cone from its position along its direction. The intensity
	// falls off between the inner and outer cone angles.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu sync.RWMutex

	name       string
	lightType  LightType
	position   [3]float32
	direction  [3]float32
	color      [3]float32
	intensity  float32
	lightRange float32
	innerCone  float32 // stored as cos(angle)
	outerCone  float32 // stored as cos(angle)
	enabled    bool
}

// Light is a punctual light source. A light attached to a scene node is placed by the node:
// its position and direction are expressed in the node's local space, where the light sits at
// the origin and points down -Z.
type Light interface {
	// Name returns the light's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the position of the light. Meaningless for directional lights.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Direction returns the normalized direction of the light. For spot lights this
	// is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the brightness of the light: candela for point and spot lights,
	// lux for directional lights.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the distance at which the light's intensity reaches zero.
	// Zero means the light is not range limited.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// Enabled returns whether this light is active.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the brightness of the light.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetRange sets the distance at which the light's intensity reaches zero.
	//
	// Parameters:
	//   - lightRange: the range value, zero for unlimited
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	//
	// Parameters:
	//   - inner: inner cone half-angle in radians
	//   - outer: outer cone half-angle in radians
	SetSpotCone(inner, outer float32)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with any provided options applied.
// Defaults: white, intensity 1, unlimited range, pointing down -Z, inner cone 0 and outer
// cone π/4.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: [3]float32{0, 0, -1},
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
		innerCone: 1.0,       // cos(0)
		outerCone: 0.7071068, // cos(π/4)
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	l.position = [3]float32{x, y, z}
	l.mu.Unlock()
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	l.direction = normalize3(x, y, z)
	l.mu.Unlock()
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	l.color = [3]float32{r, g, b}
	l.mu.Unlock()
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	l.intensity = intensity
	l.mu.Unlock()
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.mu.Lock()
	l.lightRange = lightRange
	l.mu.Unlock()
}

func (l *lightImpl) SetSpotCone(inner, outer float32) {
	l.mu.Lock()
	l.innerCone = math32.Cos(inner)
	l.outerCone = math32.Cos(outer)
	l.mu.Unlock()
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	l.enabled = enabled
	l.mu.Unlock()
}
