package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/light"
	"github.com/Carmen-Shannon/oxy-gltf/engine/material"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"github.com/chewxy/math32"
)

// ExtensionLightsPunctual is the name of the punctual lights extension.
const ExtensionLightsPunctual = "KHR_lights_punctual"

// Punctual light type names.
const (
	LightTypeDirectional = "directional"
	LightTypePoint       = "point"
	LightTypeSpot        = "spot"
)

// lightsDocument is the document level KHR_lights_punctual object.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_lights_punctual
type lightsDocument struct {
	Lights []punctualLight `json:"lights"`
}

type punctualLight struct {
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type"`
	Color     *[3]float32 `json:"color,omitempty"`
	Intensity *float32    `json:"intensity,omitempty"`
	Range     *float32    `json:"range,omitempty"`
	Spot      *lightSpot  `json:"spot,omitempty"`
}

type lightSpot struct {
	InnerConeAngle *float32 `json:"innerConeAngle,omitempty"`
	OuterConeAngle *float32 `json:"outerConeAngle,omitempty"`
}

// lightsNode is the node level KHR_lights_punctual object.
type lightsNode struct {
	Light int `json:"light"`
}

// lightsPunctualExtension attaches directional, point and spot lights to nodes.
type lightsPunctualExtension struct {
	BaseExtension
}

var _ NodeExtension = &lightsPunctualExtension{}

// NewLightsPunctualExtension creates the KHR_lights_punctual extension.
//
// Returns:
//   - Extension: the extension, enabled
func NewLightsPunctualExtension() Extension {
	return &lightsPunctualExtension{
		BaseExtension: BaseExtension{ExtensionName: ExtensionLightsPunctual},
	}
}

func (e *lightsPunctualExtension) LoadMaterial(MaterialContext, int) (material.Material, error) {
	return nil, nil
}

func (e *lightsPunctualExtension) LoadNode(nc NodeContext, index int, node *model.Node) error {
	doc := nc.Document()
	path := fmt.Sprintf("/nodes/%d/extensions/%s", index, e.Name())

	var ref lightsNode
	if _, err := decodeExtension(doc.Nodes[index].Extensions, e.Name(), &ref); err != nil {
		return err
	}

	var defs lightsDocument
	if _, err := decodeExtension(doc.Extensions, e.Name(), &defs); err != nil {
		return err
	}
	if err := checkIndex(path+"/light", ref.Light, len(defs.Lights)); err != nil {
		return err
	}

	def := &defs.Lights[ref.Light]
	defPath := fmt.Sprintf("/extensions/%s/lights/%d", e.Name(), ref.Light)

	var lightType light.LightType
	switch def.Type {
	case LightTypeDirectional:
		lightType = light.LightTypeDirectional
	case LightTypePoint:
		lightType = light.LightTypePoint
	case LightTypeSpot:
		lightType = light.LightTypeSpot
	default:
		return parseErrorf("%s: invalid light type %q", defPath, def.Type)
	}

	color := common.Deref(def.Color, [3]float32{1, 1, 1})
	opts := []light.LightBuilderOption{
		light.WithName(common.Coalesce(def.Name, node.Name())),
		light.WithColor(color[0], color[1], color[2]),
		light.WithIntensity(common.Deref(def.Intensity, 1)),
	}
	if lightType != light.LightTypeDirectional {
		if def.Range != nil && *def.Range <= 0 {
			return parseErrorf("%s: range must be positive, got %g", defPath, *def.Range)
		}
		opts = append(opts, light.WithRange(common.Deref(def.Range, 0)))
	}
	if lightType == light.LightTypeSpot {
		inner, outer := float32(0), math32.Pi/4
		if def.Spot != nil {
			inner = common.Deref(def.Spot.InnerConeAngle, inner)
			outer = common.Deref(def.Spot.OuterConeAngle, outer)
		}
		if inner < 0 || inner >= outer || outer > math32.Pi/2 {
			return parseErrorf("%s: invalid spot cone angles %g and %g", defPath, inner, outer)
		}
		opts = append(opts, light.WithSpotCone(inner, outer))
	}

	lt := light.NewLight(lightType, opts...)
	node.SetLight(lt)
	nc.AddLight(lt)
	return nil
}
