package material

// PBRMaterialBuilderOption is a function that configures a PBRMaterial during construction.
type PBRMaterialBuilderOption func(*PBRMaterial)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - PBRMaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) PBRMaterialBuilderOption {
	return func(m *PBRMaterial) {
		m.name = name
	}
}

// WithWorkflow is an option builder that sets the PBR workflow of the material.
//
// Parameters:
//   - w: the workflow
//
// Returns:
//   - PBRMaterialBuilderOption: a function that applies the workflow option to a material
func WithWorkflow(w Workflow) PBRMaterialBuilderOption {
	return func(m *PBRMaterial) {
		m.Workflow = w
	}
}

// WithAlbedo is an option builder that sets the base color and opacity of the material.
//
// Parameters:
//   - color: the RGBA base color; alpha becomes the material Alpha
//
// Returns:
//   - PBRMaterialBuilderOption: a function that applies the albedo option to a material
func WithAlbedo(color [4]float32) PBRMaterialBuilderOption {
	return func(m *PBRMaterial) {
		m.AlbedoColor = [3]float32{color[0], color[1], color[2]}
		m.Alpha = color[3]
	}
}

// WithMetallicRoughness is an option builder that sets the metallic and roughness factors.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - PBRMaterialBuilderOption: a function that applies the factors to a material
func WithMetallicRoughness(metallic, roughness float32) PBRMaterialBuilderOption {
	return func(m *PBRMaterial) {
		m.Metallic = metallic
		m.Roughness = roughness
	}
}

// WithUnlit is an option builder that disables lighting on the material.
//
// Parameters:
//   - unlit: true to disable lighting
//
// Returns:
//   - PBRMaterialBuilderOption: a function that applies the unlit option to a material
func WithUnlit(unlit bool) PBRMaterialBuilderOption {
	return func(m *PBRMaterial) {
		m.Unlit = unlit
	}
}
