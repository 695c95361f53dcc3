package scene

// SceneBuilderOption is a functional option for configuring a Scene via NewScene.
type SceneBuilderOption func(*scene)

// WithName is an option builder that sets the name of the Scene.
//
// Parameters:
//   - name: the scene identifier
//
// Returns:
//   - SceneBuilderOption: a function that applies the name option to a scene
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive is an option builder that sets whether the Scene starts active.
//
// Parameters:
//   - active: the initial active state
//
// Returns:
//   - SceneBuilderOption: a function that applies the active option to a scene
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}
