package model

// NodeBuilderOption is a functional option for configuring a Node via NewNode.
type NodeBuilderOption func(*Node)

// WithName is an option builder that sets the name of the Node.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: a function that applies the name option to a node
func WithName(name string) NodeBuilderOption {
	return func(n *Node) {
		n.name = name
	}
}

// WithID is an option builder that sets the identifier of the Node.
//
// Parameters:
//   - id: the node identifier
//
// Returns:
//   - NodeBuilderOption: a function that applies the id option to a node
func WithID(id string) NodeBuilderOption {
	return func(n *Node) {
		n.id = id
	}
}

// WithTransform is an option builder that sets the local transform of the Node.
//
// Parameters:
//   - t: the local transform
//
// Returns:
//   - NodeBuilderOption: a function that applies the transform option to a node
func WithTransform(t Transform) NodeBuilderOption {
	return func(n *Node) {
		n.transform = t
	}
}

// WithEnabled is an option builder that sets whether the Node starts enabled.
//
// Parameters:
//   - enabled: the initial enabled state
//
// Returns:
//   - NodeBuilderOption: a function that applies the enabled option to a node
func WithEnabled(enabled bool) NodeBuilderOption {
	return func(n *Node) {
		n.enabled = enabled
	}
}

// WithParent is an option builder that attaches the Node under parent on creation.
//
// Parameters:
//   - parent: the parent node
//
// Returns:
//   - NodeBuilderOption: a function that applies the parent option to a node
func WithParent(parent *Node) NodeBuilderOption {
	return func(n *Node) {
		if parent == nil {
			return
		}
		n.parent = parent
		parent.mu.Lock()
		parent.children = append(parent.children, n)
		parent.mu.Unlock()
	}
}
