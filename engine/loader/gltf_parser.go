package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jinzhu/copier"
)

// utf8BOM is stripped from text input before JSON decoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseDocument decodes a glTF JSON document. Only the structure is decoded; index
// references are validated lazily when the loader resolves them.
//
// Parameters:
//   - data: the JSON text
//
// Returns:
//   - *Document: the decoded document
//   - error: a ParseError if the JSON is invalid or asset.version is missing
func ParseDocument(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: "failed to decode JSON", Err: err}
	}
	if doc.Asset.Version == "" {
		return nil, parseErrorf("missing asset.version")
	}
	return &doc, nil
}

// Clone returns a deep copy of the document.
//
// Returns:
//   - *Document: the copy
//   - error: error if copying fails
func (d *Document) Clone() (*Document, error) {
	out := &Document{}
	if err := copier.CopyWithOption(out, d, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	return out, nil
}

// ExtensionUsed reports whether name is listed in extensionsUsed.
func (d *Document) ExtensionUsed(name string) bool {
	for _, e := range d.ExtensionsUsed {
		if e == name {
			return true
		}
	}
	return false
}

// SceneIndex returns the default scene index (0 when unset).
func (d *Document) SceneIndex() int {
	if d.Scene != nil {
		return *d.Scene
	}
	return 0
}

// parentIndices maps each node index to its parent's index, -1 for roots.
// A node listed as the child of several nodes keeps the first parent found.
func (d *Document) parentIndices() []int {
	parents := make([]int, len(d.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range d.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(parents) && parents[c] < 0 && c != i {
				parents[c] = i
			}
		}
	}
	return parents
}

// rootNodeIndices returns the parentless nodes in array order.
func (d *Document) rootNodeIndices() []int {
	var roots []int
	for i, p := range d.parentIndices() {
		if p < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// decodeExtension unmarshals the named extension object into v.
//
// Returns:
//   - bool: false if the extension is absent
//   - error: a ParseError if the object does not decode
func decodeExtension(ext Extensions, name string, v any) (bool, error) {
	raw, ok := ext[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, &ParseError{Reason: fmt.Sprintf("invalid %s extension", name), Err: err}
	}
	return true, nil
}

// documentFromJSON normalizes the loader data JSON form into a Document.
// Text input is parsed; a *Document is cloned so the caller keeps ownership.
func documentFromJSON(v any) (*Document, error) {
	switch j := v.(type) {
	case *Document:
		if j == nil {
			return nil, parseErrorf("nil document")
		}
		if j.Asset.Version == "" {
			return nil, parseErrorf("missing asset.version")
		}
		return j.Clone()
	case Document:
		return documentFromJSON(&j)
	case []byte:
		return ParseDocument(j)
	case json.RawMessage:
		return ParseDocument(j)
	case string:
		return ParseDocument([]byte(j))
	case map[string]any:
		raw, err := json.Marshal(j)
		if err != nil {
			return nil, &ParseError{Reason: "failed to re-encode JSON object", Err: err}
		}
		return ParseDocument(raw)
	case nil:
		return nil, parseErrorf("missing JSON")
	default:
		return nil, parseErrorf("unsupported JSON payload type %T", v)
	}
}
