package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// fontsKey is the reserved key the global font record occupies inside
// the persisted JSON object. It must never collide with a node ID; the
// builder generates node IDs as UUIDs and the root uses RootID.
const fontsKey = "globalFonts"

// maxStringUnwraps caps how many layers of string-encoded JSON
// Deserialize will peel off. An early storage bug wrote blobs through
// JSON encoding twice, so two layers are legal legacy data; anything
// deeper is corrupt.
const maxStringUnwraps = 2

// Deserialize decodes a persisted content blob into a PageContent.
//
// A nil or empty blob, a JSON null, and a blob without a root node all
// decode to the empty-page sentinel rather than an error: a page that
// was never edited is a normal state. Blobs wrapped in up to two layers
// of string encoding are unwrapped transparently. Anything that still
// fails to decode is reported as ErrInvalidFormat.
func Deserialize(blob []byte) (*PageContent, error) {
	raw := bytes.TrimSpace(blob)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &PageContent{Nodes: map[NodeID]*Node{}, Fonts: DefaultFonts()}, nil
	}

	for i := 0; i < maxStringUnwraps && len(raw) > 0 && raw[0] == '"'; i++ {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: unwrapping string layer: %v", ErrInvalidFormat, err)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) > 0 && raw[0] == '"' {
		return nil, fmt.Errorf("%w: content nested in more than %d string layers", ErrInvalidFormat, maxStringUnwraps)
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &PageContent{Nodes: map[NodeID]*Node{}, Fonts: DefaultFonts()}, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	page := &PageContent{Nodes: make(map[NodeID]*Node, len(entries)), Fonts: DefaultFonts()}

	if rawFonts, ok := entries[fontsKey]; ok {
		if err := json.Unmarshal(rawFonts, &page.Fonts); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalidFormat, fontsKey, err)
		}
		delete(entries, fontsKey)
	}

	for id, rawNode := range entries {
		node := &Node{ID: NodeID(id)}
		if err := json.Unmarshal(rawNode, node); err != nil {
			return nil, fmt.Errorf("%w: decoding node %q: %v", ErrInvalidFormat, id, err)
		}
		page.Nodes[NodeID(id)] = node
	}

	// A blob that decoded fine but carries no root is treated as an
	// empty page, not an error.
	if _, ok := page.Nodes[RootID]; !ok {
		return &PageContent{Nodes: map[NodeID]*Node{}, Fonts: page.Fonts}, nil
	}
	return page, nil
}

// Serialize encodes a page back into the persisted JSON form: one object
// holding every node keyed by ID plus the globalFonts record. It is the
// inverse of Deserialize; Deserialize(Serialize(p)) reproduces p.
func Serialize(p *PageContent) ([]byte, error) {
	merged := make(map[string]any, len(p.Nodes)+1)
	for id, node := range p.Nodes {
		merged[string(id)] = node
	}
	merged[fontsKey] = p.Fonts

	blob, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("serializing page content: %w", err)
	}
	return blob, nil
}
