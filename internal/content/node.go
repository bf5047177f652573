// Package content maintains the node tree behind the visual page builder.
// Pages are stored as a flat arena: a map from stable node ID to node,
// with children held as ordered ID lists and the parent as a single back
// reference. The arena shape keeps the tree serializable as plain JSON
// and makes cycle checks a walk over IDs instead of pointer chasing.
package content

import "errors"

// NodeID is the stable identity of a node within one page.
type NodeID string

// RootID is the reserved identity of every page's root node.
const RootID NodeID = "ROOT"

var (
	// ErrInvalidFormat marks a persisted content blob that could not be
	// decoded. It is surfaced to the user as a static message and never
	// retried.
	ErrInvalidFormat = errors.New("invalid content format")

	// ErrInvalidMutation marks a structural edit that would break the
	// tree (unknown parent, cycle, bad index). The tree is left untouched.
	ErrInvalidMutation = errors.New("invalid mutation")
)

// Node is a single content block on a page. Props is a free-form bag
// interpreted by the block's own renderer and settings panel; this
// package only guarantees that unknown keys survive a round trip.
type Node struct {
	ID     NodeID         `json:"-"`
	Type   string         `json:"type"`
	Props  map[string]any `json:"props,omitempty"`
	Nodes  []NodeID       `json:"nodes,omitempty"`
	Parent NodeID         `json:"parent,omitempty"`
}

// GlobalFonts is the page-wide typography record persisted alongside the
// node map. It is independent state that only shares a storage blob with
// the tree, so it lives in its own struct and is split out before the
// node map is touched.
type GlobalFonts struct {
	FontFamily     string `json:"fontFamily"`
	BaseFontSize   string `json:"baseFontSize"`
	BaseFontWeight string `json:"baseFontWeight"`
}

// DefaultFonts returns the typography applied to pages that have never
// been edited.
func DefaultFonts() GlobalFonts {
	return GlobalFonts{FontFamily: "Georgia, serif", BaseFontSize: "16px", BaseFontWeight: "400"}
}

// canvasTypes lists the block types allowed to hold children.
var canvasTypes = map[string]bool{
	"root":      true,
	"section":   true,
	"columns":   true,
	"column":    true,
	"container": true,
}

// IsCanvasType reports whether blocks of the given type may hold children.
func IsCanvasType(blockType string) bool {
	return canvasTypes[blockType]
}

// PageContent is one page's worth of builder state: the node arena plus
// the global font settings.
type PageContent struct {
	Nodes map[NodeID]*Node
	Fonts GlobalFonts
}

// NewPage returns a page containing only an empty root canvas.
func NewPage() *PageContent {
	return &PageContent{
		Nodes: map[NodeID]*Node{
			RootID: {ID: RootID, Type: "root"},
		},
		Fonts: DefaultFonts(),
	}
}

// Empty reports whether the page is the "no content yet" sentinel. It is
// a normal state, shown to visitors as an empty page, never an error.
func (p *PageContent) Empty() bool {
	return p == nil || len(p.Nodes) == 0
}

// Node returns the node with the given ID, or nil.
func (p *PageContent) Node(id NodeID) *Node {
	if p == nil {
		return nil
	}
	return p.Nodes[id]
}

// Root returns the root node, or nil for an empty page.
func (p *PageContent) Root() *Node {
	return p.Node(RootID)
}
