package content

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Renderer turns a page's node tree into public-facing HTML. It handles
// the static block types itself; blocks backed by live parish data
// (announcement lists, upcoming services) are rendered by the handler
// layer, which recognizes their type tags before calling in here.
type Renderer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewRenderer builds a renderer with the standard markdown pipeline and
// a UGC sanitization policy, matching what the admin preview uses.
func NewRenderer() *Renderer {
	return &Renderer{
		markdown:  goldmark.New(),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render walks the tree from the root and emits HTML. Empty pages render
// to an empty string; the caller decides what placeholder to show.
func (r *Renderer) Render(p *PageContent) (template.HTML, error) {
	if p.Empty() {
		return "", nil
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := r.renderNode(&sb, p, p.Root()); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil
}

// RenderMarkdown converts standalone markdown, such as announcement
// bodies or sermon notes, through the same pipeline text blocks use.
func (r *Renderer) RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func (r *Renderer) renderNode(sb *strings.Builder, p *PageContent, node *Node) error {
	switch node.Type {
	case "root", "section", "container", "columns", "column":
		fmt.Fprintf(sb, `<div class="blk blk-%s">`, html.EscapeString(node.Type))
		for _, childID := range node.Nodes {
			if err := r.renderNode(sb, p, p.Node(childID)); err != nil {
				return err
			}
		}
		sb.WriteString(`</div>`)
	case "heading":
		level := intProp(node, "level", 2)
		if level < 1 || level > 6 {
			level = 2
		}
		fmt.Fprintf(sb, `<h%d>%s</h%d>`, level, html.EscapeString(stringProp(node, "text")), level)
	case "text":
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(stringProp(node, "body")), &buf); err != nil {
			return fmt.Errorf("rendering text block %q: %w", node.ID, err)
		}
		sb.Write(r.sanitizer.SanitizeBytes(buf.Bytes()))
	case "image":
		fmt.Fprintf(sb, `<img src="%s" alt="%s">`,
			html.EscapeString(stringProp(node, "src")),
			html.EscapeString(stringProp(node, "alt")))
	case "button":
		fmt.Fprintf(sb, `<a class="blk-button" href="%s">%s</a>`,
			html.EscapeString(stringProp(node, "href")),
			html.EscapeString(stringProp(node, "label")))
	case "divider":
		sb.WriteString(`<hr>`)
	case "spacer":
		fmt.Fprintf(sb, `<div class="blk-spacer" style="height:%dpx"></div>`, intProp(node, "height", 24))
	default:
		// Unknown block types are dropped from public output rather than
		// failing the whole page; the builder still round-trips them.
		fmt.Fprintf(sb, `<!-- unrendered block type %q -->`, html.EscapeString(node.Type))
	}
	return nil
}

func stringProp(node *Node, key string) string {
	if s, ok := node.Props[key].(string); ok {
		return s
	}
	return ""
}

func intProp(node *Node, key string, fallback int) int {
	switch v := node.Props[key].(type) {
	case float64: // JSON numbers decode as float64
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
