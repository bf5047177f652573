//go:build unit

package content

import (
	"strings"
	"testing"
)

func TestRenderer(t *testing.T) {
	r := NewRenderer()

	t.Run("empty page renders to nothing", func(t *testing.T) {
		page, err := Deserialize(nil)
		if err != nil {
			t.Fatal(err)
		}
		out, err := r.Render(page)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if out != "" {
			t.Errorf("expected empty output, got %q", out)
		}
	})

	t.Run("renders nested blocks", func(t *testing.T) {
		page := NewPage()
		if err := page.InsertNode(RootID, Node{ID: "sec", Type: "section"}, 0); err != nil {
			t.Fatal(err)
		}
		if err := page.InsertNode("sec", Node{ID: "h", Type: "heading", Props: map[string]any{"text": "Holy Week <Schedule>", "level": float64(1)}}, 0); err != nil {
			t.Fatal(err)
		}
		if err := page.InsertNode("sec", Node{ID: "txt", Type: "text", Props: map[string]any{"body": "Liturgy at **9:30**"}}, 1); err != nil {
			t.Fatal(err)
		}

		out, err := r.Render(page)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		got := string(out)
		if !strings.Contains(got, "<h1>Holy Week &lt;Schedule&gt;</h1>") {
			t.Errorf("heading missing or unescaped: %s", got)
		}
		if !strings.Contains(got, "<strong>9:30</strong>") {
			t.Errorf("markdown body not rendered: %s", got)
		}
		if !strings.Contains(got, `class="blk blk-section"`) {
			t.Errorf("section wrapper missing: %s", got)
		}
	})

	t.Run("markdown is sanitized", func(t *testing.T) {
		page := NewPage()
		if err := page.InsertNode(RootID, Node{ID: "txt", Type: "text", Props: map[string]any{"body": `hi <script>alert(1)</script>`}}, 0); err != nil {
			t.Fatal(err)
		}
		out, err := r.Render(page)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(out), "<script>") {
			t.Errorf("script tag survived sanitization: %s", out)
		}
	})

	t.Run("unknown block types are skipped not fatal", func(t *testing.T) {
		page := NewPage()
		if err := page.InsertNode(RootID, Node{ID: "x", Type: "donationWidget"}, 0); err != nil {
			t.Fatal(err)
		}
		out, err := r.Render(page)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.Contains(string(out), "unrendered block") {
			t.Errorf("expected placeholder comment, got %s", out)
		}
	})
}
