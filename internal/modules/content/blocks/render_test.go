package blocks

import (
	"strings"
	"testing"
)

func TestRenderUnknownTypeIsEmptyRegion(t *testing.T) {
	doc := Decode(`[{"id":"b1","type":"heading","data":{"text":"Agenda"}},{"id":"b2","type":"countdown","data":{}},{"id":"b3","type":"paragraph","data":{"text":"Soon."}}]`)
	if doc.Legacy {
		t.Fatal("decoded as legacy")
	}

	if got := RenderBlock(doc.Blocks[1]); got != "" {
		t.Errorf("unknown block rendered %q, want empty", got)
	}

	html := string(Render(doc))
	if !strings.Contains(html, "Agenda") || !strings.Contains(html, "Soon.") {
		t.Errorf("sibling blocks did not render: %s", html)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	b := Block{ID: "t", Type: TypeTable, Payload: TablePayload{
		Columns: []string{"Name", "Role", "Table"},
		Rows:    [][]string{{"Ada"}, {"Grace", "Host", "4", "extra"}},
	}}
	html := string(RenderBlock(b))

	if got := strings.Count(html, "<td>"); got != 6 {
		t.Errorf("cell count = %d, want 6 (2 rows x 3 columns)", got)
	}
	if strings.Contains(html, "extra") {
		t.Error("overlong row not truncated to column count")
	}
}

func TestRenderImagePlaceholder(t *testing.T) {
	html := string(RenderBlock(Block{ID: "i", Type: TypeImage, Payload: ImagePayload{}}))
	if !strings.Contains(html, "image-placeholder") {
		t.Errorf("empty url did not render a placeholder: %s", html)
	}
	if !strings.Contains(html, "ratio-video") {
		t.Errorf("missing default aspect ratio: %s", html)
	}
}

func TestRenderSliderControls(t *testing.T) {
	tests := []struct {
		name         string
		images       []string
		wantControls bool
	}{
		{name: "no images", images: nil, wantControls: false},
		{name: "single image", images: []string{"a.jpg"}, wantControls: false},
		{name: "two images", images: []string{"a.jpg", "b.jpg"}, wantControls: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := string(RenderBlock(Block{ID: "s", Type: TypeSlider, Payload: SliderPayload{Images: tt.images}}))
			got := strings.Contains(html, "slider-next")
			if got != tt.wantControls {
				t.Errorf("controls rendered = %v, want %v: %s", got, tt.wantControls, html)
			}
		})
	}
}

func TestRenderEscapesContent(t *testing.T) {
	b := Block{ID: "h", Type: TypeHeading, Payload: HeadingPayload{Text: `<script>alert("x")</script>`}}
	html := string(RenderBlock(b))
	if strings.Contains(html, "<script>") {
		t.Errorf("heading text not escaped: %s", html)
	}
}

func TestRenderLegacyMarkup(t *testing.T) {
	doc := Decode("# Old Page\n\nStill **works**.")
	html := string(Render(doc))
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>") {
		t.Errorf("legacy markup not rendered as markdown: %s", html)
	}
}
