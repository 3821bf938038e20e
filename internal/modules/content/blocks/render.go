package blocks

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// legacyEngine renders pre-block markup the way the platform always has.
var legacyEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// Render maps a document to its HTML body. Rendering is pure and
// side-effect free; it never fails. Unknown block types contribute an
// empty region so documents authored by a newer version degrade instead of
// erroring.
func Render(doc Document) template.HTML {
	if doc.Legacy {
		var buf bytes.Buffer
		if err := legacyEngine.Convert([]byte(doc.Raw), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(doc.Raw))
		}
		return template.HTML(buf.String())
	}

	var sb strings.Builder
	for _, b := range doc.Blocks {
		sb.WriteString(string(RenderBlock(b)))
	}
	return template.HTML(sb.String())
}

// RenderBlock renders a single block to a laid-out HTML region.
func RenderBlock(b Block) template.HTML {
	switch p := b.Payload.(type) {
	case HeadingPayload:
		return renderf(`<h2 class="block-heading">%s</h2>`, esc(p.Text))
	case ParagraphPayload:
		return renderf(`<p class="block-paragraph">%s</p>`, esc(p.Text))
	case BulletListPayload:
		return renderBulletList(p)
	case TablePayload:
		return renderTable(p)
	case ImagePayload:
		return renderImage(p)
	case SliderPayload:
		return renderSlider(b.ID, p)
	case GridPayload:
		return renderGrid(p)
	case LeadershipGridPayload:
		return renderLeadership(p)
	}
	return ""
}

func renderBulletList(p BulletListPayload) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<ul class="block-list">`)
	for _, item := range p.Items {
		fmt.Fprintf(&sb, "<li>%s</li>", esc(item))
	}
	sb.WriteString("</ul>")
	return template.HTML(sb.String())
}

// renderTable tolerates row/column count mismatches: short rows are padded
// with empty cells and long rows truncated, so one bad row cannot skew the
// columns that follow it.
func renderTable(p TablePayload) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<table class="block-table"><thead><tr>`)
	for _, col := range p.Columns {
		fmt.Fprintf(&sb, "<th>%s</th>", esc(col))
	}
	sb.WriteString("</tr></thead><tbody>")
	for _, row := range p.Rows {
		sb.WriteString("<tr>")
		for i := range p.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&sb, "<td>%s</td>", esc(cell))
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
	return template.HTML(sb.String())
}

func renderImage(p ImagePayload) template.HTML {
	ratio := p.AspectRatio.orDefault()
	if p.URL == "" {
		return renderf(`<figure class="block-image ratio-%s"><div class="image-placeholder"></div></figure>`, ratio)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, `<figure class="block-image ratio-%s"><img src="%s" alt="%s">`, ratio, esc(p.URL), esc(p.Alt))
	if p.Caption != "" {
		fmt.Fprintf(&sb, "<figcaption>%s</figcaption>", esc(p.Caption))
	}
	sb.WriteString("</figure>")
	return template.HTML(sb.String())
}

// renderSlider emits the slider in its initial state, Showing(0). With one
// image or none it degrades to a plain frame without controls; the runtime
// transitions live in Machine.
func renderSlider(id string, p SliderPayload) template.HTML {
	ratio := p.AspectRatio.orDefault()
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="block-slider ratio-%s" data-slider="%s" data-count="%d">`, ratio, esc(id), len(p.Images))
	for i, src := range p.Images {
		active := ""
		if i == 0 {
			active = " active"
		}
		fmt.Fprintf(&sb, `<figure class="slide%s"><img src="%s" alt=""></figure>`, active, esc(src))
	}
	if len(p.Images) > 1 {
		sb.WriteString(`<button class="slider-prev" aria-label="Previous"></button>`)
		sb.WriteString(`<button class="slider-next" aria-label="Next"></button>`)
		sb.WriteString(`<nav class="slider-dots">`)
		for i := range p.Images {
			fmt.Fprintf(&sb, `<button data-jump="%d"></button>`, i)
		}
		sb.WriteString("</nav>")
	}
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}

func renderGrid(p GridPayload) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<div class="block-grid">`)
	for _, src := range p.Images {
		fmt.Fprintf(&sb, `<figure><img src="%s" alt=""></figure>`, esc(src))
	}
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}

func renderLeadership(p LeadershipGridPayload) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<div class="block-leadership">`)
	for _, m := range p.Members {
		sb.WriteString(`<article class="leader">`)
		if m.Image != "" {
			fmt.Fprintf(&sb, `<img src="%s" alt="%s">`, esc(m.Image), esc(m.Name))
		}
		fmt.Fprintf(&sb, "<h3>%s</h3><p class=\"role\">%s</p>", esc(m.Name), esc(m.Role))
		if m.Bio != "" {
			fmt.Fprintf(&sb, "<p class=\"bio\">%s</p>", esc(m.Bio))
		}
		if m.Links != nil {
			sb.WriteString(`<p class="links">`)
			if m.Links.X != "" {
				fmt.Fprintf(&sb, `<a href="%s" rel="noopener">X</a>`, esc(m.Links.X))
			}
			if m.Links.LinkedIn != "" {
				fmt.Fprintf(&sb, `<a href="%s" rel="noopener">LinkedIn</a>`, esc(m.Links.LinkedIn))
			}
			sb.WriteString("</p>")
		}
		sb.WriteString("</article>")
	}
	sb.WriteString("</div>")
	return template.HTML(sb.String())
}

func renderf(format string, args ...interface{}) template.HTML {
	return template.HTML(fmt.Sprintf(format, args...))
}

func esc(s string) string { return template.HTMLEscapeString(s) }
