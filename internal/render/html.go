package render

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML serializes blocks into Matrix custom HTML.
func RenderHTML(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		writeHTMLBlock(&b, blk)
	}
	return b.String()
}

func writeHTMLBlock(b *strings.Builder, blk Block) {
	switch v := blk.(type) {
	case Paragraph:
		inner := htmlInlines(v.Inlines)
		if inner == "" {
			return
		}
		b.WriteString("<p>")
		b.WriteString(inner)
		b.WriteString("</p>")
	case Blockquote:
		b.WriteString("<blockquote>")
		for _, child := range v.Blocks {
			writeHTMLBlock(b, child)
		}
		b.WriteString("</blockquote>")
	case Spoiler:
		b.WriteString("<details><summary>")
		b.WriteString(html.EscapeString(v.Summary))
		b.WriteString("</summary>")
		for _, child := range v.Blocks {
			writeHTMLBlock(b, child)
		}
		b.WriteString("</details>")
	case Raw:
		b.WriteString(v.HTML)
	}
}

func htmlInlines(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		writeHTMLInline(&b, in)
	}
	return b.String()
}

func writeHTMLInline(b *strings.Builder, in Inline) {
	switch v := in.(type) {
	case Text:
		b.WriteString(html.EscapeString(string(v)))
	case Bold:
		b.WriteString("<b>")
		b.WriteString(htmlInlines(v.Inlines))
		b.WriteString("</b>")
	case Code:
		b.WriteString("<code>")
		b.WriteString(html.EscapeString(string(v)))
		b.WriteString("</code>")
	case Link:
		fmt.Fprintf(b, `<a href="%s">`, html.EscapeString(v.URL))
		b.WriteString(htmlInlines(v.Inlines))
		b.WriteString("</a>")
	case Image:
		fmt.Fprintf(b, `<img src="%s" alt="%s"`, html.EscapeString(v.URL), html.EscapeString(v.Alt))
		if v.Width > 0 && v.Height > 0 {
			fmt.Fprintf(b, ` width="%d" height="%d"`, v.Width, v.Height)
		}
		b.WriteString(" />")
	case HardBreak:
		b.WriteString("<br>")
	}
}
