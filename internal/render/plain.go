package render

import (
	"strings"
)

// RenderPlain serializes blocks into the markdown-ish fallback body. Every
// line inside a blockquote is prefixed with the quote marker repeated once
// per nesting level; the depth is threaded as an explicit integer through
// every call, so content that happens to contain a quote marker is never
// rewritten.
func RenderPlain(blocks []Block) string {
	return strings.TrimSuffix(plainBlocks(blocks, 0), "  \n")
}

func plainBlocks(blocks []Block, depth int) string {
	var chunks []string
	for _, blk := range blocks {
		if c := plainBlock(blk, depth); c != "" {
			chunks = append(chunks, c)
		}
	}
	return strings.Join(chunks, plainSeparator(depth))
}

// plainSeparator is the blank quote line between sibling sections at a given
// depth.
func plainSeparator(depth int) string {
	if depth == 0 {
		return "\n"
	}
	return strings.Repeat("> ", depth-1) + ">  \n"
}

func plainBlock(blk Block, depth int) string {
	switch v := blk.(type) {
	case Paragraph:
		return plainLines(plainInlines(v.Inlines), depth)
	case Blockquote:
		return plainBlocks(v.Blocks, depth+1)
	case Spoiler:
		summary := plainLines("**"+v.Summary+"**", depth)
		body := plainBlocks(v.Blocks, depth)
		if body == "" {
			return summary
		}
		return summary + plainSeparator(depth) + body
	case Raw:
		return plainLines(v.Plain, depth)
	}
	return ""
}

// plainLines prefixes each line of content with the depth's quote marker and
// terminates it with a markdown hard break.
func plainLines(content string, depth int) string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return ""
	}
	prefix := strings.Repeat("> ", depth)
	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(prefix)
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("  \n")
	}
	return b.String()
}

func plainInlines(inlines []Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		writePlainInline(&b, in)
	}
	return b.String()
}

func writePlainInline(b *strings.Builder, in Inline) {
	switch v := in.(type) {
	case Text:
		b.WriteString(string(v))
	case Bold:
		b.WriteString("**")
		b.WriteString(plainInlines(v.Inlines))
		b.WriteString("**")
	case Code:
		b.WriteString("`")
		b.WriteString(string(v))
		b.WriteString("`")
	case Link:
		b.WriteString("[")
		b.WriteString(plainInlines(v.Inlines))
		b.WriteString("](")
		b.WriteString(v.URL)
		b.WriteString(")")
	case Image:
		// thumbnails have no plain representation; the media list covers it
	case HardBreak:
		b.WriteString("\n")
	}
}
