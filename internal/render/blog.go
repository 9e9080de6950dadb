package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

// PreviewItem is an uploaded thumbnail ready to embed in the rich encoding.
// SourceURL points at the original media the thumbnail links back to.
type PreviewItem struct {
	URI       string
	SourceURL string
	Alt       string
	Width     int
	Height    int
}

// Previews carries the resolved thumbnails for a post and, for blog posts,
// its quoted post. Resolving them is the dispatcher's job; renderers only
// place them.
type Previews struct {
	Post  []PreviewItem
	Quote []PreviewItem
}

// Blog renders microblog records. Section order is fixed: author, text,
// translation, poll, media previews, video list, photo list, quote, external
// link, interactions, moderation note, footer. Absent fields omit their
// sections.
type Blog struct {
	localTime bool
}

// NewBlog creates a blog renderer. localTime switches footer timestamps from
// UTC to the process zone.
func NewBlog(localTime bool) *Blog {
	return &Blog{localTime: localTime}
}

// leftover t.co tails that the API keeps in raw tweet text; they have no
// facet, so they survive substitution and must be stripped afterwards
var tcoPattern = regexp.MustCompile(`https://t\.co/[A-Za-z0-9]{10}`)

// Render produces both encodings for a blog post, wrapped in the outer
// blockquote container.
func (r *Blog) Render(post *content.BlogPost, previews Previews) (Message, error) {
	var blocks []Block

	blocks = appendBlock(blocks, authorBlock(post))

	text, err := blogTextBlock(post)
	if err != nil {
		return Message{}, err
	}
	blocks = appendBlock(blocks, text)

	blocks = appendBlock(blocks, translationBlock(post))
	blocks = appendBlock(blocks, pollBlock(post.Poll))
	blocks = appendBlock(blocks, previewParagraph(previews.Post))
	blocks = appendBlock(blocks, mediaList(post.Videos, post.Sensitive))
	blocks = appendBlock(blocks, mediaList(post.Photos, post.Sensitive))

	quote, err := quoteBlock(post.Quote, previews.Quote)
	if err != nil {
		return Message{}, err
	}
	blocks = appendBlock(blocks, quote)

	blocks = appendBlock(blocks, linkCard(post.Link))
	blocks = appendBlock(blocks, blogInteractions(post))
	blocks = appendBlock(blocks, moderationBlock(post.ModerationNote))
	blocks = appendBlock(blocks, footer(post.DisplayName, post.PostedAt, r.localTime))

	return Render([]Block{Blockquote{Blocks: blocks}}), nil
}

func authorBlock(post *content.BlogPost) Block {
	if post.AuthorName == "" && post.AuthorHandle == "" {
		return nil
	}
	name := post.AuthorName
	if name == "" {
		name = post.AuthorHandle
	}
	label := name
	if post.AuthorHandle != "" {
		label += " (@" + post.AuthorHandle + ")"
	}
	return Paragraph{Inlines: []Inline{Link{URL: post.AuthorURL, Inlines: []Inline{
		Bold{Inlines: []Inline{Text(label)}},
	}}}}
}

// blogTextBlock builds the body section. Pre-formatted posts carry both
// encodings already; faceted posts go through span substitution twice, once
// per encoding; everything else is plain text.
func blogTextBlock(post *content.BlogPost) (Block, error) {
	var body Block
	switch {
	case post.Text == "" && post.Markdown == "":
		return nil, nil
	case post.Markdown != "":
		body = Raw{HTML: "<p>" + strings.ReplaceAll(post.Text, "\n", "<br>") + "</p>", Plain: post.Markdown}
	case len(post.Facets) > 0:
		richText, err := SubstituteFacets(post.Text, post.Facets, post.FacetOffsets, htmlLink, escapeWithBreaks)
		if err != nil {
			return nil, err
		}
		plainText, err := SubstituteFacets(post.Text, post.Facets, post.FacetOffsets, plainLink, noEscape)
		if err != nil {
			return nil, err
		}
		if post.Platform == content.PlatformTwitter {
			richText = strings.TrimSpace(tcoPattern.ReplaceAllString(richText, ""))
			plainText = strings.TrimSpace(tcoPattern.ReplaceAllString(plainText, ""))
		}
		body = Raw{HTML: "<p>" + richText + "</p>", Plain: plainText}
	default:
		text := post.Text
		if post.Platform == content.PlatformTwitter {
			text = strings.TrimSpace(tcoPattern.ReplaceAllString(text, ""))
		}
		body = textParagraph(text)
	}

	if post.SpoilerText != "" && body != nil {
		return Spoiler{Summary: "CW: " + post.SpoilerText, Blocks: []Block{body}}, nil
	}
	return body, nil
}

func escapeWithBreaks(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

func noEscape(s string) string { return s }

// textParagraph splits plain text on newlines into one paragraph with hard
// breaks.
func textParagraph(text string) Block {
	if text == "" {
		return nil
	}
	var inlines []Inline
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			inlines = append(inlines, HardBreak{})
		}
		inlines = append(inlines, Text(line))
	}
	return Paragraph{Inlines: inlines}
}

// translationBlock renders a provider-supplied translation as a nested
// quote.
func translationBlock(post *content.BlogPost) Block {
	if post.Translation == "" {
		return nil
	}
	label := "Translated text"
	if post.TranslationLang != "" {
		label = "Translated from " + post.TranslationLang
	}
	inlines := []Inline{Text("📝 "), Bold{Inlines: []Inline{Text(label)}}, HardBreak{}}
	p := textParagraph(post.Translation).(Paragraph)
	inlines = append(inlines, p.Inlines...)
	return Blockquote{Blocks: []Block{Paragraph{Inlines: inlines}}}
}

// quoteBlock nests a quoted post one blockquote level deeper. Only the first
// level carries content; deeper quotes arrive as placeholders and render as
// the fixed stub line.
func quoteBlock(quote *content.BlogPost, previews []PreviewItem) (Block, error) {
	if quote == nil {
		return nil, nil
	}
	if quote.IsPlaceholder() {
		return Blockquote{Blocks: []Block{
			Paragraph{Inlines: []Inline{Bold{Inlines: []Inline{Text(quote.Text)}}}},
		}}, nil
	}

	var blocks []Block
	blocks = appendBlock(blocks, quoteAuthorBlock(quote))

	text, err := blogTextBlock(quote)
	if err != nil {
		return nil, err
	}
	blocks = appendBlock(blocks, text)

	blocks = appendBlock(blocks, pollBlock(quote.Poll))
	blocks = appendBlock(blocks, previewParagraph(previews))
	blocks = appendBlock(blocks, mediaList(quote.Videos, quote.Sensitive))
	blocks = appendBlock(blocks, mediaList(quote.Photos, quote.Sensitive))
	blocks = appendBlock(blocks, linkCard(quote.Link))

	return Blockquote{Blocks: blocks}, nil
}

func quoteAuthorBlock(quote *content.BlogPost) Block {
	if quote.AuthorHandle == "" {
		return nil
	}
	inlines := []Inline{Link{URL: quote.URL, Inlines: []Inline{Text("Quoting")}}}
	if quote.AuthorName != "" {
		inlines = append(inlines, Text(" "+quote.AuthorName))
	}
	inlines = append(inlines,
		Text(" ("),
		Link{URL: quote.AuthorURL, Inlines: []Inline{Text("@" + quote.AuthorHandle)}},
		Text(")"),
	)
	return Paragraph{Inlines: []Inline{Bold{Inlines: inlines}}}
}

func blogInteractions(post *content.BlogPost) Block {
	var parts []string
	if post.Replies != "" {
		parts = append(parts, "💬 "+post.Replies)
	}
	if post.Reposts != "" {
		parts = append(parts, "🔁 "+post.Reposts)
	}
	if post.Likes != "" {
		parts = append(parts, "❤️ "+post.Likes)
	}
	if post.Views != "" {
		parts = append(parts, "👁️ "+post.Views)
	}
	if len(parts) == 0 {
		return nil
	}
	return Paragraph{Inlines: []Inline{Bold{Inlines: []Inline{Text(strings.Join(parts, " "))}}}}
}

// moderationBlock renders a community note as a nested quote.
func moderationBlock(note string) Block {
	if note == "" {
		return nil
	}
	return Blockquote{Blocks: []Block{
		Paragraph{Inlines: []Inline{Bold{Inlines: []Inline{Text("Community Note:")}}}},
		textParagraph(note),
	}}
}
