package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

func htmlLink(url, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), html.EscapeString(text))
}

func plainLink(url, text string) string {
	return "[" + text + "](" + url + ")"
}

// previewParagraph lays uploaded thumbnails out as inline images, each
// wrapped in a link to the original media. The plain serializer drops
// images, so the media list below stays the fallback there.
func previewParagraph(items []PreviewItem) Block {
	if len(items) == 0 {
		return nil
	}
	var inlines []Inline
	for i, it := range items {
		if i > 0 {
			inlines = append(inlines, Text(" "))
		}
		inlines = append(inlines, Link{URL: it.SourceURL, Inlines: []Inline{
			Image{URL: it.URI, Alt: it.Alt, Width: it.Width, Height: it.Height},
		}})
	}
	return Paragraph{Inlines: inlines}
}

// mediaList renders the clickable fallback list for one media kind. Items
// are numbered by position in the list; audio tracks ride in the video list
// and keep their position number.
func mediaList(media []content.Media, nsfw bool) Block {
	if len(media) == 0 {
		return nil
	}

	hasAudio, hasVideo := false, false
	var links []Inline
	for i, m := range media {
		var short string
		switch m.Type {
		case content.MediaVideo:
			short = "Vid"
			hasVideo = true
		case content.MediaAudio:
			short = "Audio"
			hasAudio = true
		default:
			short = "Pic"
		}
		if i > 0 {
			links = append(links, Text(", "))
		}
		links = append(links, Link{URL: m.URL, Inlines: []Inline{
			Text(fmt.Sprintf("%s#%d", short, i+1)),
		}})
	}

	var title string
	switch {
	case hasAudio && hasVideo:
		title = "Audio/Videos"
	case hasAudio:
		title = "Audio"
	case hasVideo:
		title = "Videos"
	default:
		title = "Photos"
	}
	if nsfw {
		title += " (NSFW)"
	}

	inlines := []Inline{Bold{Inlines: []Inline{Text(title + ":")}}, Text(" ")}
	inlines = append(inlines, links...)
	return Paragraph{Inlines: inlines}
}

const chartCells = 16

// chartBar draws a fixed-width block chart for one poll choice percentage.
func chartBar(pct float64) string {
	filled := int(math.Round(pct * chartCells / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > chartCells {
		filled = chartCells
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", chartCells-filled)
}

// formatPercentage prints whole numbers without a decimal point and keeps
// one decimal otherwise, matching how providers hand percentages over.
func formatPercentage(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

// pollBlock renders a poll as a nested quote: one chart bar and label line
// per choice, then the voter count and countdown status.
func pollBlock(poll *content.Poll) Block {
	if poll == nil {
		return nil
	}
	var choices []Inline
	for i, c := range poll.Choices {
		if i > 0 {
			choices = append(choices, HardBreak{})
		}
		choices = append(choices,
			Text(chartBar(c.Percentage)),
			HardBreak{},
			Text(fmt.Sprintf("%s%% %s", formatPercentage(c.Percentage), c.Label)),
		)
	}
	return Blockquote{Blocks: []Block{
		Paragraph{Inlines: choices},
		Paragraph{Inlines: []Inline{
			Text(fmt.Sprintf("%s voters • %s", content.GroupDigits(poll.TotalVoters), poll.Status)),
		}},
	}}
}

// linkCard renders external link-card metadata as a nested quote.
func linkCard(link *content.Link) Block {
	if link == nil {
		return nil
	}
	blocks := []Block{Paragraph{Inlines: []Inline{Bold{Inlines: []Inline{
		Link{URL: link.URL, Inlines: []Inline{Text(link.Title)}},
	}}}}}
	if link.Description != "" {
		blocks = append(blocks, Paragraph{Inlines: []Inline{Text(link.Description)}})
	}
	return Blockquote{Blocks: blocks}
}

// footer renders the platform name and post date line that closes every
// preview.
func footer(displayName string, postedAt int64, localTime bool) Block {
	inlines := []Inline{Bold{Inlines: []Inline{Text(displayName)}}}
	if postedAt > 0 {
		t := time.Unix(postedAt, 0).UTC()
		zone := " UTC"
		if localTime {
			t = t.Local()
			zone = ""
		}
		inlines = append(inlines, Text(" "), Bold{Inlines: []Inline{
			Text("• " + t.Format("2006-01-02 15:04") + zone),
		}})
	}
	return Paragraph{Inlines: inlines}
}

// appendBlock keeps nil section results out of the tree so absent fields
// omit their sections.
func appendBlock(blocks []Block, b Block) []Block {
	if b == nil {
		return blocks
	}
	return append(blocks, b)
}
