package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Forum renders forum records. Section order is fixed: title, body, media
// previews, video list, photo list, interactions, footer.
type Forum struct {
	localTime bool

	// maxLength is the body length above which the body folds into a
	// collapsed details element.
	maxLength int
}

// NewForum creates a forum renderer.
func NewForum(localTime bool, maxLength int) *Forum {
	return &Forum{localTime: localTime, maxLength: maxLength}
}

// Render produces both encodings for a forum post, wrapped in the outer
// blockquote container.
func (r *Forum) Render(post *content.ForumPost, previews Previews) (Message, error) {
	var blocks []Block

	blocks = appendBlock(blocks, titleBlock(post))
	blocks = appendBlock(blocks, r.forumTextBlock(post))
	blocks = appendBlock(blocks, previewParagraph(previews.Post))
	blocks = appendBlock(blocks, mediaList(post.Videos, post.NSFW))
	blocks = appendBlock(blocks, mediaList(post.Photos, post.NSFW))
	blocks = appendBlock(blocks, forumInteractions(post))
	blocks = appendBlock(blocks, footer(post.DisplayName, post.PostedAt, r.localTime))

	return Render([]Block{Blockquote{Blocks: blocks}}), nil
}

// titleBlock renders the flair tags, linked title, and the author-on-forum
// line below it.
func titleBlock(post *content.ForumPost) Block {
	var inlines []Inline
	if post.Spoiler {
		inlines = append(inlines, Code("SPOILER"), Text(" "))
	}
	if post.Flair != "" {
		inlines = append(inlines, Code(titleCase(post.Flair)), Text(" "))
	}
	if post.Title != "" {
		inlines = append(inlines, Bold{Inlines: []Inline{
			Link{URL: post.URL, Inlines: []Inline{Text(post.Title)}},
		}})
	}

	if post.Author != "" && post.Sub != "" {
		if len(inlines) > 0 {
			inlines = append(inlines, HardBreak{})
		}
		inlines = append(inlines,
			Link{URL: post.AuthorURL, Inlines: []Inline{Text("u/" + post.Author)}},
			Text(" on "),
			Link{URL: post.SubURL, Inlines: []Inline{Text(post.Sub)}},
		)
	}

	if len(inlines) == 0 {
		return nil
	}
	return Paragraph{Inlines: inlines}
}

// forumTextBlock builds the body section. Spoiler-flagged posts suppress the
// body entirely; long bodies fold into a collapsed details element.
func (r *Forum) forumTextBlock(post *content.ForumPost) Block {
	if post.Spoiler {
		return nil
	}

	var body Block
	switch {
	case post.Text == "" && post.Markdown == "":
		return nil
	case post.Markdown != "":
		body = Raw{HTML: post.Text, Plain: post.Markdown}
	default:
		body = textParagraph(post.Text)
	}

	if r.maxLength > 0 && len(post.Text) > r.maxLength {
		return Spoiler{Summary: "Post content:", Blocks: []Block{body}}
	}
	return body
}

// forumInteractions differs by platform shape: Reddit carries a score and an
// upvote ratio, Lemmy separate up and down votes.
func forumInteractions(post *content.ForumPost) Block {
	var parts []string
	if post.Platform == content.PlatformReddit {
		if post.Score != "" {
			parts = append(parts, "⬆️ "+post.Score)
		}
		if post.UpvoteRatio > 0 {
			parts = append(parts, fmt.Sprintf("(%d%%)", post.UpvoteRatio))
		}
		if post.Comments > 0 {
			parts = append(parts, fmt.Sprintf("💬 %d", post.Comments))
		}
	} else {
		if post.Upvotes != "" {
			parts = append(parts, "⬆️ "+post.Upvotes)
		}
		if post.Downvotes != "" {
			parts = append(parts, "⬇️ "+post.Downvotes)
		}
		if post.Comments > 0 {
			parts = append(parts, fmt.Sprintf("💬 %d", post.Comments))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return Paragraph{Inlines: []Inline{Bold{Inlines: []Inline{Text(strings.Join(parts, " "))}}}}
}

// titleCase uppercases the first letter of each word of a flair tag.
func titleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		if startOfWord {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		startOfWord = !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
	return b.String()
}
