package providers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Instagram and TikTok have no usable public API, so their parsers scrape
// open-graph metadata from the page served to preview crawlers.

func parsePage(data []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return doc, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	value, _ := doc.Find(selector).First().Attr("content")
	return value
}

func pageDescription(desc string) string {
	if desc == "" {
		return ""
	}
	return "<p>" + strings.ReplaceAll(desc, "\n", "<br>") + "</p>"
}

// ParseInstagram folds an Instagram reel page into a forum record. Pages
// without a playable video are unsupported.
func ParseInstagram(data []byte) (*content.Post, error) {
	doc, err := parsePage(data)
	if err != nil {
		return nil, err
	}

	video := metaContent(doc, "meta[property='og:video']")
	if video == "" {
		return nil, fmt.Errorf("%w: no video found", ErrUnsupportedContent)
	}
	link, _ := doc.Find("link[rel='canonical']").First().Attr("href")
	desc := metaContent(doc, "meta[property='og:title']")

	return content.NewForumPost(&content.ForumPost{
		Title:    "Instagram reel",
		Text:     pageDescription(desc),
		Markdown: desc,
		URL:      link,
		Videos: []content.Media{{
			URL:          video,
			ThumbnailURL: metaContent(doc, "meta[name='twitter:image']"),
			Type:         content.MediaVideo,
		}},
		Platform:    content.PlatformInstagram,
		DisplayName: "🖼️ Instagram",
	}), nil
}

// ParseTikTok folds a TikTok video page into a forum record.
func ParseTikTok(data []byte) (*content.Post, error) {
	doc, err := parsePage(data)
	if err != nil {
		return nil, err
	}

	video := metaContent(doc, "meta[name='lark:url:video_iframe_url']")
	if video == "" {
		return nil, fmt.Errorf("%w: no video found", ErrUnsupportedContent)
	}
	title := metaContent(doc, "meta[property='og:title']")
	if title == "" {
		title = "TikTok video"
	}
	desc := metaContent(doc, "meta[property='og:description']")

	return content.NewForumPost(&content.ForumPost{
		Title:    title,
		Text:     pageDescription(desc),
		Markdown: desc,
		URL:      video,
		Videos: []content.Media{{
			URL:          video,
			ThumbnailURL: metaContent(doc, "meta[property='og:image']"),
			Type:         content.MediaVideo,
		}},
		Platform:    content.PlatformTikTok,
		DisplayName: "🎞️ TikTok",
	}), nil
}
