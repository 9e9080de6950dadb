package providers

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Reddit listing payload. Both post and comment permalinks resolve to one
// listing whose first child is the thing being linked.

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string      `json:"kind"`
			Data *redditItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditItem struct {
	// comment fields
	Body     string `json:"body"`
	BodyHTML string `json:"body_html"`

	// post fields
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Title        string  `json:"title"`
	LinkFlair    string  `json:"link_flair_text"`
	UpvoteRatio  float64 `json:"upvote_ratio"`
	Over18       bool    `json:"over_18"`
	Spoiler      bool    `json:"spoiler"`
	URL          string  `json:"url"`
	NumComments  int64   `json:"num_comments"`
	PostHint     string  `json:"post_hint"`
	IsVideo      bool    `json:"is_video"`

	Subreddit string  `json:"subreddit_name_prefixed"`
	Author    string  `json:"author"`
	Permalink string  `json:"permalink"`
	Score     int64   `json:"score"`
	Ups       int64   `json:"ups"`
	Downs     int64   `json:"downs"`
	Created   float64 `json:"created"`

	Preview *struct {
		Images []struct {
			Resolutions []redditResolution `json:"resolutions"`
		} `json:"images"`
	} `json:"preview"`

	GalleryData *struct {
		Items []struct {
			MediaID string `json:"media_id"`
		} `json:"items"`
	} `json:"gallery_data"`

	MediaMetadata map[string]struct {
		Mime     string `json:"m"`
		Previews []struct {
			X int    `json:"x"`
			Y int    `json:"y"`
			U string `json:"u"`
		} `json:"p"`
	} `json:"media_metadata"`

	Media *struct {
		RedditVideo *struct {
			HLSURL string `json:"hls_url"`
		} `json:"reddit_video"`
	} `json:"media"`
}

type redditResolution struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// RedditParser builds the Reddit listing parser. Comment permalinks become
// comment records, everything else a post record.
func RedditParser(cfg *config.Config) ParseFunc {
	return func(data []byte) (*content.Post, error) {
		var listing redditListing
		if err := json.Unmarshal(data, &listing); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		if len(listing.Data.Children) == 0 || listing.Data.Children[0].Data == nil {
			return nil, fmt.Errorf("%w: empty listing", ErrBadResponse)
		}
		child := listing.Data.Children[0]
		if child.Kind == "t1" {
			return content.NewForumPost(parseRedditComment(child.Data)), nil
		}
		return content.NewForumPost(parseRedditPost(child.Data, cfg)), nil
	}
}

func parseRedditComment(item *redditItem) *content.ForumPost {
	return &content.ForumPost{
		Title:       "Comment permalink",
		Sub:         item.Subreddit,
		SubURL:      "https://www.reddit.com/" + item.Subreddit,
		Author:      item.Author,
		AuthorURL:   "https://www.reddit.com/u/" + item.Author,
		Text:        redditCleanHTML(item.BodyHTML),
		Markdown:    redditCleanMarkdown(item.Body),
		Score:       content.FormatCount(item.Score),
		Upvotes:     content.FormatCount(item.Ups),
		Downvotes:   content.FormatCount(item.Downs),
		IsComment:   true,
		URL:         "https://www.reddit.com" + item.Permalink,
		PostedAt:    int64(item.Created),
		Platform:    content.PlatformReddit,
		DisplayName: "👽 Reddit",
	}
}

func parseRedditPost(item *redditItem, cfg *config.Config) *content.ForumPost {
	return &content.ForumPost{
		Title:       item.Title,
		Flair:       item.LinkFlair,
		Sub:         item.Subreddit,
		SubURL:      "https://www.reddit.com/" + item.Subreddit,
		Author:      item.Author,
		AuthorURL:   "https://www.reddit.com/u/" + item.Author,
		Text:        redditCleanHTML(item.SelftextHTML),
		Markdown:    redditCleanMarkdown(item.Selftext),
		Score:       content.FormatCount(item.Score),
		Upvotes:     content.FormatCount(item.Ups),
		Downvotes:   content.FormatCount(item.Downs),
		UpvoteRatio: int(item.UpvoteRatio * 100),
		Comments:    item.NumComments,
		NSFW:        item.Over18,
		Spoiler:     item.Spoiler,
		IsLink:      item.PostHint == "link" || item.PostHint == "rich:video",
		URL:         item.URL,
		PostedAt:    int64(item.Created),
		Photos:      parseRedditPhotos(item, cfg),
		Videos:      parseRedditVideos(item, cfg),
		Platform:    content.PlatformReddit,
		DisplayName: "👽 Reddit",
	}
}

// redditCleanHTML strips the SC_OFF/SC_ON comment markers, swaps the spoiler
// span for the Matrix spoiler attribute, and unescapes the double-encoded
// body.
func redditCleanHTML(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "&lt;!-- SC_OFF --&gt;", "")
	text = strings.ReplaceAll(text, "&lt;!-- SC_ON --&gt;", "")
	text = strings.ReplaceAll(text,
		`&lt;span class="md-spoiler-text"&gt;`,
		"&lt;span data-mx-spoiler&gt;")
	return html.UnescapeString(text)
}

func redditCleanMarkdown(text string) string {
	text = strings.ReplaceAll(text, "&gt;!", "||")
	return strings.ReplaceAll(text, "!&lt;", "||")
}

func parseRedditPhotos(item *redditItem, cfg *config.Config) []content.Media {
	switch {
	case item.PostHint == "image":
		if photo := redditPreview(item, cfg.ThumbnailLarge); photo != nil {
			return []content.Media{*photo}
		}
	case item.PostHint == "link" || item.PostHint == "rich:video":
		// Link posts cannot derive a thumbnail from the main URL, so skip
		// them when the preview carries none.
		if photo := redditPreview(item, cfg.ThumbnailSmall); photo != nil && photo.ThumbnailURL != "" {
			return []content.Media{*photo}
		}
	case item.GalleryData != nil:
		return parseRedditGallery(item, cfg)
	}
	return nil
}

// parseRedditGallery picks one thumbnail per gallery item: the first rendition
// that exceeds the small thumbnail box, or the largest one when none does.
// Renditions are sorted smallest to largest.
func parseRedditGallery(item *redditItem, cfg *config.Config) []content.Media {
	var photos []content.Media
	for _, entry := range item.GalleryData.Items {
		image, ok := item.MediaMetadata[entry.MediaID]
		if !ok || len(image.Previews) == 0 {
			continue
		}
		url := "https://i.redd.it/" + entry.MediaID + redditImageExt(image.Mime)

		pick := image.Previews[len(image.Previews)-1]
		for _, p := range image.Previews {
			if p.X > cfg.ThumbnailSmall || p.Y > cfg.ThumbnailSmall {
				pick = p
				break
			}
		}
		photos = append(photos, content.Media{
			Width:        pick.X,
			Height:       pick.Y,
			URL:          url,
			ThumbnailURL: strings.ReplaceAll(pick.U, "&amp;", "&"),
			Type:         content.MediaPhoto,
		})
	}
	return photos
}

// redditImageExt maps a media_metadata mimetype to a file extension. Reddit
// reports image/jpg for JPEG images.
func redditImageExt(mime string) string {
	switch mime {
	case "image/jpg", "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// redditPreview picks the preview rendition closest to the requested box, same
// first-exceeding-else-largest rule as galleries.
func redditPreview(item *redditItem, size int) *content.Media {
	if item.Preview == nil || len(item.Preview.Images) == 0 {
		return nil
	}
	resolutions := item.Preview.Images[0].Resolutions
	if len(resolutions) == 0 {
		return nil
	}
	pick := resolutions[len(resolutions)-1]
	for _, res := range resolutions {
		if res.Width > size || res.Height > size {
			pick = res
			break
		}
	}
	return &content.Media{
		Width:        pick.Width,
		Height:       pick.Height,
		URL:          item.URL,
		ThumbnailURL: strings.ReplaceAll(pick.URL, "&amp;", "&"),
		Type:         content.MediaPhoto,
	}
}

func parseRedditVideos(item *redditItem, cfg *config.Config) []content.Media {
	if !item.IsVideo || item.Media == nil || item.Media.RedditVideo == nil {
		return nil
	}
	video := content.Media{
		URL:  cfg.PlayerURL + item.Media.RedditVideo.HLSURL,
		Type: content.MediaVideo,
	}
	if preview := redditPreview(item, cfg.ThumbnailLarge); preview != nil {
		video.Width = preview.Width
		video.Height = preview.Height
		video.ThumbnailURL = preview.ThumbnailURL
	}
	return []content.Media{video}
}
