package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Lemmy getPost/getComment payload.

type lemmyResponse struct {
	Error       string     `json:"error"`
	PostView    *lemmyView `json:"post_view"`
	CommentView *lemmyView `json:"comment_view"`
}

type lemmyView struct {
	Post *struct {
		Name           string `json:"name"`
		Body           string `json:"body"`
		URL            string `json:"url"`
		APID           string `json:"ap_id"`
		NSFW           bool   `json:"nsfw"`
		Published      string `json:"published"`
		ThumbnailURL   string `json:"thumbnail_url"`
		URLContentType string `json:"url_content_type"`
	} `json:"post"`
	Comment *struct {
		Content   string `json:"content"`
		APID      string `json:"ap_id"`
		Published string `json:"published"`
	} `json:"comment"`
	Community *lemmyActor `json:"community"`
	Creator   *lemmyActor `json:"creator"`
	Counts    struct {
		Upvotes    int64 `json:"upvotes"`
		Downvotes  int64 `json:"downvotes"`
		Comments   int64 `json:"comments"`
		ChildCount int64 `json:"child_count"`
	} `json:"counts"`
	ImageDetails *struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Link   string `json:"link"`
	} `json:"image_details"`
}

type lemmyActor struct {
	Name    string `json:"name"`
	ActorID string `json:"actor_id"`
}

var (
	lemmySpoilerTag = regexp.MustCompile(`(?is):::\sspoiler\s(.*?)\n(.*?)\n:::`)
	lemmyEmptyLink  = regexp.MustCompile(`\[]\((.+?)\)`)
	lemmyFlairTitle = regexp.MustCompile(`^\[([A-Za-z0-9\s]+?)]\s?(.*)`)
)

// Post bodies are markdown; the rich encoding converts them to HTML. Unsafe
// rendering is needed because spoiler tags are rewritten to raw details
// elements before conversion.
var lemmyMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

var lemmyVideoTypes = map[string]bool{
	"video/x-msvideo": true,
	"video/mp4":       true,
	"video/mpeg":      true,
	"video/ogg":       true,
	"video/webm":      true,
	"video/mp2t":      true,
	"video/3gpp":      true,
	"video/3gpp2":     true,
	"video/matroska":  true,
}

// ParseLemmy folds a Lemmy post or comment response into a forum record.
func ParseLemmy(data []byte) (*content.Post, error) {
	var resp lemmyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, resp.Error)
	}

	if resp.CommentView != nil {
		return parseLemmyComment(resp.CommentView)
	}
	if resp.PostView != nil {
		return parseLemmyPost(resp.PostView)
	}
	return nil, fmt.Errorf("%w: no post or comment view", ErrBadResponse)
}

func parseLemmyComment(view *lemmyView) (*content.Post, error) {
	if view.Post == nil || view.Comment == nil || view.Community == nil || view.Creator == nil {
		return nil, fmt.Errorf("%w: incomplete comment view", ErrBadResponse)
	}
	html, err := lemmyHTML(view.Comment.Content)
	if err != nil {
		return nil, err
	}
	return content.NewForumPost(&content.ForumPost{
		Title:       view.Post.Name,
		Sub:         "c/" + view.Community.Name,
		SubURL:      view.Community.ActorID,
		Author:      lemmyAuthor(view.Creator, view.Community),
		AuthorURL:   view.Creator.ActorID,
		Text:        html,
		Markdown:    lemmyPlain(view.Comment.Content),
		Upvotes:     content.FormatCount(view.Counts.Upvotes),
		Downvotes:   content.FormatCount(view.Counts.Downvotes),
		Comments:    view.Counts.ChildCount,
		NSFW:        view.Post.NSFW,
		IsLink:      strings.Contains(view.Post.URLContentType, "text/html"),
		IsComment:   true,
		URL:         view.Comment.APID,
		PostedAt:    content.ParseTimestamp(view.Comment.Published),
		Platform:    content.PlatformLemmy,
		DisplayName: "🐹 " + instanceName(view.Community.ActorID),
	}), nil
}

func parseLemmyPost(view *lemmyView) (*content.Post, error) {
	if view.Post == nil || view.Community == nil || view.Creator == nil {
		return nil, fmt.Errorf("%w: incomplete post view", ErrBadResponse)
	}
	html, err := lemmyHTML(view.Post.Body)
	if err != nil {
		return nil, err
	}
	title, flair := lemmyTitle(view.Post.Name)
	url := view.Post.URL
	if url == "" {
		url = view.Post.APID
	}
	return content.NewForumPost(&content.ForumPost{
		Title:       title,
		Flair:       flair,
		Sub:         "c/" + view.Community.Name,
		SubURL:      view.Community.ActorID,
		Author:      lemmyAuthor(view.Creator, view.Community),
		AuthorURL:   view.Creator.ActorID,
		Text:        html,
		Markdown:    lemmyPlain(view.Post.Body),
		Upvotes:     content.FormatCount(view.Counts.Upvotes),
		Downvotes:   content.FormatCount(view.Counts.Downvotes),
		Comments:    view.Counts.Comments,
		NSFW:        view.Post.NSFW,
		IsLink:      strings.Contains(view.Post.URLContentType, "text/html"),
		URL:         url,
		PostedAt:    content.ParseTimestamp(view.Post.Published),
		Photos:      parseLemmyPhotos(view),
		Videos:      parseLemmyVideos(view),
		Platform:    content.PlatformLemmy,
		DisplayName: "🐹 " + instanceName(view.Community.ActorID),
	}), nil
}

// lemmyAuthor tags the creator with their home instance when it differs from
// the community's.
func lemmyAuthor(creator, community *lemmyActor) string {
	creatorInstance := instanceName(creator.ActorID)
	if creatorInstance == instanceName(community.ActorID) {
		return creator.Name
	}
	return creator.Name + "@" + creatorInstance
}

// lemmyTitle splits a leading [Flair] tag off the post title.
func lemmyTitle(name string) (title, flair string) {
	if m := lemmyFlairTitle.FindStringSubmatch(name); m != nil {
		return m[2], m[1]
	}
	return name, ""
}

// lemmyClean normalizes a markdown body: inline images degrade to links,
// backslash escapes are dropped, newlines become hard breaks, and bare links
// get the URL as their text.
func lemmyClean(text string) string {
	text = strings.ReplaceAll(text, "![", "[")
	text = strings.ReplaceAll(text, `\`, "")
	text = strings.ReplaceAll(text, "\n", "  \n")
	return lemmyEmptyLink.ReplaceAllString(text, "[$1]($1)")
}

func lemmyHTML(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	text = lemmyClean(text)
	text = lemmySpoilerTag.ReplaceAllString(text, "<details><summary>$1 </summary>$2</details>")

	var buf bytes.Buffer
	if err := lemmyMarkdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("%w: convert body: %v", ErrBadResponse, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func lemmyPlain(text string) string {
	if text == "" {
		return ""
	}
	text = lemmySpoilerTag.ReplaceAllString(text, "[$1] ||$2||")
	return lemmyClean(text)
}

func parseLemmyPhotos(view *lemmyView) []content.Media {
	if view.ImageDetails != nil {
		return []content.Media{{
			Width:        view.ImageDetails.Width,
			Height:       view.ImageDetails.Height,
			URL:          view.ImageDetails.Link,
			ThumbnailURL: view.ImageDetails.Link,
			Type:         content.MediaPhoto,
		}}
	}
	if view.Post.ThumbnailURL != "" {
		return []content.Media{{
			URL:          view.Post.URL,
			ThumbnailURL: view.Post.ThumbnailURL,
			Type:         content.MediaPhoto,
		}}
	}
	return nil
}

func parseLemmyVideos(view *lemmyView) []content.Media {
	if !lemmyVideoTypes[view.Post.URLContentType] {
		return nil
	}
	return []content.Media{{
		URL:          view.Post.URL,
		ThumbnailURL: view.Post.ThumbnailURL,
		Type:         content.MediaVideo,
	}}
}
