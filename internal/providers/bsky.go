package providers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Bluesky getPostThread payload. Embeds are polymorphic on $type, so one
// struct carries the union of all embed shapes.

type bskyResponse struct {
	Error  string `json:"error"`
	Thread *struct {
		Post *bskyPost `json:"post"`
	} `json:"thread"`
}

type bskyPost struct {
	Author      *bskyAuthor       `json:"author"`
	Record      *bskyRecord       `json:"record"`
	Embed       *bskyEmbed        `json:"embed"`
	ReplyCount  int64             `json:"replyCount"`
	RepostCount int64             `json:"repostCount"`
	LikeCount   int64             `json:"likeCount"`
	Labels      []json.RawMessage `json:"labels"`
}

type bskyAuthor struct {
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
}

type bskyRecord struct {
	Text      string      `json:"text"`
	CreatedAt string      `json:"createdAt"`
	Facets    []bskyFacet `json:"facets"`
}

type bskyFacet struct {
	Index struct {
		ByteStart int `json:"byteStart"`
		ByteEnd   int `json:"byteEnd"`
	} `json:"index"`
	Features []struct {
		Type string `json:"$type"`
		DID  string `json:"did"`
		Tag  string `json:"tag"`
		URI  string `json:"uri"`
	} `json:"features"`
}

type bskyEmbed struct {
	Type string `json:"$type"`

	// images view
	Images []struct {
		Fullsize    string      `json:"fullsize"`
		Thumb       string      `json:"thumb"`
		AspectRatio *bskyAspect `json:"aspectRatio"`
	} `json:"images"`

	// video view
	Playlist    string      `json:"playlist"`
	Thumbnail   string      `json:"thumbnail"`
	AspectRatio *bskyAspect `json:"aspectRatio"`

	// external link card
	External *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URI         string `json:"uri"`
	} `json:"external"`

	// quote record; for recordWithMedia the view record is nested one
	// level deeper
	Record *bskyEmbedRecord `json:"record"`
	Media  *bskyEmbed       `json:"media"`
}

type bskyAspect struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type bskyEmbedRecord struct {
	URI    string            `json:"uri"`
	Author *bskyAuthor       `json:"author"`
	Value  *bskyRecord       `json:"value"`
	Labels []json.RawMessage `json:"labels"`
	Embeds []bskyEmbed       `json:"embeds"`
	Record *bskyEmbedRecord  `json:"record"`
}

// BskyParser builds the Bluesky thread parser. Video playlists are turned
// into clickable links through the configured player prefix.
func BskyParser(cfg *config.Config) ParseFunc {
	return func(data []byte) (*content.Post, error) {
		var resp bskyResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrBadResponse, resp.Error)
		}
		if resp.Thread == nil || resp.Thread.Post == nil {
			return nil, fmt.Errorf("%w: no post in thread", ErrBadResponse)
		}
		post := resp.Thread.Post
		if post.Author == nil || post.Record == nil {
			return nil, fmt.Errorf("%w: post missing author or record", ErrBadResponse)
		}

		var (
			photos []content.Media
			videos []content.Media
			link   *content.Link
			quote  *content.BlogPost
		)
		if post.Embed != nil {
			photos = parseBskyPhotos(post.Embed)
			videos = parseBskyVideos(post.Embed, cfg.PlayerURL)
			link = parseBskyExternal(post.Embed)
			quote = parseBskyQuote(post.Embed, cfg.PlayerURL)
		}

		name := post.Author.DisplayName
		if name == "" {
			name = post.Author.Handle
		}
		facets, err := parseBskyFacets(post.Record)
		if err != nil {
			return nil, err
		}
		return content.NewBlogPost(&content.BlogPost{
			Text:         post.Record.Text,
			Replies:      content.FormatCount(post.ReplyCount),
			Reposts:      content.FormatCount(post.RepostCount),
			Likes:        content.FormatCount(post.LikeCount),
			AuthorName:   name,
			AuthorHandle: post.Author.Handle,
			AuthorURL:    "https://bsky.app/profile/" + post.Author.Handle,
			PostedAt:     content.ParseTimestamp(post.Record.CreatedAt),
			Photos:       photos,
			Videos:       videos,
			Facets:       facets,
			FacetOffsets: content.OffsetBytes,
			Link:         link,
			Quote:        quote,
			Platform:     content.PlatformBluesky,
			DisplayName:  "🦋 Bluesky",
			Sensitive:    len(post.Labels) > 0,
		}), nil
	}
}

func parseBskyPhotos(embed *bskyEmbed) []content.Media {
	var photos []content.Media
	if strings.Contains(embed.Type, "app.bsky.embed.images") {
		for _, img := range embed.Images {
			m := content.Media{
				URL:          img.Fullsize,
				ThumbnailURL: img.Thumb,
				Type:         content.MediaPhoto,
			}
			if img.AspectRatio != nil {
				m.Width = img.AspectRatio.Width
				m.Height = img.AspectRatio.Height
			}
			photos = append(photos, m)
		}
	}
	if strings.Contains(embed.Type, "app.bsky.embed.recordWithMedia") && embed.Media != nil {
		photos = append(photos, parseBskyPhotos(embed.Media)...)
	}
	return photos
}

func parseBskyVideos(embed *bskyEmbed, playerURL string) []content.Media {
	var videos []content.Media
	if strings.Contains(embed.Type, "app.bsky.embed.video") {
		m := content.Media{
			URL:          playerURL + embed.Playlist,
			ThumbnailURL: embed.Thumbnail,
			Type:         content.MediaVideo,
		}
		if embed.AspectRatio != nil {
			m.Width = embed.AspectRatio.Width
			m.Height = embed.AspectRatio.Height
		}
		videos = append(videos, m)
	}
	if strings.Contains(embed.Type, "app.bsky.embed.recordWithMedia") && embed.Media != nil {
		videos = append(videos, parseBskyVideos(embed.Media, playerURL)...)
	}
	return videos
}

func parseBskyExternal(embed *bskyEmbed) *content.Link {
	if !strings.Contains(embed.Type, "app.bsky.embed.external") || embed.External == nil {
		return nil
	}
	return &content.Link{
		Title:       embed.External.Title,
		Description: embed.External.Description,
		URL:         embed.External.URI,
	}
}

// parseBskyQuote extracts the quoted post from a record or recordWithMedia
// embed. A quote inside the quote is capped to the fixed placeholder.
func parseBskyQuote(embed *bskyEmbed, playerURL string) *content.BlogPost {
	if !strings.Contains(embed.Type, "app.bsky.embed.record") {
		return nil
	}
	rec := embed.Record
	if strings.Contains(embed.Type, "app.bsky.embed.recordWithMedia") && rec != nil {
		rec = rec.Record
	}
	if rec == nil || rec.Author == nil || rec.Value == nil {
		return nil
	}

	var (
		photos []content.Media
		videos []content.Media
		link   *content.Link
		inner  *content.BlogPost
	)
	for i := range rec.Embeds {
		photos = append(photos, parseBskyPhotos(&rec.Embeds[i])...)
		videos = append(videos, parseBskyVideos(&rec.Embeds[i], playerURL)...)
		if l := parseBskyExternal(&rec.Embeds[i]); l != nil {
			link = l
		}
		if strings.Contains(rec.Embeds[i].Type, "app.bsky.embed.record") {
			inner = content.QuotePlaceholder(content.PlatformBluesky)
		}
	}

	name := rec.Author.DisplayName
	if name == "" {
		name = rec.Author.Handle
	}
	facets, err := parseBskyFacets(rec.Value)
	if err != nil {
		facets = nil
	}
	rkey := rec.URI[strings.LastIndex(rec.URI, "/")+1:]
	return &content.BlogPost{
		Text:         rec.Value.Text,
		URL:          fmt.Sprintf("https://bsky.app/profile/%s/post/%s", rec.Author.Handle, rkey),
		AuthorName:   name,
		AuthorHandle: rec.Author.Handle,
		AuthorURL:    "https://bsky.app/profile/" + rec.Author.Handle,
		Photos:       photos,
		Videos:       videos,
		Facets:       facets,
		FacetOffsets: content.OffsetBytes,
		Link:         link,
		Quote:        inner,
		Platform:     content.PlatformBluesky,
		DisplayName:  "🦋 Bluesky",
		Sensitive:    len(rec.Labels) > 0,
	}
}

// parseBskyFacets maps rich-text facets. Offsets count UTF-8 bytes, so the
// displayed text for mentions and links is sliced from the byte
// representation.
func parseBskyFacets(record *bskyRecord) ([]content.Facet, error) {
	raw := []byte(record.Text)
	var facets []content.Facet
	for _, fac := range record.Facets {
		if len(fac.Features) == 0 {
			continue
		}
		start, end := fac.Index.ByteStart, fac.Index.ByteEnd
		if start < 0 || end < start || end > len(raw) {
			return nil, fmt.Errorf("%w: facet span [%d,%d) out of bounds", ErrBadResponse, start, end)
		}
		feature := fac.Features[0]
		f := content.Facet{Start: start, End: end}
		switch feature.Type {
		case "app.bsky.richtext.facet#mention":
			f.Text = string(raw[start:end])
			f.URL = "https://bsky.app/profile/" + feature.DID
		case "app.bsky.richtext.facet#tag":
			f.Text = "#" + feature.Tag
			f.URL = "https://bsky.app/hashtag/" + feature.Tag
		case "app.bsky.richtext.facet#link":
			f.Text = string(raw[start:end])
			f.URL = feature.URI
		default:
			continue
		}
		facets = append(facets, f)
	}
	sort.SliceStable(facets, func(i, j int) bool { return facets[i].Start < facets[j].Start })
	return facets, nil
}
