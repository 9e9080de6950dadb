package providers

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Mastodon status API payload.

type mastoStatus struct {
	Error            string       `json:"error"`
	URL              string       `json:"url"`
	Content          string       `json:"content"`
	CreatedAt        string       `json:"created_at"`
	RepliesCount     int64        `json:"replies_count"`
	ReblogsCount     int64        `json:"reblogs_count"`
	FavouritesCount  int64        `json:"favourites_count"`
	Sensitive        bool         `json:"sensitive"`
	SpoilerText      string       `json:"spoiler_text"`
	Account          *mastoAcct   `json:"account"`
	MediaAttachments []mastoMedia `json:"media_attachments"`
	Card             *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"card"`
	Poll  *mastoPoll  `json:"poll"`
	Quote *mastoQuote `json:"quote"`
}

// mastoQuote wraps the quoted status the way the API reports it.
type mastoQuote struct {
	QuotedStatus *mastoStatus `json:"quoted_status"`
}

type mastoAcct struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	URL         string `json:"url"`
}

type mastoMedia struct {
	Type       string `json:"type"`
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
	Meta       struct {
		Original mastoDims `json:"original"`
		Small    mastoDims `json:"small"`
	} `json:"meta"`
}

type mastoDims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type mastoPoll struct {
	ExpiresAt   string `json:"expires_at"`
	Expired     bool   `json:"expired"`
	VotersCount int64  `json:"voters_count"`
	Options     []struct {
		Title      string `json:"title"`
		VotesCount int64  `json:"votes_count"`
	} `json:"options"`
}

// Status bodies come as sanitized HTML. The quote-inline paragraph and the
// invisible URL spans are display-only artifacts and get stripped before
// rendering.
var (
	mastoQuoteInline = regexp.MustCompile(`<p\sclass="quote-inline">.*?</p>`)
	mastoInvisible   = regexp.MustCompile(`<span\sclass="invisible">[^<>]*?</span>`)
	mastoEllipsis    = regexp.MustCompile(`<span\sclass="ellipsis">([^<>]*?)</span>`)

	instancePattern = regexp.MustCompile(`https://(www\.)?(?P<base_url>.+?)/.*`)
)

// instanceName extracts the bare hostname from a post URL, for footer labels
// and cross-instance author tags.
func instanceName(url string) string {
	m := instancePattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[instancePattern.SubexpIndex("base_url")]
}

// MastodonParser builds the Mastodon status parser. The server reports quoted
// statuses inline, so quote handling needs no second fetch.
func MastodonParser(cfg *config.Config) ParseFunc {
	return func(data []byte) (*content.Post, error) {
		var status mastoStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		if status.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrBadResponse, status.Error)
		}
		if status.Account == nil {
			return nil, fmt.Errorf("%w: status missing account", ErrBadResponse)
		}

		post, err := parseMastoStatus(&status, cfg)
		if err != nil {
			return nil, err
		}
		post.Replies = content.FormatCount(status.RepliesCount)
		post.Reposts = content.FormatCount(status.ReblogsCount)
		post.Likes = content.FormatCount(status.FavouritesCount)

		if status.Quote != nil && status.Quote.QuotedStatus != nil && status.Quote.QuotedStatus.Account != nil {
			quoted := status.Quote.QuotedStatus
			quote, err := parseMastoStatus(quoted, cfg)
			if err != nil {
				return nil, err
			}
			quote.URL = quoted.URL
			if quoted.Quote != nil {
				quote.Quote = content.QuotePlaceholder(content.PlatformMastodon)
			}
			post.Quote = quote
		}
		return content.NewBlogPost(post), nil
	}
}

// parseMastoStatus folds one status object, shared between the top-level post
// and its quoted status.
func parseMastoStatus(status *mastoStatus, cfg *config.Config) (*content.BlogPost, error) {
	html, markdown, err := parseMastoContent(status.Content)
	if err != nil {
		return nil, err
	}

	name := status.Account.DisplayName
	if name == "" {
		name = status.Account.Username
	}
	videos, photos := parseMastoMedia(status.MediaAttachments, cfg)

	post := &content.BlogPost{
		Text:         html,
		Markdown:     markdown,
		AuthorName:   name,
		AuthorHandle: status.Account.Username,
		AuthorURL:    status.Account.URL,
		PostedAt:     content.ParseTimestamp(status.CreatedAt),
		Photos:       photos,
		Videos:       videos,
		Poll:         parseMastoPoll(status.Poll),
		Platform:     content.PlatformMastodon,
		DisplayName:  "🐘 " + instanceName(status.URL),
		Sensitive:    status.Sensitive,
		SpoilerText:  status.SpoilerText,
	}
	if status.Card != nil {
		post.Link = &content.Link{
			Title:       status.Card.Title,
			Description: status.Card.Description,
			URL:         status.Card.URL,
		}
	}
	return post, nil
}

// parseMastoContent cleans the status HTML and derives the markdown variant
// from it.
func parseMastoContent(body string) (html, markdown string, err error) {
	body = mastoQuoteInline.ReplaceAllString(body, "")
	body = mastoInvisible.ReplaceAllString(body, "")
	body = mastoEllipsis.ReplaceAllString(body, "$1...")

	markdown, err = htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", "", fmt.Errorf("%w: convert content: %v", ErrBadResponse, err)
	}

	body = strings.TrimPrefix(body, "<p>")
	body = strings.TrimSuffix(body, "</p>")
	return body, strings.TrimSpace(markdown), nil
}

func parseMastoMedia(attachments []mastoMedia, cfg *config.Config) (videos, photos []content.Media) {
	var images []mastoMedia
	for _, att := range attachments {
		switch att.Type {
		case "video", "gifv", "audio":
			dims := att.Meta.Small
			if dims.Width == 0 && dims.Height == 0 {
				dims = att.Meta.Original
			}
			kind := content.MediaVideo
			if att.Type == "audio" {
				kind = content.MediaAudio
			}
			videos = append(videos, content.Media{
				Width:        dims.Width,
				Height:       dims.Height,
				URL:          att.URL,
				ThumbnailURL: att.PreviewURL,
				Type:         kind,
			})
		case "image":
			images = append(images, att)
		}
	}

	// The small rendition is preferred for previews, but when it is below the
	// target thumbnail box the original is used instead so the upload does
	// not get scaled up.
	size := cfg.ThumbnailLarge
	if len(images) > 1 {
		size = cfg.ThumbnailSmall
	}
	for _, att := range images {
		dims, url := att.Meta.Small, att.PreviewURL
		if dims.Width < size && dims.Height < size {
			dims, url = att.Meta.Original, att.URL
		}
		photos = append(photos, content.Media{
			Width:        dims.Width,
			Height:       dims.Height,
			URL:          att.URL,
			ThumbnailURL: url,
			Type:         content.MediaPhoto,
		})
	}
	return videos, photos
}

func parseMastoPoll(poll *mastoPoll) *content.Poll {
	if poll == nil {
		return nil
	}
	out := &content.Poll{
		EndsAt:      content.ParseTimestamp(poll.ExpiresAt),
		TotalVoters: poll.VotersCount,
	}
	if poll.Expired {
		out.Status = "Final results"
	} else {
		out.Status = content.PollStatus(out.EndsAt, time.Now())
	}
	for _, opt := range poll.Options {
		var pct float64
		if poll.VotersCount > 0 {
			pct = math.Round(float64(opt.VotesCount)/float64(poll.VotersCount)*1000) / 10
		}
		out.Choices = append(out.Choices, content.Choice{
			Label:      opt.Title,
			Votes:      opt.VotesCount,
			Percentage: pct,
		})
	}
	return out
}
