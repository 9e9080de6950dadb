package providers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

// FxTwitter API payload.

type fxResponse struct {
	Code  int      `json:"code"`
	Tweet *fxTweet `json:"tweet"`
}

type fxTweet struct {
	URL               string           `json:"url"`
	RawText           *fxRawText       `json:"raw_text"`
	CreatedTimestamp  int64            `json:"created_timestamp"`
	Replies           int64            `json:"replies"`
	Retweets          int64            `json:"retweets"`
	Likes             int64            `json:"likes"`
	Views             int64            `json:"views"`
	PossiblySensitive bool             `json:"possibly_sensitive"`
	Author            *fxAuthor        `json:"author"`
	Media             *fxMedia         `json:"media"`
	Poll              *fxPoll          `json:"poll"`
	Quote             *fxTweet         `json:"quote"`
	Translation       *fxTranslation   `json:"translation"`
	CommunityNote     *fxCommunityNote `json:"community_note"`
}

type fxRawText struct {
	Text   string    `json:"text"`
	Facets []fxFacet `json:"facets"`
}

type fxFacet struct {
	Type        string `json:"type"`
	Indices     []int  `json:"indices"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Display     string `json:"display"`
}

type fxAuthor struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
	URL        string `json:"url"`
}

type fxMedia struct {
	All    []fxMediaItem `json:"all"`
	Mosaic *fxMosaic     `json:"mosaic"`
}

type fxMediaItem struct {
	Type         string `json:"type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type fxMosaic struct {
	Formats struct {
		WebP string `json:"webp"`
		JPEG string `json:"jpeg"`
	} `json:"formats"`
}

type fxPoll struct {
	Choices []struct {
		Label      string  `json:"label"`
		Count      int64   `json:"count"`
		Percentage float64 `json:"percentage"`
	} `json:"choices"`
	TotalVotes int64  `json:"total_votes"`
	EndsAt     string `json:"ends_at"`
	TimeLeftEn string `json:"time_left_en"`
}

type fxTranslation struct {
	Text         string `json:"text"`
	SourceLangEn string `json:"source_lang_en"`
}

type fxCommunityNote struct {
	Text string `json:"text"`
}

// TwitterParser builds the FxTwitter parser. The Nitter redirect option
// rewrites author, quote, and facet links to the configured mirror.
func TwitterParser(cfg *config.Config) ParseFunc {
	return func(data []byte) (*content.Post, error) {
		var resp fxResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		if resp.Code != 200 || resp.Tweet == nil {
			return nil, fmt.Errorf("%w: status code %d", ErrBadResponse, resp.Code)
		}
		tweet := resp.Tweet
		if tweet.Author == nil || tweet.RawText == nil {
			return nil, fmt.Errorf("%w: tweet missing author or text", ErrBadResponse)
		}

		videos, photos := parseTweetMedia(tweet.Media)
		post := &content.BlogPost{
			Text:           tweet.RawText.Text,
			URL:            tweet.URL,
			Replies:        content.FormatCount(tweet.Replies),
			Reposts:        content.FormatCount(tweet.Retweets),
			Likes:          content.FormatCount(tweet.Likes),
			Views:          content.FormatCount(tweet.Views),
			ModerationNote: tweet.noteText(),
			AuthorName:     tweet.Author.Name,
			AuthorHandle:   tweet.Author.ScreenName,
			AuthorURL:      tweet.Author.URL,
			PostedAt:       tweet.CreatedTimestamp,
			Photos:         photos,
			Videos:         videos,
			MosaicURL:      tweet.mosaicURL(),
			Facets:         parseTweetFacets(tweet.RawText),
			FacetOffsets:   content.OffsetRunes,
			Poll:           parseTweetPoll(tweet.Poll),
			Quote:          parseTweetQuote(tweet),
			Platform:       content.PlatformTwitter,
			DisplayName:    "✖️ X (Twitter)",
			Sensitive:      tweet.PossiblySensitive,
		}
		if tweet.Translation != nil {
			post.Translation = tweet.Translation.Text
			post.TranslationLang = tweet.Translation.SourceLangEn
		}

		if cfg.NitterRedirect {
			nitterRewrite(post, cfg.NitterHost)
		}
		return content.NewBlogPost(post), nil
	}
}

func (t *fxTweet) noteText() string {
	if t.CommunityNote == nil {
		return ""
	}
	return t.CommunityNote.Text
}

func (t *fxTweet) mosaicURL() string {
	if t.Media == nil || t.Media.Mosaic == nil {
		return ""
	}
	return t.Media.Mosaic.Formats.WebP
}

func parseTweetQuote(tweet *fxTweet) *content.BlogPost {
	quote := tweet.Quote
	if quote == nil {
		return nil
	}
	if quote.Author == nil || quote.RawText == nil {
		return nil
	}
	videos, photos := parseTweetMedia(quote.Media)
	post := &content.BlogPost{
		Text:         quote.RawText.Text,
		URL:          quote.URL,
		AuthorName:   quote.Author.Name,
		AuthorHandle: quote.Author.ScreenName,
		AuthorURL:    quote.Author.URL,
		Photos:       photos,
		Videos:       videos,
		MosaicURL:    quote.mosaicURL(),
		Facets:       parseTweetFacets(quote.RawText),
		FacetOffsets: content.OffsetRunes,
		Poll:         parseTweetPoll(quote.Poll),
		Platform:     content.PlatformTwitter,
		DisplayName:  "✖️ X (Twitter)",
		Sensitive:    tweet.PossiblySensitive,
	}
	if quote.Quote != nil {
		post.Quote = content.QuotePlaceholder(content.PlatformTwitter)
	}
	return post
}

func parseTweetMedia(media *fxMedia) (videos, photos []content.Media) {
	if media == nil {
		return nil, nil
	}
	for _, elem := range media.All {
		switch elem.Type {
		case "video", "gif":
			videos = append(videos, content.Media{
				Width:        elem.Width,
				Height:       elem.Height,
				URL:          elem.URL,
				ThumbnailURL: elem.ThumbnailURL,
				Type:         content.MediaVideo,
			})
		case "photo":
			photos = append(photos, content.Media{
				Width:        elem.Width,
				Height:       elem.Height,
				URL:          elem.URL,
				ThumbnailURL: elem.URL,
				Type:         content.MediaPhoto,
			})
		}
	}
	return videos, photos
}

func parseTweetPoll(poll *fxPoll) *content.Poll {
	if poll == nil {
		return nil
	}
	out := &content.Poll{
		EndsAt:      content.ParseTimestamp(poll.EndsAt),
		Status:      poll.TimeLeftEn,
		TotalVoters: poll.TotalVotes,
	}
	for _, c := range poll.Choices {
		out.Choices = append(out.Choices, content.Choice{
			Label:      c.Label,
			Votes:      c.Count,
			Percentage: c.Percentage,
		})
	}
	return out
}

// parseTweetFacets maps the API's rich-text spans. Media facets are skipped
// because the API reports wrong indices for them. Offsets count code points.
func parseTweetFacets(raw *fxRawText) []content.Facet {
	var facets []content.Facet
	for _, fac := range raw.Facets {
		if len(fac.Indices) != 2 {
			continue
		}
		f := content.Facet{Start: fac.Indices[0], End: fac.Indices[1]}
		switch fac.Type {
		case "url":
			f.Text = fac.Display
			f.URL = fac.Replacement
		case "mention":
			f.Text = "@" + fac.Original
			f.URL = "https://x.com/" + fac.Original
		case "hashtag":
			f.Text = "#" + fac.Original
			f.URL = "https://x.com/hashtag/" + fac.Original
		default:
			continue
		}
		facets = append(facets, f)
	}
	sort.SliceStable(facets, func(i, j int) bool { return facets[i].Start < facets[j].Start })
	return facets
}

func nitterRewrite(post *content.BlogPost, host string) {
	post.AuthorURL = strings.Replace(post.AuthorURL, "x.com", host, 1)
	post.URL = strings.Replace(post.URL, "x.com", host, 1)
	for i := range post.Facets {
		post.Facets[i].URL = strings.Replace(post.Facets[i].URL, "https://x.com", "https://"+host, 1)
	}
	if post.Quote != nil {
		nitterRewrite(post.Quote, host)
	}
}
