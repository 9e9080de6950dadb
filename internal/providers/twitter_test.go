package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

const tweetFixture = `{
	"code": 200,
	"tweet": {
		"url": "https://x.com/jane/status/123",
		"raw_text": {
			"text": "Hello @jack check this",
			"facets": [
				{"type": "mention", "indices": [6, 11], "original": "jack"}
			]
		},
		"created_timestamp": 1700000000,
		"replies": 12,
		"retweets": 3400,
		"likes": 56000,
		"views": 1200000,
		"possibly_sensitive": false,
		"author": {"name": "Jane", "screen_name": "jane", "url": "https://x.com/jane"},
		"media": {
			"all": [
				{"type": "photo", "url": "https://pbs.twimg.com/1.jpg", "width": 800, "height": 600},
				{"type": "video", "url": "https://video.twimg.com/v.mp4", "thumbnail_url": "https://pbs.twimg.com/v.jpg", "width": 1280, "height": 720}
			],
			"mosaic": {"formats": {"webp": "https://mosaic.fxtwitter.com/webp/123", "jpeg": "https://mosaic.fxtwitter.com/jpeg/123"}}
		},
		"quote": {
			"url": "https://x.com/joe/status/99",
			"raw_text": {"text": "original take"},
			"author": {"name": "Joe", "screen_name": "joe", "url": "https://x.com/joe"},
			"quote": {
				"url": "https://x.com/deep/status/1",
				"raw_text": {"text": "deep"},
				"author": {"name": "Deep", "screen_name": "deep", "url": "https://x.com/deep"}
			}
		}
	}
}`

func TestParseTweet(t *testing.T) {
	parse := TwitterParser(&config.Config{})

	post, err := parse([]byte(tweetFixture))
	require.NoError(t, err)
	require.Equal(t, content.CategoryBlog, post.Category)

	blog := post.Blog
	assert.Equal(t, "Hello @jack check this", blog.Text)
	assert.Equal(t, "Jane", blog.AuthorName)
	assert.Equal(t, "jane", blog.AuthorHandle)
	assert.Equal(t, int64(1700000000), blog.PostedAt)
	assert.Equal(t, "12", blog.Replies)
	assert.Equal(t, "3.4K", blog.Reposts)
	assert.Equal(t, "56.0K", blog.Likes)
	assert.Equal(t, "1.2M", blog.Views)
	assert.Equal(t, "✖️ X (Twitter)", blog.DisplayName)
	assert.Equal(t, content.OffsetRunes, blog.FacetOffsets)

	require.Len(t, blog.Facets, 1)
	assert.Equal(t, content.Facet{Text: "@jack", URL: "https://x.com/jack", Start: 6, End: 11}, blog.Facets[0])

	require.Len(t, blog.Photos, 1)
	require.Len(t, blog.Videos, 1)
	assert.Equal(t, "https://pbs.twimg.com/1.jpg", blog.Photos[0].ThumbnailURL)
	assert.Equal(t, "https://pbs.twimg.com/v.jpg", blog.Videos[0].ThumbnailURL)
	assert.Equal(t, "https://mosaic.fxtwitter.com/webp/123", blog.MosaicURL)
}

func TestParseTweetQuoteDepth(t *testing.T) {
	parse := TwitterParser(&config.Config{})

	post, err := parse([]byte(tweetFixture))
	require.NoError(t, err)

	quote := post.Blog.Quote
	require.NotNil(t, quote)
	assert.Equal(t, "original take", quote.Text)
	assert.Equal(t, "joe", quote.AuthorHandle)

	require.NotNil(t, quote.Quote)
	assert.True(t, quote.Quote.IsPlaceholder())
	assert.Nil(t, quote.Quote.Quote)
}

func TestParseTweetNitterRedirect(t *testing.T) {
	parse := TwitterParser(&config.Config{NitterRedirect: true, NitterHost: "nitter.net"})

	post, err := parse([]byte(tweetFixture))
	require.NoError(t, err)

	blog := post.Blog
	assert.Equal(t, "https://nitter.net/jane", blog.AuthorURL)
	assert.Equal(t, "https://nitter.net/jane/status/123", blog.URL)
	assert.Equal(t, "https://nitter.net/jack", blog.Facets[0].URL)
	assert.Equal(t, "https://nitter.net/joe/status/99", blog.Quote.URL)
}

func TestParseTweetBadResponse(t *testing.T) {
	parse := TwitterParser(&config.Config{})

	_, err := parse([]byte(`{"code": 404, "message": "NOT_FOUND"}`))
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = parse([]byte(`{"code": 200, "tweet": {"url": "https://x.com/x/status/1"}}`))
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = parse([]byte(`not json`))
	assert.ErrorIs(t, err, ErrBadResponse)
}
