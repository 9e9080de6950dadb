package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/matrix-embeds/internal/content"
)

func TestParseInstagram(t *testing.T) {
	post, err := ParseInstagram([]byte(`<html><head>
		<link rel="canonical" href="https://www.instagram.com/reel/Cabc/">
		<meta property="og:title" content="Watch this reel&#10;right now">
		<meta name="twitter:image" content="https://scontent.cdninstagram.com/thumb.jpg">
		<meta property="og:video" content="https://scontent.cdninstagram.com/reel.mp4">
	</head><body></body></html>`))
	require.NoError(t, err)
	require.Equal(t, content.CategoryForum, post.Category)

	forum := post.Forum
	assert.Equal(t, "Instagram reel", forum.Title)
	assert.Equal(t, "https://www.instagram.com/reel/Cabc/", forum.URL)
	assert.Equal(t, "<p>Watch this reel<br>right now</p>", forum.Text)
	assert.Equal(t, "Watch this reel\nright now", forum.Markdown)
	assert.Equal(t, "🖼️ Instagram", forum.DisplayName)

	require.Len(t, forum.Videos, 1)
	assert.Equal(t, "https://scontent.cdninstagram.com/reel.mp4", forum.Videos[0].URL)
	assert.Equal(t, "https://scontent.cdninstagram.com/thumb.jpg", forum.Videos[0].ThumbnailURL)
}

func TestParseInstagramNoVideo(t *testing.T) {
	_, err := ParseInstagram([]byte(`<html><head>
		<meta property="og:title" content="Just a photo">
	</head><body></body></html>`))
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestParseTikTok(t *testing.T) {
	post, err := ParseTikTok([]byte(`<html><head>
		<meta property="og:title" content="funny dance">
		<meta property="og:description" content="you will not believe it">
		<meta property="og:image" content="https://p16-sign.tiktokcdn.com/cover.jpg">
		<meta name="lark:url:video_iframe_url" content="https://www.tiktok.com/player/v1/7123">
	</head><body></body></html>`))
	require.NoError(t, err)

	forum := post.Forum
	assert.Equal(t, "funny dance", forum.Title)
	assert.Equal(t, "<p>you will not believe it</p>", forum.Text)
	assert.Equal(t, "https://www.tiktok.com/player/v1/7123", forum.URL)
	assert.Equal(t, "🎞️ TikTok", forum.DisplayName)

	require.Len(t, forum.Videos, 1)
	assert.Equal(t, "https://p16-sign.tiktokcdn.com/cover.jpg", forum.Videos[0].ThumbnailURL)
}

func TestParseTikTokDefaults(t *testing.T) {
	post, err := ParseTikTok([]byte(`<html><head>
		<meta name="lark:url:video_iframe_url" content="https://www.tiktok.com/player/v1/9">
	</head><body></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, "TikTok video", post.Forum.Title)
	assert.Empty(t, post.Forum.Text)
}

func TestParseTikTokNoVideo(t *testing.T) {
	_, err := ParseTikTok([]byte(`<html><head></head><body>blocked</body></html>`))
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}
