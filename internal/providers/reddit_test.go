package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

func redditTestConfig() *config.Config {
	return &config.Config{
		ThumbnailSmall: 120,
		ThumbnailLarge: 400,
		PlayerURL:      "https://player.example/?url=",
	}
}

func TestParseRedditPost(t *testing.T) {
	parse := RedditParser(redditTestConfig())

	post, err := parse([]byte(`{
		"data": {"children": [{"kind": "t3", "data": {
			"title": "A big discovery",
			"link_flair_text": "science",
			"selftext": "Spoiler ahead &gt;!the twist!&lt; end",
			"selftext_html": "&lt;!-- SC_OFF --&gt;&lt;div&gt;Spoiler ahead &lt;span class=\"md-spoiler-text\"&gt;the twist&lt;/span&gt; end&lt;/div&gt;&lt;!-- SC_ON --&gt;",
			"subreddit_name_prefixed": "r/science",
			"author": "researcher",
			"score": 15400,
			"ups": 16000,
			"downs": 600,
			"upvote_ratio": 0.97,
			"over_18": false,
			"spoiler": false,
			"num_comments": 256,
			"created": 1700000000.0,
			"url": "https://www.reddit.com/r/science/comments/abc/a_big_discovery/",
			"post_hint": "image",
			"is_video": false,
			"preview": {"images": [{"resolutions": [
				{"width": 108, "height": 81, "url": "https://preview.redd.it/s.jpg?width=108&amp;crop=smart"},
				{"width": 216, "height": 162, "url": "https://preview.redd.it/s.jpg?width=216&amp;crop=smart"},
				{"width": 640, "height": 480, "url": "https://preview.redd.it/s.jpg?width=640&amp;crop=smart"}
			]}]}
		}}]}
	}`))
	require.NoError(t, err)
	require.Equal(t, content.CategoryForum, post.Category)

	forum := post.Forum
	assert.Equal(t, "A big discovery", forum.Title)
	assert.Equal(t, "science", forum.Flair)
	assert.Equal(t, "r/science", forum.Sub)
	assert.Equal(t, "https://www.reddit.com/r/science", forum.SubURL)
	assert.Equal(t, "https://www.reddit.com/u/researcher", forum.AuthorURL)
	assert.Equal(t, "15.4K", forum.Score)
	assert.Equal(t, 97, forum.UpvoteRatio)
	assert.Equal(t, int64(256), forum.Comments)
	assert.Equal(t, int64(1700000000), forum.PostedAt)
	assert.False(t, forum.IsLink)
	assert.False(t, forum.IsComment)
	assert.Equal(t, "👽 Reddit", forum.DisplayName)

	assert.Equal(t, `<div>Spoiler ahead <span data-mx-spoiler>the twist</span> end</div>`, forum.Text)
	assert.Equal(t, "Spoiler ahead ||the twist|| end", forum.Markdown)

	// image hint targets the large box; 640 is the first rendition above it
	require.Len(t, forum.Photos, 1)
	assert.Equal(t, 640, forum.Photos[0].Width)
	assert.Equal(t, "https://preview.redd.it/s.jpg?width=640&crop=smart", forum.Photos[0].ThumbnailURL)
}

func TestParseRedditGallery(t *testing.T) {
	parse := RedditParser(redditTestConfig())

	post, err := parse([]byte(`{
		"data": {"children": [{"kind": "t3", "data": {
			"title": "Gallery",
			"subreddit_name_prefixed": "r/pics",
			"author": "snapper",
			"created": 1700000000.0,
			"url": "https://www.reddit.com/gallery/abc",
			"is_video": false,
			"gallery_data": {"items": [
				{"media_id": "img1"},
				{"media_id": "img2"}
			]},
			"media_metadata": {
				"img1": {"m": "image/jpg", "p": [
					{"x": 108, "y": 81, "u": "https://preview.redd.it/img1.jpg?width=108&amp;s=1"},
					{"x": 216, "y": 162, "u": "https://preview.redd.it/img1.jpg?width=216&amp;s=2"}
				]},
				"img2": {"m": "image/png", "p": [
					{"x": 64, "y": 64, "u": "https://preview.redd.it/img2.png?width=64&amp;s=3"}
				]}
			}
		}}]}
	}`))
	require.NoError(t, err)

	photos := post.Forum.Photos
	require.Len(t, photos, 2)
	assert.Equal(t, "https://i.redd.it/img1.jpg", photos[0].URL)
	assert.Equal(t, 216, photos[0].Width)
	assert.Equal(t, "https://preview.redd.it/img1.jpg?width=216&s=2", photos[0].ThumbnailURL)

	// every rendition is below the small box, so the largest wins
	assert.Equal(t, "https://i.redd.it/img2.png", photos[1].URL)
	assert.Equal(t, 64, photos[1].Width)
}

func TestParseRedditVideo(t *testing.T) {
	parse := RedditParser(redditTestConfig())

	post, err := parse([]byte(`{
		"data": {"children": [{"kind": "t3", "data": {
			"title": "Clip",
			"subreddit_name_prefixed": "r/videos",
			"author": "filmer",
			"created": 1700000000.0,
			"url": "https://v.redd.it/xyz",
			"is_video": true,
			"media": {"reddit_video": {"hls_url": "https://v.redd.it/xyz/HLSPlaylist.m3u8"}},
			"preview": {"images": [{"resolutions": [
				{"width": 480, "height": 270, "url": "https://preview.redd.it/v.png?width=480&amp;s=9"}
			]}]}
		}}]}
	}`))
	require.NoError(t, err)

	videos := post.Forum.Videos
	require.Len(t, videos, 1)
	assert.Equal(t, "https://player.example/?url=https://v.redd.it/xyz/HLSPlaylist.m3u8", videos[0].URL)
	assert.Equal(t, "https://preview.redd.it/v.png?width=480&s=9", videos[0].ThumbnailURL)
}

func TestParseRedditComment(t *testing.T) {
	parse := RedditParser(redditTestConfig())

	post, err := parse([]byte(`{
		"data": {"children": [{"kind": "t1", "data": {
			"body": "good point",
			"body_html": "&lt;p&gt;good point&lt;/p&gt;",
			"subreddit_name_prefixed": "r/golang",
			"author": "gopher",
			"score": 12,
			"ups": 13,
			"downs": 1,
			"created": 1700000000.0,
			"permalink": "/r/golang/comments/abc/title/def/"
		}}]}
	}`))
	require.NoError(t, err)

	forum := post.Forum
	assert.Equal(t, "Comment permalink", forum.Title)
	assert.True(t, forum.IsComment)
	assert.Equal(t, "<p>good point</p>", forum.Text)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/abc/title/def/", forum.URL)
	assert.Equal(t, "12", forum.Score)
	assert.Zero(t, forum.Comments)
	assert.Empty(t, forum.Photos)
}

func TestParseRedditBadResponse(t *testing.T) {
	parse := RedditParser(redditTestConfig())

	_, err := parse([]byte(`{"data": {"children": []}}`))
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = parse([]byte(`[]`))
	assert.ErrorIs(t, err, ErrBadResponse)
}
