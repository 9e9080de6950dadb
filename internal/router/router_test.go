package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

func testRouter() *Router {
	return New(&config.Config{
		HTMLUserAgent:    "Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)",
		TwitterDomains:   []string{"x.com", "twitter.com", "fxtwitter.com", "nitter.net"},
		BskyDomains:      []string{"bsky.app", "fxbsky.app"},
		InstagramDomains: []string{"instagram.com", "ddinstagram.com"},
		TikTokDomains:    []string{"tiktok.com", "vxtiktok.com"},
		RedditDomains:    []string{"reddit.com"},
		LemmyDomains:     []string{"lemmy.world", "programming.dev"},
	})
}

func TestRouteTwitter(t *testing.T) {
	r := testRouter()

	req := r.Route("https://x.com/someone/status/1234567890")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformTwitter, req.Platform)
	assert.Equal(t, "https://api.fxtwitter.com/someone/status/1234567890", req.URL)
	assert.False(t, req.HTML)

	// subdomains of allow-listed hosts are claimed too
	req = r.Route("https://mobile.twitter.com/someone/status/42")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformTwitter, req.Platform)

	// profile links are not posts
	assert.Nil(t, r.Route("https://x.com/someone"))
}

func TestRouteBsky(t *testing.T) {
	r := testRouter()

	req := r.Route("https://bsky.app/profile/user.bsky.social/post/3kabc")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformBluesky, req.Platform)
	assert.Equal(t,
		"https://api.bsky.app/xrpc/app.bsky.feed.getPostThread?uri=at://user.bsky.social/app.bsky.feed.post/3kabc&depth=0",
		req.URL)

	assert.Nil(t, r.Route("https://bsky.app/profile/user.bsky.social"))
}

func TestRoutePagePlatforms(t *testing.T) {
	r := testRouter()

	req := r.Route("https://ddinstagram.com/reel/xyz/")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformInstagram, req.Platform)
	assert.Equal(t, "https://www.instagram.com/reel/xyz/", req.URL)
	assert.True(t, req.HTML)
	assert.Contains(t, req.UserAgent, "Discordbot")

	req = r.Route("https://vxtiktok.com/@user/video/7123")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformTikTok, req.Platform)
	assert.Equal(t, "https://www.tiktok.com/@user/video/7123", req.URL)
}

func TestRouteReddit(t *testing.T) {
	r := testRouter()

	req := r.Route("https://www.reddit.com/r/golang/comments/abc123/some_title/")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformReddit, req.Platform)
	assert.Equal(t, "https://api.reddit.com/api/info/?id=t3_abc123", req.URL)

	req = r.Route("https://reddit.com/r/golang/comments/abc123/some_title/def456")
	require.NotNil(t, req)
	assert.Equal(t, "https://api.reddit.com/api/info/?id=t1_def456", req.URL)
}

func TestRouteMastodonFallback(t *testing.T) {
	r := testRouter()

	req := r.Route("https://fosstodon.org/@someone/111222333")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformMastodon, req.Platform)
	assert.Equal(t, "https://fosstodon.org/api/v1/statuses/111222333", req.URL)

	// non-numeric status ids are not claimed
	assert.Nil(t, r.Route("https://fosstodon.org/@someone/about"))
}

// A TikTok profile-style path also matches the generic Mastodon shape; the
// allow-listed TikTok handler must win because it runs first.
func TestRoutePrecedence(t *testing.T) {
	r := testRouter()

	req := r.Route("https://tiktok.com/@user/7123456")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformTikTok, req.Platform)
}

func TestRouteLemmy(t *testing.T) {
	r := testRouter()

	req := r.Route("https://lemmy.world/post/123456")
	require.NotNil(t, req)
	assert.Equal(t, content.PlatformLemmy, req.Platform)
	assert.Equal(t, "https://lemmy.world/api/v3/post?id=123456", req.URL)

	req = r.Route("https://programming.dev/comment/98765")
	require.NotNil(t, req)
	assert.Equal(t, "https://programming.dev/api/v3/comment?id=98765", req.URL)

	// hosts outside the allow-list are left alone
	assert.Nil(t, r.Route("https://unknown-lemmy.example/post/1"))
}

func TestRouteMisses(t *testing.T) {
	r := testRouter()

	assert.Nil(t, r.Route("https://example.com/article/42"))
	assert.Nil(t, r.Route("not a url"))
	assert.Nil(t, r.Route("ftp://x.com/someone/status/1"))
}
