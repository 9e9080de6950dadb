// Package router classifies message URLs into platform API requests. Routing
// is pure string work; no network calls happen here.
package router

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

// Request is a routed URL: which platform claimed it and the canonical
// request to fetch its content with.
type Request struct {
	Platform content.Platform

	// URL is the canonical API or page URL to fetch.
	URL string

	// HTML marks page fetches that are scraped rather than decoded as JSON.
	HTML bool

	// UserAgent overrides the default fetch user agent when non-empty.
	UserAgent string
}

type handler struct {
	platform content.Platform
	match    func(u *url.URL) *Request
}

// Router tries each platform handler in a fixed order and returns the first
// claim. Specific, allow-listed platforms come before the generic Mastodon
// path pattern so that e.g. a TikTok URL whose path happens to look like a
// Mastodon status never falls through to the wrong parser.
type Router struct {
	handlers []handler
}

var (
	bskyPostPattern     = regexp.MustCompile(`^/profile/([^/]+)/post/([^/]+)/?$`)
	redditPostPattern   = regexp.MustCompile(`^/r/[^/]+/comments/([^/]+)(?:/[^/]+/([^/]+))?/?$`)
	mastodonPattern     = regexp.MustCompile(`^/@[^/]+/(\d+)/?$`)
	lemmyPostPattern    = regexp.MustCompile(`^/post/(\d+)/?$`)
	lemmyCommentPattern = regexp.MustCompile(`^/comment/(\d+)/?$`)
)

// New builds a Router from the configured domain allow-lists.
func New(cfg *config.Config) *Router {
	return &Router{handlers: []handler{
		{content.PlatformTwitter, twitterHandler(cfg.TwitterDomains)},
		{content.PlatformBluesky, bskyHandler(cfg.BskyDomains)},
		{content.PlatformInstagram, pageHandler(cfg.InstagramDomains, "www.instagram.com", cfg.HTMLUserAgent)},
		{content.PlatformTikTok, pageHandler(cfg.TikTokDomains, "www.tiktok.com", cfg.HTMLUserAgent)},
		{content.PlatformReddit, redditHandler(cfg.RedditDomains)},
		{content.PlatformMastodon, mastodonHandler()},
		{content.PlatformLemmy, lemmyHandler(cfg.LemmyDomains)},
	}}
}

// Route classifies a raw URL. It returns nil when no platform claims it;
// an unroutable URL is not an error.
func (r *Router) Route(raw string) *Request {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	for _, h := range r.handlers {
		if req := h.match(u); req != nil {
			req.Platform = h.platform
			return req
		}
	}
	return nil
}

// hostMatches reports whether host is one of the domains or a subdomain of
// one.
func hostMatches(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func twitterHandler(domains []string) func(u *url.URL) *Request {
	return func(u *url.URL) *Request {
		if !hostMatches(u.Hostname(), domains) {
			return nil
		}
		if !strings.Contains(u.Path, "/status/") {
			return nil
		}
		return &Request{URL: "https://api.fxtwitter.com" + u.Path}
	}
}

func bskyHandler(domains []string) func(u *url.URL) *Request {
	return func(u *url.URL) *Request {
		if !hostMatches(u.Hostname(), domains) {
			return nil
		}
		m := bskyPostPattern.FindStringSubmatch(u.Path)
		if m == nil {
			return nil
		}
		return &Request{
			URL: fmt.Sprintf(
				"https://api.bsky.app/xrpc/app.bsky.feed.getPostThread?uri=at://%s/app.bsky.feed.post/%s&depth=0",
				m[1], m[2]),
		}
	}
}

// pageHandler claims any path on an allow-listed host and rewrites the host
// to the canonical one. Instagram and TikTok serve many shapes of post URL,
// so the path is taken as-is.
func pageHandler(domains []string, canonicalHost, userAgent string) func(u *url.URL) *Request {
	return func(u *url.URL) *Request {
		if !hostMatches(u.Hostname(), domains) {
			return nil
		}
		rewritten := *u
		rewritten.Scheme = "https"
		rewritten.Host = canonicalHost
		return &Request{URL: rewritten.String(), HTML: true, UserAgent: userAgent}
	}
}

func redditHandler(domains []string) func(u *url.URL) *Request {
	return func(u *url.URL) *Request {
		if !hostMatches(u.Hostname(), domains) {
			return nil
		}
		m := redditPostPattern.FindStringSubmatch(u.Path)
		if m == nil {
			return nil
		}
		id := "t3_" + m[1]
		if m[2] != "" {
			id = "t1_" + m[2]
		}
		return &Request{URL: "https://api.reddit.com/api/info/?id=" + id}
	}
}

// mastodonHandler matches the /@user/<numeric id> shape on any host. It runs
// after every allow-listed platform, so only hosts nobody else claimed reach
// it.
func mastodonHandler() func(u *url.URL) *Request {
	return func(u *url.URL) *Request {
		m := mastodonPattern.FindStringSubmatch(u.Path)
		if m == nil {
			return nil
		}
		return &Request{URL: fmt.Sprintf("https://%s/api/v1/statuses/%s", u.Host, m[1])}
	}
}

func lemmyHandler(domains []string) func(u *url.URL) *Request {
	return func(u *url.URL) *Request {
		if !hostMatches(u.Hostname(), domains) {
			return nil
		}
		if m := lemmyPostPattern.FindStringSubmatch(u.Path); m != nil {
			return &Request{URL: fmt.Sprintf("https://%s/api/v3/post?id=%s", u.Host, m[1])}
		}
		if m := lemmyCommentPattern.FindStringSubmatch(u.Path); m != nil {
			return &Request{URL: fmt.Sprintf("https://%s/api/v3/comment?id=%s", u.Host, m[1])}
		}
		return nil
	}
}
