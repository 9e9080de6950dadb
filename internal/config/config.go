// Package config loads the bot's configuration from the environment once at
// startup. The resulting Config is injected into components and never
// mutated afterwards.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the bot.
type Config struct {
	// Homeserver is the Matrix client-server API base URL.
	Homeserver string `env:"MATRIX_HOMESERVER,required"`

	// UserID is the bot's full Matrix user ID (@bot:example.org).
	UserID string `env:"MATRIX_USER_ID,required"`

	// AccessToken authenticates the bot against the homeserver.
	AccessToken string `env:"MATRIX_ACCESS_TOKEN,required"`

	// UserAgent is sent on JSON API requests.
	UserAgent string `env:"EMBED_USER_AGENT" envDefault:"matrix-embeds/1.0"`

	// HTMLUserAgent is sent when fetching raw pages from platforms that only
	// serve open-graph metadata to known preview crawlers.
	HTMLUserAgent string `env:"EMBED_HTML_USER_AGENT" envDefault:"Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)"`

	// RequestTimeout bounds every outbound fetch, in seconds.
	RequestTimeout int `env:"EMBED_REQUEST_TIMEOUT" envDefault:"20"`

	// ThumbnailSmall and ThumbnailLarge are the bounding-box sizes for
	// uploaded preview thumbnails, in pixels.
	ThumbnailSmall int `env:"EMBED_THUMBNAIL_SMALL" envDefault:"120"`
	ThumbnailLarge int `env:"EMBED_THUMBNAIL_LARGE" envDefault:"400"`

	// ThumbnailDelayMS is the fixed delay between thumbnail downloads and
	// uploads, in milliseconds.
	ThumbnailDelayMS int `env:"EMBED_THUMBNAIL_DELAY_MS" envDefault:"200"`

	// ForumMaxLength is the body length above which a forum post folds into
	// a collapsed details element.
	ForumMaxLength int `env:"EMBED_FORUM_MAX_LENGTH" envDefault:"400"`

	// LocalTime renders footer timestamps in the process's local zone
	// instead of UTC.
	LocalTime bool `env:"EMBED_LOCAL_TIME" envDefault:"false"`

	// NitterRedirect rewrites twitter links in rendered output to NitterHost.
	NitterRedirect bool   `env:"EMBED_NITTER_REDIRECT" envDefault:"false"`
	NitterHost     string `env:"EMBED_NITTER_HOST" envDefault:"nitter.net"`

	// PlayerURL is the HLS player prefix. Bluesky playlist and Reddit video
	// URLs are appended to it to form clickable video links.
	PlayerURL string `env:"EMBED_PLAYER_URL" envDefault:"https://hlsplayer.net/embed?url="`

	// MediaCachePath is the sqlite file backing the thumbnail upload cache.
	MediaCachePath string `env:"EMBED_MEDIA_CACHE_PATH" envDefault:"media-cache.db"`

	// Per-platform domain allow-lists. A URL is claimed by a platform when
	// its host equals one of these domains or is a subdomain of one.
	TwitterDomains   []string `env:"EMBED_TWITTER_DOMAINS" envSeparator:"," envDefault:"x.com,twitter.com,fixupx.com,fxtwitter.com,fixvx.com,vxtwitter.com,nitter.net,xcancel.com"`
	BskyDomains      []string `env:"EMBED_BSKY_DOMAINS" envSeparator:"," envDefault:"bsky.app,fxbsky.app,skyview.social"`
	InstagramDomains []string `env:"EMBED_INSTAGRAM_DOMAINS" envSeparator:"," envDefault:"instagram.com,ddinstagram.com,kkinstagram.com"`
	TikTokDomains    []string `env:"EMBED_TIKTOK_DOMAINS" envSeparator:"," envDefault:"tiktok.com,vxtiktok.com"`
	RedditDomains    []string `env:"EMBED_REDDIT_DOMAINS" envSeparator:"," envDefault:"reddit.com"`
	LemmyDomains     []string `env:"EMBED_LEMMY_DOMAINS" envSeparator:"," envDefault:"lemmy.world,lemmy.ml,programming.dev,sh.itjust.works,lemm.ee,feddit.org"`
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
