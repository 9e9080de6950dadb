// Package providers holds one parser per platform. A parser folds a raw
// fetch payload into the unified content model; it never touches the
// network itself.
package providers

import (
	"errors"
	"fmt"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
)

// ErrBadResponse marks a payload that signals its own application-level
// error or is missing a required identity field.
var ErrBadResponse = errors.New("bad provider response")

// ErrUnsupportedContent marks a post whose content kind the platform is not
// supported for, like an Instagram page without a playable video.
var ErrUnsupportedContent = errors.New("unsupported content")

// ParseFunc transforms one raw payload into a unified record.
type ParseFunc func(data []byte) (*content.Post, error)

// Registry maps platform tags to their parsers.
type Registry struct {
	parsers map[content.Platform]ParseFunc
}

// NewRegistry builds the parser table. Parsers that need tunables close over
// the config.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{parsers: map[content.Platform]ParseFunc{
		content.PlatformTwitter:   TwitterParser(cfg),
		content.PlatformBluesky:   BskyParser(cfg),
		content.PlatformMastodon:  MastodonParser(cfg),
		content.PlatformReddit:    RedditParser(cfg),
		content.PlatformLemmy:     ParseLemmy,
		content.PlatformInstagram: ParseInstagram,
		content.PlatformTikTok:    ParseTikTok,
	}}
}

// Parse dispatches a payload to the platform's parser.
func (r *Registry) Parse(platform content.Platform, data []byte) (*content.Post, error) {
	parse, ok := r.parsers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: no parser for platform %q", ErrBadResponse, platform)
	}
	return parse(data)
}
