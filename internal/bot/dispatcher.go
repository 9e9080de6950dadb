// Package bot ties the pipeline together: it scans incoming messages for
// supported links and replies with rendered previews.
package bot

import (
	"context"
	"log/slog"
	"regexp"

	"maunium.net/go/mautrix/id"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/content"
	"github.com/blackmichael/matrix-embeds/internal/providers"
	"github.com/blackmichael/matrix-embeds/internal/render"
	"github.com/blackmichael/matrix-embeds/internal/router"
	"github.com/blackmichael/matrix-embeds/internal/thumbnail"
)

// Sender posts rendered previews back to the room.
type Sender interface {
	SendPreview(ctx context.Context, roomID id.RoomID, msg render.Message) error
	MarkRead(ctx context.Context, roomID id.RoomID, eventID id.EventID) error
}

// Fetcher downloads raw payloads from platform APIs and pages.
type Fetcher interface {
	Get(ctx context.Context, url, userAgent string) ([]byte, error)
}

// Thumbnailer turns a media URL into an uploaded preview image.
type Thumbnailer interface {
	Make(ctx context.Context, srcURL string, size int, blur bool) (*thumbnail.Image, error)
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Dispatcher routes each URL in a message through fetch, parse, thumbnail,
// and render, then sends the result. Failures are logged and skipped; the
// room never sees an error message.
type Dispatcher struct {
	router   *router.Router
	registry *providers.Registry
	fetcher  Fetcher
	thumbs   Thumbnailer
	sender   Sender
	blog     *render.Blog
	forum    *render.Forum
	logger   *slog.Logger

	thumbnailSmall int
	thumbnailLarge int
}

// NewDispatcher wires the pipeline.
func NewDispatcher(
	cfg *config.Config,
	rt *router.Router,
	registry *providers.Registry,
	fetcher Fetcher,
	thumbs Thumbnailer,
	sender Sender,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		router:         rt,
		registry:       registry,
		fetcher:        fetcher,
		thumbs:         thumbs,
		sender:         sender,
		blog:           render.NewBlog(cfg.LocalTime),
		forum:          render.NewForum(cfg.LocalTime, cfg.ForumMaxLength),
		logger:         logger,
		thumbnailSmall: cfg.ThumbnailSmall,
		thumbnailLarge: cfg.ThumbnailLarge,
	}
}

// HandleMessage previews every supported link in one room message. Links are
// processed in order and each produces its own reply.
func (d *Dispatcher) HandleMessage(ctx context.Context, roomID id.RoomID, eventID id.EventID, body string) {
	sent := false
	for _, raw := range urlPattern.FindAllString(body, -1) {
		msg, ok := d.preview(ctx, raw)
		if !ok {
			continue
		}
		if err := d.sender.SendPreview(ctx, roomID, msg); err != nil {
			d.logger.Error("failed to send preview", "url", raw, "error", err)
			continue
		}
		sent = true
	}
	if sent {
		if err := d.sender.MarkRead(ctx, roomID, eventID); err != nil {
			d.logger.Warn("failed to mark read", "room_id", roomID, "error", err)
		}
	}
}

func (d *Dispatcher) preview(ctx context.Context, raw string) (render.Message, bool) {
	req := d.router.Route(raw)
	if req == nil {
		return render.Message{}, false
	}
	logger := d.logger.With("url", raw, "platform", req.Platform)

	data, err := d.fetcher.Get(ctx, req.URL, req.UserAgent)
	if err != nil {
		logger.Error("failed to fetch post", "error", err)
		return render.Message{}, false
	}

	post, err := d.registry.Parse(req.Platform, data)
	if err != nil {
		logger.Error("failed to parse post", "error", err)
		return render.Message{}, false
	}

	var msg render.Message
	switch post.Category {
	case content.CategoryBlog:
		previews := render.Previews{
			Post: d.blogPreviews(ctx, post.Blog),
		}
		if post.Blog.Quote != nil {
			previews.Quote = d.blogPreviews(ctx, post.Blog.Quote)
		}
		msg, err = d.blog.Render(post.Blog, previews)
	case content.CategoryForum:
		msg, err = d.forum.Render(post.Forum, d.forumPreviews(ctx, post.Forum))
	}
	if err != nil {
		logger.Error("failed to render post", "error", err)
		return render.Message{}, false
	}
	return msg, true
}

// blogPreviews resolves thumbnails for a blog post. A mosaic, when present,
// replaces the individual photo thumbnails with one composite image.
func (d *Dispatcher) blogPreviews(ctx context.Context, post *content.BlogPost) []render.PreviewItem {
	if post.MosaicURL != "" && len(post.Photos) > 1 {
		item := d.makePreview(ctx, post.MosaicURL, post.URL, d.thumbnailLarge, post.Sensitive)
		if item == nil {
			return nil
		}
		return []render.PreviewItem{*item}
	}
	size := d.previewSize(len(post.Videos)+len(post.Photos), false)
	return d.mediaPreviews(ctx, combineMedia(post.Videos, post.Photos), size, post.Sensitive)
}

func (d *Dispatcher) forumPreviews(ctx context.Context, post *content.ForumPost) render.Previews {
	size := d.previewSize(len(post.Videos)+len(post.Photos), post.IsLink)
	return render.Previews{
		Post: d.mediaPreviews(ctx, combineMedia(post.Videos, post.Photos), size, post.NSFW),
	}
}

func combineMedia(videos, photos []content.Media) []content.Media {
	media := make([]content.Media, 0, len(videos)+len(photos))
	media = append(media, videos...)
	return append(media, photos...)
}

// previewSize picks the bounding box: a single attached media item gets the
// large box, link posts and galleries the small one.
func (d *Dispatcher) previewSize(mediaCount int, isLink bool) int {
	if mediaCount == 1 && !isLink {
		return d.thumbnailLarge
	}
	return d.thumbnailSmall
}

func (d *Dispatcher) mediaPreviews(ctx context.Context, media []content.Media, size int, blur bool) []render.PreviewItem {
	var items []render.PreviewItem
	for _, m := range media {
		if m.ThumbnailURL == "" {
			continue
		}
		if item := d.makePreview(ctx, m.ThumbnailURL, m.URL, size, blur); item != nil {
			items = append(items, *item)
		}
	}
	return items
}

func (d *Dispatcher) makePreview(ctx context.Context, thumbURL, sourceURL string, size int, blur bool) *render.PreviewItem {
	img, err := d.thumbs.Make(ctx, thumbURL, size, blur)
	if err != nil {
		d.logger.Warn("failed to build thumbnail", "url", thumbURL, "error", err)
		return nil
	}
	return &render.PreviewItem{
		URI:       img.URI,
		SourceURL: sourceURL,
		Alt:       "preview",
		Width:     img.Width,
		Height:    img.Height,
	}
}
