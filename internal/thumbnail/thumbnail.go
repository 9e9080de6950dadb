// Package thumbnail downloads media previews, scales them down, and uploads
// them to the homeserver.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"

	"github.com/blackmichael/matrix-embeds/internal/mediacache"
)

// Fetcher downloads raw bytes from a URL.
type Fetcher interface {
	Get(ctx context.Context, url, userAgent string) ([]byte, error)
}

// Uploader pushes encoded media to the homeserver and returns its mxc URI.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, contentType, fileName string) (string, error)
}

// Cache remembers finished uploads across posts.
type Cache interface {
	Get(ctx context.Context, sourceURL string, size int) (*mediacache.Thumbnail, error)
	Put(ctx context.Context, sourceURL string, size int, thumb *mediacache.Thumbnail) error
}

// Image is a finished thumbnail ready to reference from a message.
type Image struct {
	URI    string
	Width  int
	Height int
}

// Service builds thumbnails. Every download waits out a fixed delay first so
// bursts of media do not hammer the source CDNs.
type Service struct {
	fetcher   Fetcher
	uploader  Uploader
	cache     Cache
	userAgent string
	delay     time.Duration
}

// NewService wires a thumbnail service. cache may be nil to disable reuse.
func NewService(fetcher Fetcher, uploader Uploader, cache Cache, userAgent string, delay time.Duration) *Service {
	return &Service{
		fetcher:   fetcher,
		uploader:  uploader,
		cache:     cache,
		userAgent: userAgent,
		delay:     delay,
	}
}

const jpegQuality = 90

// Make produces a thumbnail of the media at srcURL scaled to fit a size×size
// box. Blurred thumbnails stand in for sensitive media; they bypass the cache
// because the cache keys only on source and size.
func (s *Service) Make(ctx context.Context, srcURL string, size int, blur bool) (*Image, error) {
	if s.cache != nil && !blur {
		cached, err := s.cache.Get(ctx, srcURL, size)
		if err == nil && cached != nil {
			return &Image{URI: cached.URI, Width: cached.Width, Height: cached.Height}, nil
		}
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	data, err := s.fetcher.Get(ctx, srcURL, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)
	if blur {
		thumb = imaging.Blur(thumb, 10)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	uri, err := s.uploader.UploadImage(ctx, buf.Bytes(), "image/jpeg", "thumbnail.jpg")
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}

	result := &Image{
		URI:    uri,
		Width:  thumb.Bounds().Dx(),
		Height: thumb.Bounds().Dy(),
	}
	if s.cache != nil && !blur {
		_ = s.cache.Put(ctx, srcURL, size, &mediacache.Thumbnail{
			URI:    result.URI,
			Width:  result.Width,
			Height: result.Height,
		})
	}
	return result, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
