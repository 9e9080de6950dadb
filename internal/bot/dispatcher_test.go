package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/id"

	"github.com/blackmichael/matrix-embeds/internal/config"
	"github.com/blackmichael/matrix-embeds/internal/providers"
	"github.com/blackmichael/matrix-embeds/internal/render"
	"github.com/blackmichael/matrix-embeds/internal/router"
	"github.com/blackmichael/matrix-embeds/internal/thumbnail"
)

type fakeSender struct {
	sent     []render.Message
	markedAt []id.EventID
	fail     bool
}

func (s *fakeSender) SendPreview(_ context.Context, _ id.RoomID, msg render.Message) error {
	if s.fail {
		return errors.New("send failed")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) MarkRead(_ context.Context, _ id.RoomID, eventID id.EventID) error {
	s.markedAt = append(s.markedAt, eventID)
	return nil
}

type fakeFetcher struct {
	responses map[string][]byte
	err       error
}

func (f *fakeFetcher) Get(_ context.Context, url, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", url)
	}
	return data, nil
}

type fakeThumbnailer struct {
	calls []string
}

func (t *fakeThumbnailer) Make(_ context.Context, srcURL string, size int, _ bool) (*thumbnail.Image, error) {
	t.calls = append(t.calls, srcURL)
	return &thumbnail.Image{URI: "mxc://example.org/thumb", Width: size, Height: size}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		UserAgent:        "test-agent",
		HTMLUserAgent:    "test-html-agent",
		ThumbnailSmall:   120,
		ThumbnailLarge:   400,
		ForumMaxLength:   400,
		TwitterDomains:   []string{"x.com", "twitter.com"},
		BskyDomains:      []string{"bsky.app"},
		InstagramDomains: []string{"instagram.com"},
		TikTokDomains:    []string{"tiktok.com"},
		RedditDomains:    []string{"reddit.com"},
		LemmyDomains:     []string{"lemmy.world"},
	}
}

func newTestDispatcher(cfg *config.Config, fetcher Fetcher, sender Sender) *Dispatcher {
	return NewDispatcher(
		cfg,
		router.New(cfg),
		providers.NewRegistry(cfg),
		fetcher,
		&fakeThumbnailer{},
		sender,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

const dispatchTweet = `{
	"code": 200,
	"tweet": {
		"url": "https://x.com/jane/status/123",
		"raw_text": {"text": "hi"},
		"created_timestamp": 1700000000,
		"replies": 1,
		"author": {"name": "Jane", "screen_name": "jane", "url": "https://x.com/jane"}
	}
}`

func TestHandleMessagePreviewsEachLink(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{responses: map[string][]byte{
		"https://api.fxtwitter.com/jane/status/123": []byte(dispatchTweet),
		"https://api.fxtwitter.com/jane/status/456": []byte(dispatchTweet),
	}}
	sender := &fakeSender{}
	d := newTestDispatcher(cfg, fetcher, sender)

	d.HandleMessage(context.Background(), "!room:example.org", "$evt1",
		"look https://x.com/jane/status/123 and https://twitter.com/jane/status/456")

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0].HTML, "Jane (@jane)")
	assert.Contains(t, sender.sent[0].Plain, "✖️ X (Twitter)")
	assert.Equal(t, []id.EventID{"$evt1"}, sender.markedAt)
}

func TestHandleMessageIgnoresUnroutedLinks(t *testing.T) {
	cfg := testConfig()
	sender := &fakeSender{}
	d := newTestDispatcher(cfg, &fakeFetcher{}, sender)

	d.HandleMessage(context.Background(), "!room:example.org", "$evt1",
		"see https://example.org/article and no links otherwise")

	assert.Empty(t, sender.sent)
	assert.Empty(t, sender.markedAt)
}

func TestHandleMessageSkipsFailedFetch(t *testing.T) {
	cfg := testConfig()
	sender := &fakeSender{}
	d := newTestDispatcher(cfg, &fakeFetcher{err: errors.New("timeout")}, sender)

	d.HandleMessage(context.Background(), "!room:example.org", "$evt1",
		"https://x.com/jane/status/123")

	assert.Empty(t, sender.sent)
	assert.Empty(t, sender.markedAt)
}

func TestHandleMessageSkipsBadPayload(t *testing.T) {
	cfg := testConfig()
	fetcher := &fakeFetcher{responses: map[string][]byte{
		"https://api.fxtwitter.com/jane/status/123": []byte(`{"code": 404}`),
	}}
	sender := &fakeSender{}
	d := newTestDispatcher(cfg, fetcher, sender)

	d.HandleMessage(context.Background(), "!room:example.org", "$evt1",
		"https://x.com/jane/status/123")

	assert.Empty(t, sender.sent)
}

func TestPreviewSizes(t *testing.T) {
	cfg := testConfig()
	d := newTestDispatcher(cfg, &fakeFetcher{}, &fakeSender{})

	assert.Equal(t, 400, d.previewSize(1, false))
	assert.Equal(t, 120, d.previewSize(1, true))
	assert.Equal(t, 120, d.previewSize(3, false))
	assert.Equal(t, 120, d.previewSize(0, false))
}
