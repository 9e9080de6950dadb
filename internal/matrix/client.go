// Package matrix wraps the homeserver connection: the sync loop that feeds
// incoming room messages to the bot and the calls that send previews back.
package matrix

import (
	"context"
	"fmt"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/blackmichael/matrix-embeds/internal/render"
)

// MessageHandler receives one incoming room message.
type MessageHandler func(ctx context.Context, roomID id.RoomID, eventID id.EventID, body string)

// Client is a thin wrapper around the mautrix client.
type Client struct {
	client    *mautrix.Client
	userID    id.UserID
	startTime int64
}

// NewClient connects to the homeserver with a pre-provisioned access token.
func NewClient(homeserver, userID, accessToken string) (*Client, error) {
	client, err := mautrix.NewClient(homeserver, id.UserID(userID), accessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}
	return &Client{
		client:    client,
		userID:    id.UserID(userID),
		startTime: time.Now().UnixMilli(),
	}, nil
}

// OnMessage registers the handler for room messages. The bot's own messages
// and events from before startup are dropped so restarts do not replay old
// rooms.
func (c *Client) OnMessage(handler MessageHandler) {
	syncer := c.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, func(ctx context.Context, evt *event.Event) {
		if evt.Sender == c.userID || evt.Timestamp < c.startTime {
			return
		}
		content := evt.Content.AsMessage()
		if content.MsgType != event.MsgText {
			return
		}
		handler(ctx, evt.RoomID, evt.ID, content.Body)
	})
}

// Run syncs with the homeserver until the context is cancelled.
func (c *Client) Run(ctx context.Context) error {
	return c.client.SyncWithContext(ctx)
}

// SendPreview posts a rendered preview as a notice, so other bots ignore it.
func (c *Client) SendPreview(ctx context.Context, roomID id.RoomID, msg render.Message) error {
	_, err := c.client.SendMessageEvent(ctx, roomID, event.EventMessage, &event.MessageEventContent{
		MsgType:       event.MsgNotice,
		Body:          msg.Plain,
		Format:        event.FormatHTML,
		FormattedBody: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("send preview: %w", err)
	}
	return nil
}

// UploadImage pushes encoded image bytes to the media repository and returns
// the assigned mxc URI.
func (c *Client) UploadImage(ctx context.Context, data []byte, contentType, fileName string) (string, error) {
	resp, err := c.client.UploadMedia(ctx, mautrix.ReqUploadMedia{
		ContentBytes: data,
		ContentType:  contentType,
		FileName:     fileName,
	})
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	return resp.ContentURI.String(), nil
}

// MarkRead acknowledges an event so the room does not pile up unread badges
// for the bot account.
func (c *Client) MarkRead(ctx context.Context, roomID id.RoomID, eventID id.EventID) error {
	return c.client.MarkRead(ctx, roomID, eventID)
}
