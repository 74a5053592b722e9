package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"civicdesk.org/internal/stream"
)

// LiveChannel is a single WebSocket subscription to complaint events.
// Exactly one channel exists per session; it is opened when a token
// becomes available and closed on logout. A dropped connection is not
// redialed: Done is closed and delivery silently stops.
type LiveChannel struct {
	conn *websocket.Conn

	closeOnce sync.Once
	done      chan struct{}
}

// DialLive connects to the platform's event stream and invokes apply
// for every STATUS_UPDATE event until the connection closes. Events of
// any other type are ignored, not errors.
func DialLive(ctx context.Context, baseURL, token string, apply func(complaintID, status string)) (*LiveChannel, error) {
	wsURL, err := liveURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial live channel: %w", err)
	}

	ch := &LiveChannel{conn: conn, done: make(chan struct{})}
	go ch.readLoop(apply)
	return ch, nil
}

// Done is closed once the channel stops delivering, whether by Close or
// a dropped connection.
func (ch *LiveChannel) Done() <-chan struct{} { return ch.done }

// Close tears the connection down. Safe to call more than once.
func (ch *LiveChannel) Close() {
	ch.closeOnce.Do(func() {
		_ = ch.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = ch.conn.Close()
	})
}

func (ch *LiveChannel) readLoop(apply func(complaintID, status string)) {
	defer close(ch.done)
	defer ch.Close()
	for {
		var evt stream.Event
		if err := ch.conn.ReadJSON(&evt); err != nil {
			return
		}
		if evt.Type != stream.TypeStatusUpdate {
			continue
		}
		if apply != nil {
			apply(evt.ComplaintID, evt.Status)
		}
	}
}

// liveURL turns an http(s) API base into the ws(s) endpoint with the
// bearer token in the query string.
func liveURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/api/ws")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CollectionDialer wires live status updates straight into a
// Collection, the usual pairing for a portal view.
func CollectionDialer(baseURL string, coll *Collection) func(token string) (*LiveChannel, error) {
	return func(token string) (*LiveChannel, error) {
		return DialLive(context.Background(), baseURL, token, func(id, status string) {
			coll.ApplyStatusPatch(id, status)
		})
	}
}
