package ibmq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/coder/websocket"
)

// StreamJobStatus opens the job's WebSocket status stream and invokes
// fn for every transition. The stream closes when fn returns true, the
// context is cancelled, or the server ends it after the terminal event.
func (c *Client) StreamJobStatus(ctx context.Context, id string, fn func(StatusEvent) bool) error {
	endpoint, err := c.wsEndpoint("jobs/" + url.PathEscape(id) + "/status")
	if err != nil {
		return err
	}
	conn, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{
		HTTPClient: c.hc,
		HTTPHeader: map[string][]string{
			"Authorization": {"Bearer " + c.token},
		},
	})
	if err != nil {
		return fmt.Errorf("dial status stream: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// A clean close after the terminal event is success.
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read status stream: %w", err)
		}
		var ev StatusEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warning("ibmq: bad stream frame: %v", err)
			continue
		}
		if fn(ev) {
			return nil
		}
	}
}

// wsEndpoint maps the account URL onto the ws scheme for a path.
func (c *Client) wsEndpoint(path string) (string, error) {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("cannot stream over %q: %w", u.Scheme, ErrBadURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	return u.String(), nil
}
