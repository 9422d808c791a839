// Package realtime listens to the hosted backend's change feed over a
// websocket.
package realtime

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
)

const (
	eventJoin      = "phx_join"
	eventReply     = "phx_reply"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"
	eventClose     = "phx_close"
	eventError     = "phx_error"

	channelTopic = "realtime:public"
	writeWait    = 10 * time.Second
)

// Change is one row change on a watched table.
type Change struct {
	Table     string          `json:"table"`
	Type      string          `json:"type"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
}

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// ID returns the id of the changed row, taken from the old record for deletes.
func (c Change) ID() string {
	return c.field("id")
}

// StoreID is the store_id column of the row, for tables scoped to a store.
func (c Change) StoreID() string {
	return c.field("store_id")
}

func (c Change) field(name string) string {
	src := c.Record
	if c.Type == ChangeDelete || len(src) == 0 {
		src = c.OldRecord
	}
	var row map[string]interface{}
	if err := json.Unmarshal(src, &row); err != nil {
		return ""
	}
	v, _ := row[name].(string)
	return v
}

type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

type changeFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

type joinPayload struct {
	Config struct {
		PostgresChanges []changeFilter `json:"postgres_changes"`
	} `json:"config"`
	AccessToken string `json:"access_token,omitempty"`
}

type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changesPayload struct {
	Data Change `json:"data"`
}

type Client struct {
	endpoint  string
	tokens    remote.TokenSource
	heartbeat time.Duration
	dialer    *websocket.Dialer
	ref       atomic.Uint64
}

// NewClient derives the websocket endpoint from the backend base URL.
func NewClient(baseURL, anonKey string, tokens remote.TokenSource, heartbeat time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.BadRequest("Invalid backend URL", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path += "/realtime/v1/websocket"
	q := u.Query()
	q.Set("apikey", anonKey)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()

	return &Client{
		endpoint:  u.String(),
		tokens:    tokens,
		heartbeat: heartbeat,
		dialer:    &websocket.Dialer{HandshakeTimeout: writeWait},
	}, nil
}

func (c *Client) nextRef() string {
	return strconv.FormatUint(c.ref.Add(1), 10)
}

// Listen joins the change feed for tables and calls handle for every change
// until ctx is done or the connection drops. It does not reconnect; callers
// decide whether to listen again.
func (c *Client) Listen(ctx context.Context, tables []string, handle func(Change)) error {
	ws, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return errors.Remote("Could not connect to live updates", 0, err)
	}
	conn := &connection{ws: ws}
	defer ws.Close()

	join := joinPayload{}
	for _, t := range tables {
		join.Config.PostgresChanges = append(join.Config.PostgresChanges, changeFilter{Event: "*", Schema: "public", Table: t})
	}
	if c.tokens != nil {
		if join.AccessToken, err = c.tokens.AccessToken(ctx); err != nil {
			return err
		}
	}
	joinRef := c.nextRef()
	if err := conn.send(channelTopic, eventJoin, join, joinRef); err != nil {
		return errors.Remote("Could not join live updates", 0, err)
	}

	done := make(chan struct{})
	defer close(done)
	go c.heartbeatPump(conn, done)

	readErr := make(chan error, 1)
	go func() {
		readErr <- readPump(ws, joinRef, handle)
	}()

	select {
	case <-ctx.Done():
		conn.close()
		return nil
	case err := <-readErr:
		return err
	}
}

func readPump(ws *websocket.Conn, joinRef string, handle func(Change)) error {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Remote("Live updates disconnected", 0, err)
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("realtime: dropping malformed message: %v", err)
			continue
		}

		switch msg.Event {
		case eventReply:
			if msg.Ref != joinRef {
				continue
			}
			var reply replyPayload
			if err := json.Unmarshal(msg.Payload, &reply); err != nil || reply.Status != "ok" {
				return errors.Remote("Live updates refused the subscription", 0, err)
			}
			logger.Debug("realtime: joined %s", msg.Topic)
		case eventChanges:
			var p changesPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				logger.Warn("realtime: dropping malformed change: %v", err)
				continue
			}
			handle(p.Data)
		case eventClose, eventError:
			if msg.Topic == channelTopic {
				return errors.Remote("Live updates channel closed", 0, nil)
			}
		}
	}
}

func (c *Client) heartbeatPump(conn *connection, done <-chan struct{}) {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.send("phoenix", eventHeartbeat, struct{}{}, c.nextRef()); err != nil {
				logger.Warn("realtime: heartbeat failed: %v", err)
				return
			}
		}
	}
}

// connection serializes writes; gorilla connections allow one writer at a time.
type connection struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *connection) send(topic, event string, payload interface{}, ref string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(message{Topic: topic, Event: event, Payload: raw, Ref: ref})
}

func (c *connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
