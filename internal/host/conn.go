// Package host connects the plugin to launcher frameworks that push query
// events to extensions over a websocket instead of exec'ing a binary.
package host

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"youtube-plugin/internal/plugin"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxEventSize = 64 * 1024
)

// Event is a frame from the host: a query keystroke or a row action.
type Event struct {
	Type   string      `json:"type"`
	ID     int64       `json:"id,omitempty"`
	Query  string      `json:"query,omitempty"`
	Action string      `json:"action,omitempty"`
	Item   plugin.Item `json:"item,omitempty"`
}

// Reply is a frame to the host.
type Reply struct {
	Type  string        `json:"type"`
	ID    int64         `json:"id,omitempty"`
	Items []plugin.Item `json:"items,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Conn is one plugin-to-host connection. The host sends query events as the
// user types; replies for superseded queries are dropped rather than sent.
type Conn struct {
	ws      *websocket.Conn
	handler *plugin.Handler
	actions *plugin.Actions
	send    chan []byte

	// latest query id seen; results for older ids are stale.
	latest atomic.Int64
}

// Dial connects to the host socket at hostURL.
func Dial(ctx context.Context, hostURL string, h *plugin.Handler, a *plugin.Actions) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, hostURL, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{
		ws:      ws,
		handler: h,
		actions: a,
		send:    make(chan []byte, 16),
	}, nil
}

// Run services the connection until the host closes it or ctx is done.
func (c *Conn) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	return c.readPump(ctx)
}

func (c *Conn) readPump(ctx context.Context) error {
	defer c.ws.Close()

	c.ws.SetReadLimit(maxEventSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("youtube-plugin: host event decode: %v", err)
			continue
		}
		c.dispatch(ctx, ev)
	}
}

func (c *Conn) dispatch(ctx context.Context, ev Event) {
	switch ev.Type {
	case "query":
		c.latest.Store(ev.ID)
		go c.runQuery(ctx, ev.ID, ev.Query)
	case "action":
		go c.runAction(ev)
	default:
		log.Printf("youtube-plugin: unknown host event type %q", ev.Type)
	}
}

func (c *Conn) runQuery(ctx context.Context, id int64, query string) {
	items, err := c.handler.Query(ctx, query, 0)
	if c.latest.Load() != id {
		// The user kept typing; this reply would redraw stale rows.
		return
	}

	reply := Reply{Type: "results", ID: id, Items: items}
	if err != nil {
		log.Printf("youtube-plugin: host query %d: %v", id, err)
		reply = Reply{Type: "error", ID: id, Error: "lookup failed"}
	}
	c.enqueue(reply)
}

func (c *Conn) runAction(ev Event) {
	var err error
	switch ev.Action {
	case "copy":
		err = c.actions.Copy(ev.Item)
	default:
		err = c.actions.Open(ev.Item)
	}
	if err != nil {
		log.Printf("youtube-plugin: host action %q: %v", ev.Action, err)
	}
}

func (c *Conn) enqueue(reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		log.Printf("youtube-plugin: host reply encode: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("youtube-plugin: host send buffer full, dropping reply %d", reply.ID)
	}
}

func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
