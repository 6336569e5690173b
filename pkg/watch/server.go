// Package watch provides a websocket endpoint streaming events to
// clients. A client sends one JSON registration request as text
// message and receives JSON encoded events as text messages.
package watch

import (
	"encoding/json"
	"net"
	"net/http"
	"slices"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

type EventHandler[E any] interface {
	HandleEvent(e E)
}

type Registry[R any, E any] interface {
	RegisterWatchHandler(r R, h EventHandler[E]) error
	UnregisterWatchHandler(r R, h EventHandler[E])
}

func WatchHttpHandler[R, E any](r Registry[R, E]) *RequestHandler[R, E] {
	return &RequestHandler[R, E]{registry: r}
}

type RequestHandler[R, E any] struct {
	lock        sync.Mutex
	registry    Registry[R, E]
	connections []*handler[R, E]
}

var _ http.Handler = (*RequestHandler[any, any])(nil)

// Close closes all open connections.
func (h *RequestHandler[R, E]) Close() error {
	h.lock.Lock()
	conns := slices.Clone(h.connections)
	h.lock.Unlock()

	for _, c := range conns {
		c.Close()
	}
	return nil
}

// Connections returns the number of open connections.
func (h *RequestHandler[R, E]) Connections() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.connections)
}

func (h *RequestHandler[R, E]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Debug("new watch request from {{remote}}", "remote", r.RemoteAddr)
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.LogError(err, "upgrade failed")
		return
	}

	msg, op, err := wsutil.ReadClientData(conn)
	if err != nil {
		log.LogError(err, "reading registration request")
		conn.Close()
		return
	}
	if op != ws.OpText {
		reject(conn, "text registration request required")
		return
	}

	var registration R
	if err := json.Unmarshal(msg, &registration); err != nil {
		log.LogError(err, "decoding registration request")
		reject(conn, err.Error())
		return
	}

	c := &handler[R, E]{hhandler: h, conn: conn, req: registration}
	if err := h.registry.RegisterWatchHandler(registration, c); err != nil {
		reject(conn, err.Error())
		return
	}
	h.addHandler(c)
	go c.watchClose()
}

func reject(conn net.Conn, msg string) {
	wsutil.WriteServerMessage(conn, ws.OpText, (&Error{msg}).Data())
	conn.Close()
}

func (h *RequestHandler[R, E]) addHandler(c *handler[R, E]) {
	log.Debug("registering watch handler for request {{request}}", "request", c.req)
	h.lock.Lock()
	defer h.lock.Unlock()
	h.connections = append(h.connections, c)
}

func (h *RequestHandler[R, E]) removeHandler(c *handler[R, E]) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	i := slices.Index(h.connections, c)
	if i < 0 {
		return false
	}
	log.Debug("unregistering watch handler for request {{request}}", "request", c.req)
	h.connections = slices.Delete(h.connections, i, i+1)
	return true
}

////////////////////////////////////////////////////////////////////////////////

type handler[R, E any] struct {
	hhandler *RequestHandler[R, E]
	lock     sync.Mutex
	conn     net.Conn
	req      R
}

func (h *handler[R, E]) HandleEvent(e E) {
	data, err := json.Marshal(e)
	if err != nil {
		log.LogError(err, "cannot marshal event")
		return
	}
	h.lock.Lock()
	err = wsutil.WriteServerMessage(h.conn, ws.OpText, data)
	h.lock.Unlock()
	if err != nil {
		if !IsErrClosed(err) {
			log.LogError(err, "cannot send event -> closing connection")
		}
		h.Close()
	}
}

// watchClose reads client frames until the connection is closed.
func (h *handler[R, E]) watchClose() {
	for {
		if _, _, err := wsutil.ReadClientData(h.conn); err != nil {
			h.Close()
			return
		}
	}
}

func (h *handler[R, E]) Close() error {
	if !h.hhandler.removeHandler(h) {
		return nil
	}
	h.hhandler.registry.UnregisterWatchHandler(h.req, h)
	return h.conn.Close()
}

type Error struct {
	Error string `json:"error"`
}

func (e *Error) Data() []byte {
	data, _ := json.Marshal(e)
	return data
}
