package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/mandelsoft/cimrepository/pkg/utils"
)

type Client[R, E any] struct {
	dialer ws.Dialer
	url    string
}

func NewClient[R, E any](url string, dialer ...ws.Dialer) *Client[R, E] {
	return &Client[R, E]{
		dialer: utils.OptionalDefaulted(ws.DefaultDialer, dialer...),
		url:    url,
	}
}

// Watch opens a connection and sends the registration request.
func (c *Client[R, E]) Watch(ctx context.Context, req R) (*Watch[E], error) {
	conn, _, _, err := c.dialer.Dial(ctx, c.url)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(req)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := wsutil.WriteClientMessage(conn, ws.OpText, data); err != nil {
		conn.Close()
		return nil, err
	}
	return &Watch[E]{conn: conn}, nil
}

// Register passes all received events to the handler until the
// context is cancelled or the connection is closed by the server.
func (c *Client[R, E]) Register(ctx context.Context, req R, h EventHandler[E]) (Syncher, error) {
	w, err := c.Watch(ctx, req)
	if err != nil {
		return nil, err
	}

	s := &syncher{}
	s.wait.Add(1)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			w.Close()
		case <-stop:
		}
	}()

	go func() {
		defer s.wait.Done()
		defer close(stop)
		for {
			events, err := w.Receive()
			if err != nil {
				if !IsErrClosed(err) && ctx.Err() == nil {
					s.err = err
				}
				w.Close()
				return
			}
			for _, e := range events {
				h.HandleEvent(e)
			}
		}
	}()
	return s, nil
}

////////////////////////////////////////////////////////////////////////////////

type Syncher interface {
	Wait() error
}

type syncher struct {
	wait sync.WaitGroup
	err  error
}

func (s *syncher) Wait() error {
	s.wait.Wait()
	return s.err
}

////////////////////////////////////////////////////////////////////////////////

type Watch[E any] struct {
	conn net.Conn
}

// Receive returns the next events. A message of the server
// reporting an error is returned as error.
func (w *Watch[E]) Receive() ([]E, error) {
	msgs, err := wsutil.ReadServerMessage(w.conn, nil)
	if err != nil {
		return nil, err
	}

	var events []E
	for _, m := range msgs {
		if m.OpCode.IsControl() {
			if m.OpCode == ws.OpClose {
				return events, io.EOF
			}
			continue
		}
		var msg Error
		if json.Unmarshal(m.Payload, &msg) == nil && msg.Error != "" {
			return nil, fmt.Errorf("watch request rejected: %s", msg.Error)
		}
		var evt E
		if err := json.Unmarshal(m.Payload, &evt); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

func (w *Watch[E]) Close() error {
	return w.conn.Close()
}
