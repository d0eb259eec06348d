// Package network connects the client to the game server over a websocket.
//
// Reads happen on a dedicated goroutine. Every decoded message is pushed to
// a Queue as a closure so the frame goroutine applies it between frames.
// Sends never block the caller: frames go through a buffered channel that a
// write pump drains, and a full buffer drops the frame.
package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// SendBuffer is the number of outbound frames held before dropping.
	SendBuffer = 64
)

// ErrSendBufferFull is returned when an outbound frame was dropped.
var ErrSendBufferFull = errors.New("send buffer full")

// ErrClosed is returned when sending on a closed client.
var ErrClosed = errors.New("client closed")

// Client is a live server connection.
type Client struct {
	conn    *websocket.Conn
	queue   *Queue
	handler Handler
	log     logrus.FieldLogger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to url and starts the read and write pumps. Decoded
// messages are pushed to queue and applied to handler when it is drained.
func Dial(ctx context.Context, url string, queue *Queue, handler Handler, log logrus.FieldLogger) (*Client, error) {
	log = logger.OrDiscard(log).WithField("server", url)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	log.Info("Connected to server")

	c := &Client{
		conn:    conn,
		queue:   queue,
		handler: handler,
		log:     log,
		send:    make(chan []byte, SendBuffer),
		done:    make(chan struct{}),
	}

	c.wg.Add(2)
	go c.readPump()
	go c.writePump()
	return c, nil
}

// Done is closed once the connection has shut down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and waits for both pumps to exit.
func (c *Client) Close() error {
	c.shutdown()
	c.wg.Wait()
	return nil
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) readPump() {
	defer c.wg.Done()
	defer c.shutdown()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				c.log.Debug("Read loop stopped")
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.log.Info("Server closed the connection")
				} else {
					c.log.WithError(err).Warn("Websocket read error")
				}
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		apply, err := Decode(data, c.handler)
		if err != nil {
			c.log.WithError(err).Warn("Dropping malformed server message")
			continue
		}
		c.queue.Push(apply)
	}
}

func (c *Client) writePump() {
	defer c.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client shutting down"))
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.WithError(err).Warn("Websocket write error")
				c.shutdown()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("Ping failed")
			}
		}
	}
}

// Send encodes and enqueues a frame without blocking.
func (c *Client) Send(msgType string, payload any) error {
	data, err := Encode(msgType, payload)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) post(msgType string, payload any) {
	if err := c.Send(msgType, payload); err != nil {
		c.log.WithError(err).WithField("type", msgType).Warn("Dropped outbound message")
	}
}

// PerformAction asks the server to run action id on the current selection.
func (c *Client) PerformAction(id int) {
	c.post(TypePerformAction, PerformActionPayload{ID: id})
}

// PerformActionAt asks the server to run action id at dest.
func (c *Client) PerformActionAt(id int, dest geom.Coord) {
	c.post(TypePerformActionAt, PerformActionAtPayload{ID: id, Dest: positionOf(dest)})
}

// MoveItem moves quantity items between two container slots.
func (c *Client) MoveItem(source, dest, sourceIndex, destIndex, quantity int) {
	c.post(TypeMoveItem, MoveItemPayload{
		Source:      source,
		Dest:        dest,
		SourceIndex: sourceIndex,
		DestIndex:   destIndex,
		Quantity:    quantity,
	})
}

// UseItem uses the item in a source slot on a destination slot.
func (c *Client) UseItem(source, dest, sourceIndex, destIndex int) {
	c.post(TypeUseItem, UseItemPayload{
		Source:      source,
		Dest:        dest,
		SourceIndex: sourceIndex,
		DestIndex:   destIndex,
	})
}

// Move reports the tile the player stepped onto.
func (c *Client) Move(pos geom.Coord) {
	c.post(TypeMove, MovePayload{Position: positionOf(pos)})
}

// Offline stands in for a Client when no server is reachable. Requests
// are logged and discarded.
type Offline struct {
	Log logrus.FieldLogger
}

func (o Offline) log(msgType string) {
	logger.OrDiscard(o.Log).WithField("type", msgType).Debug("Offline, request discarded")
}

// PerformAction implements the server interface.
func (o Offline) PerformAction(id int) { o.log(TypePerformAction) }

// PerformActionAt implements the server interface.
func (o Offline) PerformActionAt(id int, dest geom.Coord) { o.log(TypePerformActionAt) }

// MoveItem implements the server interface.
func (o Offline) MoveItem(source, dest, sourceIndex, destIndex, quantity int) { o.log(TypeMoveItem) }

// UseItem implements the server interface.
func (o Offline) UseItem(source, dest, sourceIndex, destIndex int) { o.log(TypeUseItem) }

// Move implements the server interface.
func (o Offline) Move(pos geom.Coord) { o.log(TypeMove) }
