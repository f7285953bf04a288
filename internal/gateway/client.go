package gateway

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/mbeoliero/kit/log"

	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/internal/service"
)

// Client represents one authenticated WebSocket connection. A user may hold
// several Clients at once (multiple tabs/devices); each is tracked and
// pushed to independently.
type Client struct {
	conn      ClientConn
	ConnId    string
	Principal *service.Principal
	server    *WsServer
	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
}

func NewClient(conn ClientConn, principal *service.Principal, connId string, server *WsServer) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{conn: conn, Principal: principal, ConnId: connId, server: server, ctx: ctx, cancel: cancel}
}

func (c *Client) Start() {
	c.readLoop()
}

// readLoop owns reading for this connection; writes always go through
// ClientConn.WriteMessage, which is itself single-writer internally, so
// this goroutine never needs to coordinate with the push workers.
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.CtxError(c.ctx, "client read loop panic: subject=%s, error=%v", c.Principal.Subject, r)
		}
		c.close()
	}()

	for {
		message, err := c.conn.ReadMessage()
		if err != nil {
			log.CtxDebug(c.ctx, "read message error: subject=%s, error=%v", c.Principal.Subject, err)
			return
		}
		if c.closed.Load() {
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	var evt InboundEvent
	if err := json.Unmarshal(message, &evt); err != nil {
		c.replyError("", ErrInvalidProtocol)
		return
	}

	var err error
	var data interface{}

	switch evt.Event {
	case EventJoinConversation:
		data, err = c.server.handleJoin(c.ctx, c, evt.Data)
	case EventLeaveConversation:
		data, err = c.server.handleLeave(c.ctx, c, evt.Data)
	case EventSendMessage:
		data, err = c.server.handleSendMessage(c.ctx, c, evt.Data)
	case EventTypingStart:
		err = c.server.handleTyping(c.ctx, c, evt.Data, true)
	case EventTypingStop:
		err = c.server.handleTyping(c.ctx, c, evt.Data, false)
	case EventMessageDelivered:
		err = c.server.handleMessageDelivered(c.ctx, c, evt.Data)
	case EventMessageRead:
		err = c.server.handleMessageRead(c.ctx, c, evt.Data)
	case EventHeartbeat:
		err = c.server.handleHeartbeat(c.ctx, c)
	case EventPing:
		data = &PongData{Timestamp: entity.NowUnixMilli()}
	default:
		err = ErrUnknownEvent
	}

	if err != nil {
		log.CtxWarn(c.ctx, "event handling failed: event=%s, subject=%s, error=%v", evt.Event, c.Principal.Subject, err)
		c.replyError(evt.Id, err)
		return
	}
	c.replySuccess(evt.Id, data)
}

func (c *Client) replySuccess(id string, data interface{}) {
	c.writeJSON(Reply{Id: id, Success: true, Data: data})
}

func (c *Client) replyError(id string, err error) {
	c.writeJSON(Reply{Id: id, Success: false, Error: err.Error()})
}

// SendEvent pushes an unsolicited server event (connected, message_received,
// user_typing, ...) to this connection.
func (c *Client) SendEvent(event string, data interface{}) {
	c.writeJSON(ServerEvent{Event: event, Data: data})
}

func (c *Client) writeJSON(v interface{}) {
	if c.closed.Load() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.CtxWarn(c.ctx, "marshal outbound frame failed: %v", err)
		return
	}
	if err := c.conn.WriteMessage(b); err != nil {
		log.CtxDebug(c.ctx, "write frame failed: subject=%s, error=%v", c.Principal.Subject, err)
	}
}

func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()
	return c.conn.Close()
}

func (c *Client) close() {
	c.Close()
	c.server.UnregisterClient(c)
}
