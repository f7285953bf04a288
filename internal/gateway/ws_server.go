package gateway

import (
	"context"
	"encoding/json"
	"sync/atomic"

	hertzws "github.com/hertz-contrib/websocket"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/mbeoliero/kit/log"

	"github.com/pulsechat/pulse/internal/bus"
	"github.com/pulsechat/pulse/internal/config"
	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/internal/presence"
	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/idgen"
)

// WsServer is the Socket Gateway: it owns connections, rooms, and the bus
// consumer that fans published messages out to local clients. Generalizes
// the teacher's ws_server.go from a per-user push model (AsyncPushToUsers,
// keyed by recipient Id read off the message row) to a per-room push model
// (queueBroadcast, keyed by the conversation the message belongs to),
// since Pulse clients explicitly join rooms instead of being pushed to by
// Id.
type WsServer struct {
	cfg       *config.Config
	upgrader  *hertzws.HertzUpgrader
	rooms     *RoomRegistry
	presence  *presence.Store
	bus       *bus.Bus
	auth      *service.AuthService
	convSvc   *service.ConversationService
	msgSvc    *service.MessageService
	broadcast chan *broadcastTask

	onlineConnNum atomic.Int64
}

type broadcastTask struct {
	room          string
	event         string
	data          interface{}
	excludeConnId string
}

func NewWsServer(cfg *config.Config, presenceStore *presence.Store, msgBus *bus.Bus, auth *service.AuthService, convSvc *service.ConversationService, msgSvc *service.MessageService) *WsServer {
	allowedOrigins := cfg.Server.AllowedOrigins
	return &WsServer{
		cfg:      cfg,
		upgrader: &hertzws.HertzUpgrader{CheckOrigin: func(c *app.RequestContext) bool { return checkOrigin(c, allowedOrigins) }},
		rooms:    NewRoomRegistry(),
		presence: presenceStore,
		bus:      msgBus,
		auth:     auth,
		convSvc:  convSvc,
		msgSvc:   msgSvc,
		broadcast: make(chan *broadcastTask, cfg.WebSocket.PushChannelSize),
	}
}

// Run starts the bus consumer and the broadcast worker pool.
func (s *WsServer) Run(ctx context.Context) {
	go s.bus.Subscribe(ctx, s.onBusMessage)

	workerNum := s.cfg.WebSocket.PushWorkerNum
	if workerNum <= 0 {
		workerNum = 10
	}
	for i := 0; i < workerNum; i++ {
		go s.broadcastLoop(ctx)
	}
	log.Info("gateway started with %d broadcast workers", workerNum)
}

func (s *WsServer) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.broadcast:
			for _, c := range s.rooms.Members(task.room) {
				if task.excludeConnId != "" && c.ConnId == task.excludeConnId {
					continue
				}
				c.SendEvent(task.event, task.data)
			}
		}
	}
}

func (s *WsServer) queueBroadcast(task *broadcastTask) {
	select {
	case s.broadcast <- task:
	default:
		log.Warn("broadcast channel full, dropping event: room=%s, event=%s", task.room, task.event)
	}
}

// onBusMessage is the Bus consumer (§4.4): re-reads the message from the
// store (the source of truth, immune to any instance-local cache) and fans
// it out to local connections in the conversation's room.
func (s *WsServer) onBusMessage(ctx context.Context, tuple bus.MessageTuple) {
	msg, err := s.msgSvc.GetForBroadcast(ctx, tuple.MessageId)
	if err != nil {
		log.CtxWarn(ctx, "bus consumer: message not found, dropping: message_id=%s, error=%v", tuple.MessageId, err)
		return
	}
	s.queueBroadcast(&broadcastTask{room: roomName(tuple.ConversationId), event: EventMessageReceived, data: msg})
}

// PublishMessage implements service.MessagePublisher.
func (s *WsServer) PublishMessage(ctx context.Context, messageId, conversationId, senderId string) error {
	return s.bus.Publish(ctx, bus.MessageTuple{MessageId: messageId, ConversationId: conversationId, SenderId: senderId})
}

// HandleUpgrade is the Hertz handler mounted at GET /ws.
func (s *WsServer) HandleUpgrade(ctx context.Context, c *app.RequestContext) {
	if s.onlineConnNum.Load() >= s.cfg.WebSocket.MaxConnNum {
		c.String(503, "connection limit exceeded")
		return
	}

	token := string(c.Query(QueryToken))
	if token == "" {
		c.String(400, "missing token")
		return
	}

	principal, err := s.auth.Verify(ctx, token)
	if err != nil {
		log.CtxDebug(ctx, "ws auth failed: %v", err)
		c.String(401, "unauthorized")
		return
	}

	err = s.upgrader.Upgrade(c, func(conn *hertzws.Conn) {
		connId := idgen.NewConnID()
		wsConn := NewHertzClientConn(conn, s.cfg.WebSocket.MaxMessageSize, s.cfg.WebSocket.PongWait, s.cfg.WebSocket.PingPeriod, s.cfg.WebSocket.WriteWait)
		client := NewClient(wsConn, principal, connId, s)

		s.registerClient(ctx, client)
		client.SendEvent(EventConnected, &ConnectedData{Subject: principal.Subject})
		client.Start()
	})
	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
	}
}

func (s *WsServer) registerClient(ctx context.Context, c *Client) {
	s.onlineConnNum.Add(1)
	if err := s.presence.MarkOnline(ctx, c.Principal.Subject); err != nil {
		log.CtxWarn(ctx, "mark online failed: subject=%s, error=%v", c.Principal.Subject, err)
	}
	log.CtxInfo(ctx, "client registered: subject=%s, conn_id=%s, online_conns=%d", c.Principal.Subject, c.ConnId, s.onlineConnNum.Load())
}

// UnregisterClient implements the Disconnect procedure (§4.4): updates
// lastSeenAt, deletes the presence key, and leaves every joined room.
func (s *WsServer) UnregisterClient(c *Client) {
	ctx := context.Background()
	s.onlineConnNum.Add(-1)
	s.rooms.LeaveAll(c)

	if err := s.auth.Disconnect(ctx, c.Principal.Subject); err != nil {
		log.CtxWarn(ctx, "touch last seen failed: subject=%s, error=%v", c.Principal.Subject, err)
	}
	if err := s.presence.MarkOffline(ctx, c.Principal.Subject); err != nil {
		log.CtxWarn(ctx, "mark offline failed: subject=%s, error=%v", c.Principal.Subject, err)
	}
	log.CtxInfo(ctx, "client unregistered: subject=%s, conn_id=%s, online_conns=%d", c.Principal.Subject, c.ConnId, s.onlineConnNum.Load())
}

// ---------- per-event handlers, dispatched from Client.handleMessage ----------

func (s *WsServer) handleJoin(ctx context.Context, c *Client, raw json.RawMessage) (interface{}, error) {
	var payload ConversationRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errcode.ErrInvalidParam
	}
	isMember, err := s.convSvc.IsMember(ctx, payload.ConversationId, c.Principal.Subject)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, errcode.ErrNotMember
	}
	s.rooms.Join(roomName(payload.ConversationId), c)
	return nil, nil
}

func (s *WsServer) handleLeave(ctx context.Context, c *Client, raw json.RawMessage) (interface{}, error) {
	var payload ConversationRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errcode.ErrInvalidParam
	}
	s.rooms.Leave(roomName(payload.ConversationId), c)
	return nil, nil
}

func (s *WsServer) handleSendMessage(ctx context.Context, c *Client, raw json.RawMessage) (interface{}, error) {
	var payload SendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errcode.ErrInvalidParam
	}

	msg, err := s.msgSvc.Send(ctx, c.Principal.Subject, service.SendRequest{
		ConversationId: payload.ConversationId,
		Type:           entity.MsgType(payload.Type),
		Content:        payload.Content,
		MediaPath:      payload.MediaUrl,
		MediaMeta:      payload.MediaMeta,
	})
	if err != nil {
		return nil, err
	}
	return &SendMessageAck{MessageId: msg.Id}, nil
}

func (s *WsServer) handleTyping(ctx context.Context, c *Client, raw json.RawMessage, start bool) error {
	var payload ConversationRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errcode.ErrInvalidParam
	}
	isMember, err := s.convSvc.IsMember(ctx, payload.ConversationId, c.Principal.Subject)
	if err != nil {
		return err
	}
	if !isMember {
		return errcode.ErrNotMember
	}

	event := EventUserTyping
	if !start {
		event = EventUserTypingStop
	}
	s.queueBroadcast(&broadcastTask{
		room:          roomName(payload.ConversationId),
		event:         event,
		data:          &UserTypingData{ConversationId: payload.ConversationId, UserId: c.Principal.Subject},
		excludeConnId: c.ConnId,
	})
	return nil
}

func (s *WsServer) handleMessageDelivered(ctx context.Context, c *Client, raw json.RawMessage) error {
	var payload MessageDeliveredPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errcode.ErrInvalidParam
	}
	if err := s.msgSvc.MarkDelivered(ctx, c.Principal.Subject, payload.ConversationId, payload.MessageId); err != nil {
		return err
	}
	s.queueBroadcast(&broadcastTask{
		room:  roomName(payload.ConversationId),
		event: EventMessageDelivered,
		data: &MessageDeliveredData{
			ConversationId: payload.ConversationId,
			MessageId:      payload.MessageId,
			UserId:         c.Principal.Subject,
		},
	})
	return nil
}

func (s *WsServer) handleMessageRead(ctx context.Context, c *Client, raw json.RawMessage) error {
	var payload MessageReadPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errcode.ErrInvalidParam
	}
	if err := s.msgSvc.MarkRead(ctx, c.Principal.Subject, payload.ConversationId, payload.MessageIds); err != nil {
		return err
	}
	s.queueBroadcast(&broadcastTask{
		room:  roomName(payload.ConversationId),
		event: EventMessageRead,
		data: &MessageReadData{
			ConversationId: payload.ConversationId,
			MessageIds:     payload.MessageIds,
			UserId:         c.Principal.Subject,
		},
	})
	return nil
}

func (s *WsServer) handleHeartbeat(ctx context.Context, c *Client) error {
	return s.presence.Heartbeat(ctx, c.Principal.Subject)
}

// OnlineConnCount reports the gateway-local connection count (for health/metrics).
func (s *WsServer) OnlineConnCount() int64 {
	return s.onlineConnNum.Load()
}
