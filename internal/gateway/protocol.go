package gateway

import "encoding/json"

// InboundEvent is a client-to-server WebSocket frame: a named JSON event
// with an opaque Id the client may use to correlate the reply, replacing
// the teacher's numeric req_identifier envelope with the spec's named
// events while keeping the same "correlate request to reply" idea (the
// teacher's MsgIncr/OperationId fields).
type InboundEvent struct {
	Event string          `json:"event"`
	Id    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Reply is the callback-style acknowledgement every inbound event gets
// (§6): {success:true, ...} | {success:false, error}.
type Reply struct {
	Id      string      `json:"id,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerEvent is a server-originated, unsolicited frame: connected,
// message_received, user_typing, user_typing_stop, message_delivered,
// message_read.
type ServerEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Event names, both inbound and outbound.
const (
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventSendMessage       = "send_message"
	EventTypingStart       = "typing_start"
	EventTypingStop        = "typing_stop"
	EventMessageDelivered  = "message_delivered"
	EventMessageRead       = "message_read"
	EventHeartbeat         = "heartbeat"
	EventPing              = "ping"

	EventConnected         = "connected"
	EventMessageReceived   = "message_received"
	EventUserTyping        = "user_typing"
	EventUserTypingStop    = "user_typing_stop"
	EventPong              = "pong"
)

// Inbound payload shapes.

type ConversationRefPayload struct {
	ConversationId string `json:"conversationId"`
}

type SendMessagePayload struct {
	ConversationId string  `json:"conversationId"`
	Type           string  `json:"type"`
	Content        *string `json:"content,omitempty"`
	MediaUrl       *string `json:"mediaUrl,omitempty"`
	MediaMeta      *string `json:"mediaMeta,omitempty"`
}

type MessageDeliveredPayload struct {
	ConversationId string `json:"conversationId"`
	MessageId      string `json:"messageId"`
}

type MessageReadPayload struct {
	ConversationId string   `json:"conversationId"`
	MessageIds     []string `json:"messageIds"`
}

// Outbound payload shapes.

type ConnectedData struct {
	Subject string `json:"subject"`
}

type UserTypingData struct {
	ConversationId string `json:"conversationId"`
	UserId         string `json:"userId"`
}

type MessageDeliveredData struct {
	ConversationId string `json:"conversationId"`
	MessageId      string `json:"messageId"`
	UserId         string `json:"userId"`
}

type MessageReadData struct {
	ConversationId string   `json:"conversationId"`
	MessageIds     []string `json:"messageIds"`
	UserId         string   `json:"userId"`
}

type PongData struct {
	Timestamp int64 `json:"timestamp"`
}

type SendMessageAck struct {
	MessageId string `json:"messageId"`
}
