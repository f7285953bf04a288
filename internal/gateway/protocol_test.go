package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundEventUnmarshal(t *testing.T) {
	raw := []byte(`{"event":"send_message","id":"req-1","data":{"conversationId":"c1","type":"text","content":"hi"}}`)

	var evt InboundEvent
	require.NoError(t, json.Unmarshal(raw, &evt))
	assert.Equal(t, EventSendMessage, evt.Event)
	assert.Equal(t, "req-1", evt.Id)

	var payload SendMessagePayload
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	assert.Equal(t, "c1", payload.ConversationId)
	assert.Equal(t, "text", payload.Type)
	require.NotNil(t, payload.Content)
	assert.Equal(t, "hi", *payload.Content)
}

func TestReplyMarshalSuccess(t *testing.T) {
	reply := Reply{Id: "req-1", Success: true, Data: &SendMessageAck{MessageId: "m1"}}
	b, err := json.Marshal(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"req-1","success":true,"data":{"messageId":"m1"}}`, string(b))
}

func TestReplyMarshalError(t *testing.T) {
	reply := Reply{Id: "req-1", Success: false, Error: "forbidden"}
	b, err := json.Marshal(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"req-1","success":false,"error":"forbidden"}`, string(b))
}

func TestServerEventMarshal(t *testing.T) {
	evt := ServerEvent{Event: EventMessageReceived, Data: &SendMessageAck{MessageId: "m1"}}
	b, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"message_received","data":{"messageId":"m1"}}`, string(b))
}

func TestMessageReadPayloadUnmarshal(t *testing.T) {
	raw := []byte(`{"conversationId":"c1","messageIds":["m1","m2"]}`)
	var payload MessageReadPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "c1", payload.ConversationId)
	assert.Equal(t, []string{"m1", "m2"}, payload.MessageIds)
}
