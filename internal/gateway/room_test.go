package gateway

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulsechat/pulse/internal/service"
)

// fakeConn is a no-op ClientConn used to construct Client values in tests
// without a real network socket.
type fakeConn struct{}

func (fakeConn) ReadMessage() ([]byte, error) { return nil, nil }
func (fakeConn) WriteMessage([]byte) error    { return nil }
func (fakeConn) Close() error                 { return nil }

func newTestClient(subject string) *Client {
	return NewClient(fakeConn{}, &service.Principal{Subject: subject}, "conn-"+subject, nil)
}

func TestRoomRegistryJoinAndMembers(t *testing.T) {
	r := NewRoomRegistry()
	c1 := newTestClient("u1")
	c2 := newTestClient("u2")

	r.Join("conversation:c1", c1)
	r.Join("conversation:c1", c2)

	members := r.Members("conversation:c1")
	assert.Len(t, members, 2)
}

func TestRoomRegistryLeaveRemovesOnlyThatConnection(t *testing.T) {
	r := NewRoomRegistry()
	c1 := newTestClient("u1")
	c2 := newTestClient("u2")
	r.Join("conversation:c1", c1)
	r.Join("conversation:c1", c2)

	r.Leave("conversation:c1", c1)

	members := r.Members("conversation:c1")
	assert.Len(t, members, 1)
	assert.Same(t, c2, members[0])
}

func TestRoomRegistryLeaveEmptiesRoom(t *testing.T) {
	r := NewRoomRegistry()
	c1 := newTestClient("u1")
	r.Join("conversation:c1", c1)
	r.Leave("conversation:c1", c1)

	assert.Empty(t, r.Members("conversation:c1"))
}

func TestRoomRegistryLeaveAllRemovesFromEveryRoom(t *testing.T) {
	r := NewRoomRegistry()
	c1 := newTestClient("u1")
	r.Join("conversation:c1", c1)
	r.Join("conversation:c2", c1)

	r.LeaveAll(c1)

	assert.Empty(t, r.Members("conversation:c1"))
	assert.Empty(t, r.Members("conversation:c2"))
}

func TestRoomRegistryMembersOfUnknownRoomIsEmpty(t *testing.T) {
	r := NewRoomRegistry()
	assert.Empty(t, r.Members("conversation:does-not-exist"))
}

func TestRoomRegistryConcurrentJoinLeave(t *testing.T) {
	r := NewRoomRegistry()
	const n = 50
	clients := make([]*Client, n)
	for i := 0; i < n; i++ {
		clients[i] = newTestClient("u")
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			r.Join("conversation:hot", c)
			r.Leave("conversation:hot", c)
		}(c)
	}
	wg.Wait()

	assert.Empty(t, r.Members("conversation:hot"))
}
