package gateway

import "sync"

// RoomRegistry tracks which connections are watching which conversation, so
// a message in conversation X only fans out to sockets that joined
// "conversation:X". The registry itself does no membership check; the
// gateway's join_conversation handler verifies membership through the
// Conversation Service before calling Join.
//
// Not present in the teacher, which pushes by recipient user Id read out of
// the message row (AsyncPushToUsers) instead of by room. Pulse's sockets
// join rooms explicitly (join_conversation), so fan-out here is addressed
// by room instead.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[*Client]struct{})}
}

func (r *RoomRegistry) Join(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (r *RoomRegistry) Leave(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// LeaveAll removes c from every room it joined, called on disconnect.
func (r *RoomRegistry) LeaveAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, members := range r.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
}

// Members returns a snapshot of the room's connections, safe to iterate
// without holding the registry lock.
func (r *RoomRegistry) Members(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}
