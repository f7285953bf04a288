package entity

import (
	"sort"
	"strings"
	"time"
)

// NowUnixMilli returns the current time as unix milliseconds, the timestamp
// representation used end to end for createdAt/updatedAt/deliveredAt/readAt.
func NowUnixMilli() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// ParseCursorTime parses the RFC3339 cursor query parameter accepted at the
// REST boundary into the unix-millis representation used internally.
func ParseCursorTime(iso string) (int64, error) {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return 0, err
	}
	return t.UnixNano() / int64(time.Millisecond), nil
}

// FormatCursorTime renders an internal unix-millis timestamp as the
// RFC3339 cursor string returned to REST clients as nextCursor.
func FormatCursorTime(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(time.RFC3339Nano)
}

// GenDirectConversationId deterministically derives a direct-conversation
// id from the sorted pair of member ids. This is the same idea as the
// teacher's GenSingleConversationId ("si_" + sorted pair joined by ":"),
// adapted here to also serve as the enforcement mechanism for invariant I5
// ("for any two users there is at most one such direct conversation"): two
// lookups/creates for the same pair, in either order, land on the same row
// by construction, so the "strict set-equality, not subset" requirement in
// §4.2 holds without a race between check and insert.
func GenDirectConversationId(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return "dc_" + strings.Join(pair, ":")
}
