package debuglog

import (
	"time"

	"github.com/google/uuid"
)

// noneSessionID is the sentinel used in emitted events when no session
// is active.
const noneSessionID = "none"

// Session is a DebugSession: the bracketed interval between StartSession
// and EndSession, identified by a generated session id.
type Session struct {
	ID             string
	PositionFEN    string
	StartTimestamp time.Time
	active         bool
}

// newSessionID returns a 128-bit random, hyphen-delimited session id.
func newSessionID() string {
	return uuid.NewString()
}
