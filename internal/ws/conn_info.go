package ws

import "time"

// ConnInfo carries per-connection metadata for audit and metrics.
type ConnInfo struct {
	ConnID      string
	UserID      int64
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
