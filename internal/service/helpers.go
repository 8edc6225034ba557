package service

import (
	"strconv"
	"time"
)

// ParseReceivedAt interprets a platform timestamp string. The platform has
// shipped both seconds and milliseconds over time, so unit is decided by
// digit count: 13 or more digits reads as milliseconds, fewer as seconds.
// Unparseable input falls back to now.
func ParseReceivedAt(ts string) time.Time {
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || n <= 0 {
		return time.Now().UTC()
	}

	if len(ts) >= 13 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
