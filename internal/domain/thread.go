package domain

import (
	"strconv"
	"strings"
	"time"
)

// Reply is a single message posted under a thread parent.
type Reply struct {
	Ts   string `json:"ts,omitempty"`
	User string `json:"user,omitempty"`
	Text string `json:"text"`
}

// Thread is a stored Slack thread: the parent message plus its replies.
type Thread struct {
	ID         string
	ThreadTs   string
	User       string
	Message    string
	Replies    []Reply
	ReplyCount int
	PostedAt   time.Time
	CreatedAt  time.Time
}

// SizeBytes approximates the stored footprint of the thread text.
func (t Thread) SizeBytes() int64 {
	n := int64(len(t.Message))
	for _, r := range t.Replies {
		n += int64(len(r.Text))
	}
	return n
}

// ParseSlackTs converts a Slack timestamp ("1712345678.000200") to UTC time.
func ParseSlackTs(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	var micros int64
	if fracPart != "" {
		if len(fracPart) > 6 {
			fracPart = fracPart[:6]
		}
		for len(fracPart) < 6 {
			fracPart += "0"
		}
		if micros, err = strconv.ParseInt(fracPart, 10, 64); err != nil {
			return time.Time{}, false
		}
	}
	return time.Unix(sec, micros*int64(time.Microsecond)).UTC(), true
}
