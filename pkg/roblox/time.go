package roblox

import (
	"time"

	"github.com/tidwall/gjson"
)

// timeAt parses an ISO-8601 timestamp. Absent or malformed values are the zero time.
func timeAt(v gjson.Result) time.Time {
	if v.Type != gjson.String || v.Str == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v.Str)
	if err != nil {
		return time.Time{}
	}
	return t
}
