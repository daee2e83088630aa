package utils

import (
	"time"
)

// TimeToMillis maps the zero time to 0 so open bounds survive a round trip.
func TimeToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano() / int64(time.Millisecond)
}

func UnixMillisToTime(timestamp int64) time.Time {
	if timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(0, timestamp*int64(time.Millisecond)).UTC()
}

func GenParams(size int) string {

	if size == 0 {
		return ""
	}

	result := "?"
	for i := 1; i < size; i++ {
		result += ", ?"
	}
	return result
}

func GenValues(values []int64) []interface{} {
	result := make([]interface{}, 0, len(values))
	for _, v := range values {
		result = append(result, v)
	}
	return result
}

func MinUint(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}
