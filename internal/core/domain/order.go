package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	orderIDPrefix    = "TOPUP"
	orderIDUserChars = 8
)

// BuildOrderID derives a gateway order id from the user id prefix and the
// current time in milliseconds, e.g. TOPUP-3f2a9c1b-1718000000000.
// Only characters Midtrans accepts in order_id (and the poller accepts back)
// are taken from the user id; when none remain the segment is dropped.
func BuildOrderID(userID string, now time.Time) string {
	var b strings.Builder
	n := 0
	for _, r := range userID {
		if n == orderIDUserChars {
			break
		}
		if isOrderIDRune(r) {
			b.WriteRune(r)
			n++
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("%s-%d", orderIDPrefix, now.UnixMilli())
	}
	return fmt.Sprintf("%s-%s-%d", orderIDPrefix, b.String(), now.UnixMilli())
}

func isOrderIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}
