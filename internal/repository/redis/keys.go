package redis

import "fmt"

const ns = "propsvc:v1"

func KeyCalendarMonth(propertyID, yearMonth string) string {
	return fmt.Sprintf("%s:property:%s:calendar:%s", ns, propertyID, yearMonth)
}

func KeyIdemHold(propertyID, idemKey string) string {
	return fmt.Sprintf("%s:idem:holds:%s:%s", ns, propertyID, idemKey)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

// KeyRateLimitPrefix is the limiter prefix for a scope; the limiter appends
// the per-caller suffix itself.
func KeyRateLimitPrefix(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelCalendarChanged() string {
	return ns + ":calendars:changed"
}
