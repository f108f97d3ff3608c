package redis

import "fmt"

const ns = "railgo:v1"

func KeyStations() string {
	return ns + ":stations"
}

func KeyBlob(key string) string {
	return fmt.Sprintf("%s:blob:%s", ns, key)
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func KeyIdempotency(scope, id, idemKey string) string {
	return fmt.Sprintf("%s:idem:%s:%s:%s", ns, scope, id, idemKey)
}

func ChannelBookings() string {
	return ns + ":bookings"
}
