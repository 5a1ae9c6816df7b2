package redisx

import "time"

const (
	// Cart badge cache: cart:count:{user_id} -> total item quantity
	KeyCartCount = "cart:count:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCartCount = 1 * time.Minute
	TTLDedup     = 48 * time.Hour
)
