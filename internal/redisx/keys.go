package redisx

import "time"

const (
	// Cart slot per session: cart:{session_id} -> JSON array of items
	KeyCart = "cart:%s"

	// Order status cache: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Catalog list cache: catalog:list:{query signature} -> JSON array of products
	KeyCatalogList = "catalog:list:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart        = 7 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLCatalogList = time.Minute
	TTLDedup       = 48 * time.Hour
)
